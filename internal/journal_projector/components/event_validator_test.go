package components

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/journal_projector/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJournalRepo struct {
	mock.Mock
}

func (m *MockJournalRepo) Create(ctx context.Context, entry *journal.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepo) GetByEventID(ctx context.Context, eventID uuid.UUID) (*journal.Entry, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*journal.Entry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Entry), args.Error(1)
}

func (m *MockJournalRepo) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func validEntry() *journal.Entry {
	return &journal.Entry{
		EventID:       uuid.New(),
		EventType:     shared.JournalEventRevised,
		TransactionID: uuid.New(),
		AccountID:     uuid.New(),
		UserID:        uuid.New(),
		Type:          shared.TransactionTypeTransfer,
		Direction:     shared.TransferDirectionOutgoing,
		Amount:        "300",
		BalanceBefore: "1000",
		BalanceAfter:  "700",
		OccurredAt:    time.Now().UTC(),
	}
}

func TestEventValidator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*journal.Entry)
		wantErr string
	}{
		{name: "valid transfer leg", mutate: func(*journal.Entry) {}},
		{
			name: "valid adjustment without direction",
			mutate: func(e *journal.Entry) {
				e.Type = shared.TransactionTypeAdjustment
				e.Direction = shared.TransferDirectionNone
				e.BalanceAfter = "-12.5"
			},
		},
		{name: "missing event id", mutate: func(e *journal.Entry) { e.EventID = uuid.Nil }, wantErr: "missing event id"},
		{name: "unknown event type", mutate: func(e *journal.Entry) { e.EventType = "TRANSACTION_ARCHIVED" }, wantErr: "unknown event type"},
		{name: "missing account", mutate: func(e *journal.Entry) { e.AccountID = uuid.Nil }, wantErr: "missing transaction, account or user id"},
		{name: "unknown transaction type", mutate: func(e *journal.Entry) { e.Type = "REFUND" }, wantErr: "unknown transaction type"},
		{name: "transfer without direction", mutate: func(e *journal.Entry) { e.Direction = shared.TransferDirectionNone }, wantErr: "transfer event without direction"},
		{name: "float-ish garbage amount", mutate: func(e *journal.Entry) { e.Amount = "1e" }, wantErr: "amount is not a decimal"},
		{name: "empty balance after", mutate: func(e *journal.Entry) { e.BalanceAfter = "" }, wantErr: "balance_after is not a decimal"},
	}

	validator := NewEventValidator(&MockJournalRepo{}, newTestLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(entry)

			err := validator.Validate(entry)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var invalid service.ErrInvalidEvent
			require.True(t, errors.As(err, &invalid))
			assert.Contains(t, invalid.Reason, tt.wantErr)
		})
	}
}

func TestEventValidator_IsProjected(t *testing.T) {
	eventID := uuid.New()

	tests := []struct {
		name       string
		setupMocks func(*MockJournalRepo)
		want       bool
		wantErr    bool
	}{
		{
			name: "not yet projected",
			setupMocks: func(m *MockJournalRepo) {
				m.On("GetByEventID", mock.Anything, eventID).Return(nil, journal.ErrEntryNotFound{EventID: eventID}).Once()
			},
		},
		{
			name: "already projected",
			setupMocks: func(m *MockJournalRepo) {
				m.On("GetByEventID", mock.Anything, eventID).Return(&journal.Entry{EventID: eventID}, nil).Once()
			},
			want: true,
		},
		{
			name: "lookup failure",
			setupMocks: func(m *MockJournalRepo) {
				m.On("GetByEventID", mock.Anything, eventID).Return(nil, errors.New("connection refused")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockJournalRepo{}
			tt.setupMocks(repo)
			validator := NewEventValidator(repo, newTestLogger())

			got, err := validator.IsProjected(context.Background(), eventID)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}
