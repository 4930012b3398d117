package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventValidator struct {
	mock.Mock
}

func (m *MockEventValidator) Validate(entry *journal.Entry) error {
	return m.Called(entry).Error(0)
}

func (m *MockEventValidator) IsProjected(ctx context.Context, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, entry *journal.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*journal.Entry, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*journal.Entry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Entry), args.Error(1)
}

func (m *MockJournalRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

var _ journal.Repository = (*MockJournalRepository)(nil)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newEntry() *journal.Entry {
	return &journal.Entry{
		EventID:       uuid.New(),
		EventType:     shared.JournalEventPosted,
		TransactionID: uuid.New(),
		AccountID:     uuid.New(),
		UserID:        uuid.New(),
		Type:          shared.TransactionTypeDebit,
		Amount:        "25.00",
		BalanceBefore: "100.00",
		BalanceAfter:  "125.00",
		OccurredAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		CorrelationID: "corr-1",
	}
}

func projectionCount(outcome string) float64 {
	return testutil.ToFloat64(metrics.JournalProjections.WithLabelValues(outcome))
}

func TestProjectionService_Project(t *testing.T) {
	fixed := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		setupMocks  func(*MockEventValidator, *MockJournalRepository, *journal.Entry)
		wantErr     bool
		wantInvalid bool
		outcome     string
	}{
		{
			name: "projects new event",
			setupMocks: func(v *MockEventValidator, r *MockJournalRepository, e *journal.Entry) {
				v.On("Validate", e).Return(nil).Once()
				v.On("IsProjected", mock.Anything, e.EventID).Return(false, nil).Once()
				r.On("Create", mock.Anything, mock.MatchedBy(func(got *journal.Entry) bool {
					return got.EventID == e.EventID && got.ProjectedAt != nil && got.ProjectedAt.Equal(fixed)
				})).Return(nil).Once()
			},
			outcome: metrics.OutcomeProjected,
		},
		{
			name: "skips already projected event",
			setupMocks: func(v *MockEventValidator, r *MockJournalRepository, e *journal.Entry) {
				v.On("Validate", e).Return(nil).Once()
				v.On("IsProjected", mock.Anything, e.EventID).Return(true, nil).Once()
			},
			outcome: metrics.OutcomeDuplicate,
		},
		{
			name: "treats lost insert race as duplicate",
			setupMocks: func(v *MockEventValidator, r *MockJournalRepository, e *journal.Entry) {
				v.On("Validate", e).Return(nil).Once()
				v.On("IsProjected", mock.Anything, e.EventID).Return(false, nil).Once()
				r.On("Create", mock.Anything, mock.Anything).Return(journal.ErrDuplicateEntry{EventID: e.EventID}).Once()
			},
			outcome: metrics.OutcomeDuplicate,
		},
		{
			name: "rejects invalid event",
			setupMocks: func(v *MockEventValidator, r *MockJournalRepository, e *journal.Entry) {
				v.On("Validate", e).Return(ErrInvalidEvent{EventID: e.EventID, Reason: "missing account id"}).Once()
			},
			wantErr:     true,
			wantInvalid: true,
			outcome:     metrics.OutcomeInvalid,
		},
		{
			name: "idempotency lookup failure is retried",
			setupMocks: func(v *MockEventValidator, r *MockJournalRepository, e *journal.Entry) {
				v.On("Validate", e).Return(nil).Once()
				v.On("IsProjected", mock.Anything, e.EventID).Return(false, errors.New("mongo unavailable")).Once()
			},
			wantErr: true,
			outcome: metrics.OutcomeError,
		},
		{
			name: "store failure is retried",
			setupMocks: func(v *MockEventValidator, r *MockJournalRepository, e *journal.Entry) {
				v.On("Validate", e).Return(nil).Once()
				v.On("IsProjected", mock.Anything, e.EventID).Return(false, nil).Once()
				r.On("Create", mock.Anything, mock.Anything).Return(errors.New("write concern")).Once()
			},
			wantErr: true,
			outcome: metrics.OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &MockEventValidator{}
			repo := &MockJournalRepository{}
			entry := newEntry()
			tt.setupMocks(validator, repo, entry)

			svc := NewProjectionService(validator, repo, newTestLogger()).(*ProjectionServiceImpl)
			svc.now = func() time.Time { return fixed }

			before := projectionCount(tt.outcome)
			err := svc.Project(context.Background(), entry)

			if tt.wantErr {
				require.Error(t, err)
				var invalid ErrInvalidEvent
				assert.Equal(t, tt.wantInvalid, errors.As(err, &invalid))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, before+1, projectionCount(tt.outcome))
			validator.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}
