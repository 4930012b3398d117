package outbox_poller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/outbox"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/platform/messaging/producers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	return m.Called(ctx, key, value, headers).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

type MockEventRelay struct {
	mock.Mock
}

func (m *MockEventRelay) Relay(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

var (
	_ outbox.Repository        = (*MockOutboxRepo)(nil)
	_ producers.EventPublisher = (*MockEventPublisher)(nil)
	_ EventRelay               = (*MockEventRelay)(nil)
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newOutboxMessage builds a pending row around a real encoded journal event
func newOutboxMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	entry := &journal.Entry{
		EventID:       uuid.New(),
		EventType:     shared.JournalEventRemoved,
		TransactionID: uuid.New(),
		AccountID:     uuid.New(),
		UserID:        uuid.New(),
		Type:          shared.TransactionTypeDebit,
		Amount:        "10",
		BalanceBefore: "110",
		BalanceAfter:  "100",
		OccurredAt:    time.Now().UTC(),
		CorrelationID: "corr-outbox",
	}
	payload, err := json.Marshal(entry)
	require.NoError(t, err)

	return &outbox.Message{
		ID:            id,
		EventID:       entry.EventID,
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      attempts,
		CreatedAt:     time.Now(),
	}
}
