package producers

import (
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTopicAdmin struct {
	mock.Mock
}

func (m *mockTopicAdmin) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	args := m.Called(topics)
	partitions, _ := args.Get(0).([]kafka.Partition)
	return partitions, args.Error(1)
}

func (m *mockTopicAdmin) CreateTopics(topics ...kafka.TopicConfig) error {
	args := m.Called(topics)
	return args.Error(0)
}

func withFastRetries(t *testing.T) {
	t.Helper()
	attempts, backoff := partitionReadAttempts, partitionReadBackoff
	partitionReadAttempts, partitionReadBackoff = 2, time.Millisecond
	t.Cleanup(func() {
		partitionReadAttempts, partitionReadBackoff = attempts, backoff
	})
}

func TestEnsureTopic(t *testing.T) {
	withFastRetries(t)

	t.Run("TopicExists", func(t *testing.T) {
		admin := new(mockTopicAdmin)
		admin.On("ReadPartitions", []string{"events"}).
			Return([]kafka.Partition{{Topic: "events", ID: 0}}, nil).Once()

		require.NoError(t, ensureTopic(admin, "events", 3, 1, newTestLogger()))
		admin.AssertExpectations(t)
		admin.AssertNotCalled(t, "CreateTopics", mock.Anything)
	})

	t.Run("CreatesMissingTopicWithDefaults", func(t *testing.T) {
		admin := new(mockTopicAdmin)
		admin.On("ReadPartitions", []string{"events"}).Return(nil, errors.New("unknown topic")).Twice()
		admin.On("CreateTopics", []kafka.TopicConfig{{
			Topic:             "events",
			NumPartitions:     1,
			ReplicationFactor: 1,
		}}).Return(nil).Once()

		require.NoError(t, ensureTopic(admin, "events", 0, 0, newTestLogger()))
		admin.AssertExpectations(t)
	})

	t.Run("CreateFailure", func(t *testing.T) {
		admin := new(mockTopicAdmin)
		createErr := errors.New("not controller")
		admin.On("ReadPartitions", []string{"events"}).Return([]kafka.Partition{}, nil).Twice()
		admin.On("CreateTopics", mock.Anything).Return(createErr).Once()

		err := ensureTopic(admin, "events", 2, 1, newTestLogger())
		assert.ErrorIs(t, err, createErr)
	})
}
