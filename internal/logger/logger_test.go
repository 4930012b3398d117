package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/finance-tracker-ledger/internal/config"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name              string
		logLevel          string
		expectedSlogLevel slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "WARN", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Logging: config.LoggingConfig{Level: tc.logLevel},
			}

			logger := NewLogger(cfg)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.expectedSlogLevel))
			if tc.expectedSlogLevel > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.expectedSlogLevel-4))
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestLogger_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Application: config.ApplicationConfig{Name: "ledger"},
		Logging:     config.LoggingConfig{Level: "info"},
	}
	logger := newLogger(&buf, cfg)

	ctx := shared.WithCorrelationID(context.Background(), "corr-42")
	logger.With("component", "test").InfoContext(ctx, "Transaction created", "id", "tx-1")
	logger.Info("No context")

	records := decodeLines(t, &buf)
	require.Len(t, records, 3)

	withCtx := records[1]
	assert.Equal(t, "Transaction created", withCtx["msg"])
	assert.Equal(t, "corr-42", withCtx["correlation_id"])
	assert.Equal(t, "ledger", withCtx["app"])
	assert.Equal(t, "test", withCtx["component"])

	assert.NotContains(t, records[2], "correlation_id")
}
