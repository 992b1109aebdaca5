package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvongray/shipping-labels/internal/logger"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return &buf
}

func TestInfoEmitsJSON(t *testing.T) {
	buf := captureLogger(t)

	logger.Info("import started", slog.String("filename", "orders.csv"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "import started", entry["msg"])
	assert.Equal(t, "orders.csv", entry["filename"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestWithImportID(t *testing.T) {
	buf := captureLogger(t)

	logger.WithImportID("job-123").Info("progress")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "job-123", entry["import_job_id"])
}

func TestWithRequestID(t *testing.T) {
	buf := captureLogger(t)

	logger.WithRequestID("req-9").Warn("slow request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, "WARN", entry["level"])
}
