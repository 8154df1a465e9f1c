package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_ProductionUsesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Env: "production"}, &buf)

	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Info("shown", "wallet_id", "w1")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "w1", entry["wallet_id"])
	assert.NotContains(t, entry["source"], "/")
}

func TestNew_DevelopmentTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Env: "development"}, &buf)

	log.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestNew_ExplicitLevelOverridesEnv(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Env: "development", Format: "json", Level: "warn"}, &buf)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Equal(t, "WARN", decodeLine(t, &buf)["level"])
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: "json"}, &buf)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, logger.UserIDKey, "user-1")
	log.WithContext(ctx).Info("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
}

func TestLogger_WithErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: "json"}, &buf)

	log.WithError(errors.New("boom")).WithFields(map[string]any{"a": "b"}).Error("failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "b", entry["a"])
}
