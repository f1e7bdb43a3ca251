// File: internal/observability/logger_test.go
package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/avikamboj/ordersync-cli/internal/config"
)

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger, "fallback logger must always be available")
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "test"}, zapcore.AddSync(nopWriter{}))
	first := GetLogger()

	// A second call must not replace the stored logger.
	Initialize(config.LoggerConfig{Level: "error", Format: "console", ServiceName: "other"}, zapcore.AddSync(nopWriter{}))
	assert.Same(t, first, GetLogger())
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	Initialize(config.LoggerConfig{Level: "chatty", Format: "json", ServiceName: "test"}, zapcore.AddSync(nopWriter{}))
	logger := GetLogger()
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug must be off when the level string is invalid")
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
