package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapFields_CommonTypes(t *testing.T) {
	fields := toZapFields([]Field{
		String("s", "v"),
		Int("i", 7),
		Int64("i64", 9),
		Float64("f", 0.85),
		Bool("b", true),
		Duration("d", time.Second),
		Err(errors.New("boom")),
		Any("a", struct{}{}),
	})
	require.Len(t, fields, 8)
	assert.Equal(t, "s", fields[0].Key)
	assert.Equal(t, "error", fields[6].Key)
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromCore(core)

	child := logger.With(String("publication_id", "PMID:123")).Named("pipeline")
	child.Info("classified mention", Int("mentions", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "classified mention", entries[0].Message)
	assert.Equal(t, "pipeline", entries[0].LoggerName)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "PMID:123", ctx["publication_id"])
	assert.Equal(t, int64(3), ctx["mentions"])
}

func TestNewLogger_DefaultsApplied(t *testing.T) {
	logger, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("startup")
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil is ignored rather than clobbering the default.
	SetDefault(nil)
	assert.Equal(t, l, Default())
}
