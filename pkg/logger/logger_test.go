package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.sugar)

	dev := NewDevelopment()
	assert.NotNil(t, dev.sugar)
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewWithCore(core)

	logger.Debug("debug %d", 1)
	logger.Info("User %s logged in with ID %d", "john", 123)
	logger.Warn("Warning: %s count is %d", "items", 5)
	logger.Error("Failed to process request %d: %s", 404, "not found")

	entries := logs.All()
	assert.Len(t, entries, 4)
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, "User john logged in with ID 123", entries[1].Message)
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
	assert.Equal(t, "Failed to process request 404: not found", entries[3].Message)
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewWithCore(core).With("service", "post")

	logger.Info("started")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "post", entries[0].ContextMap()["service"])
}
