package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("FUNDS_TEST_KEY", "value")

	assert.Equal(t, "value", GetEnv("FUNDS_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("FUNDS_TEST_MISSING", "fallback"))
}

func TestMustGetEnv(t *testing.T) {
	t.Setenv("FUNDS_TEST_REQUIRED", "value")

	assert.Equal(t, "value", MustGetEnv("FUNDS_TEST_REQUIRED"))
}

func TestConfigureLogging(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	logger := ConfigureLogging()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestConfigureLoggingInvalidLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "nonsense")
	t.Setenv("LOG_FORMAT", "text")

	logger := ConfigureLogging()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
