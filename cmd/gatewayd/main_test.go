package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotapilot/gateway/config"
)

func TestInitLogger_DefaultsToJSON(t *testing.T) {
	logger, err := initLogger(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestInitLogger_ConsoleFormat(t *testing.T) {
	logger, err := initLogger(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	_, err := initLogger(config.LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}

func TestInitLogger_DefaultOutputPath(t *testing.T) {
	logger, err := initLogger(config.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)
}
