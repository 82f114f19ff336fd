package main

import (
	"path/filepath"
	"testing"

	"github.com/iwvelando/fi-forecast/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		override  string
		wantError bool
	}{
		{"defaults", config.LoggingConfig{}, "", false},
		{"console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", false},
		{"override wins", config.LoggingConfig{Level: "bogus"}, "warn", false},
		{"invalid level", config.LoggingConfig{Level: "verbose"}, "", true},
		{"invalid format", config.LoggingConfig{Format: "xml"}, "", true},
		{"output file", config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "fi.log")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.cfg, tt.override)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"project", "optimize", "serve"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("server-config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestProjectFailsOnMissingConfig(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"project", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
