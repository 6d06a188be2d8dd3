package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{Path: "/some/path"},
		AI:     AIConfig{AnalyzeRPS: 0.2, AnalyzeBurst: 3},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_AnalyzeRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.AI.AnalyzeRPS = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.AI.AnalyzeBurst = -1
	assert.Error(t, cfg.Validate())
}

func TestAnalysisEnabled(t *testing.T) {
	ai := AIConfig{}
	assert.False(t, ai.AnalysisEnabled())

	ai = AIConfig{Endpoint: "https://example.openai.azure.com", APIKey: "key"}
	assert.False(t, ai.AnalysisEnabled(), "deployment still missing")

	ai.Deployment = "gpt-4o-mini"
	assert.True(t, ai.AnalysisEnabled())
}

func TestExpandDataPath_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.Data.Path = ""

	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "FocusFlow", "data"), cfg.Data.Path)
}

func TestExpandDataPath_Tilde(t *testing.T) {
	cfg := validConfig()
	cfg.Data.Path = "~/focus-data"

	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "focus-data"), cfg.Data.Path)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nTEST_FOCUSFLOW_KEY=hello\nTEST_FOCUSFLOW_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("TEST_FOCUSFLOW_KEY", "")
	os.Unsetenv("TEST_FOCUSFLOW_KEY")
	t.Setenv("TEST_FOCUSFLOW_QUOTED", "")
	os.Unsetenv("TEST_FOCUSFLOW_QUOTED")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("TEST_FOCUSFLOW_KEY"))
	assert.Equal(t, "world", os.Getenv("TEST_FOCUSFLOW_QUOTED"))
}

func TestLoadEnvFile_EnvVarsTakePrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TEST_FOCUSFLOW_PRIO=file\n"), 0o600))

	t.Setenv("TEST_FOCUSFLOW_PRIO", "env")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "env", os.Getenv("TEST_FOCUSFLOW_PRIO"))
}
