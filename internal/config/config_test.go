package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Source{Getenv: env(nil)}.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "story-management.db", cfg.DB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Default", cfg.DefaultProject)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "storyvault.yaml", "db: /tmp/saga.db\nlog_level: debug\n")

	cfg, err := Source{File: path, Getenv: env(nil)}.Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/saga.db", cfg.DB)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Default", cfg.DefaultProject, "unset keys keep defaults")
}

func TestLoad_EmptyYAMLFile(t *testing.T) {
	path := writeFile(t, "storyvault.yaml", "\n")

	cfg, err := Source{File: path, Getenv: env(nil)}.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeFile(t, "storyvault.yaml", "logLevel: debug\n")

	_, err := Source{File: path, Getenv: env(nil)}.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Source{File: filepath.Join(t.TempDir(), "nope.yaml"), Getenv: env(nil)}.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "storyvault.yaml", "db: file.db\nlog_level: warn\ndefault_project: From File\n")

	cfg, err := Source{File: path, Getenv: env(map[string]string{
		EnvDB:             "env.db",
		EnvLogLevel:       "ERROR",
		EnvDefaultProject: "  ",
	})}.Load()
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "From File", cfg.DefaultProject, "blank env values do not override")
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "STORYVAULT_DB=dotenv.db\nSTORYVAULT_DEFAULT_PROJECT=\"My Saga\"\n")

	cfg, err := Source{EnvFile: envFile, Getenv: env(map[string]string{EnvDB: "real.db"})}.Load()
	require.NoError(t, err)
	assert.Equal(t, "real.db", cfg.DB, "process environment wins over .env")
	assert.Equal(t, "My Saga", cfg.DefaultProject)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	cfg, err := Source{EnvFile: filepath.Join(t.TempDir(), ".env"), Getenv: env(nil)}.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UsesProcessEnvironment(t *testing.T) {
	t.Setenv(EnvDB, "process.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "process.db", cfg.DB)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"empty db", func(c *Config) { c.DB = "" }, true},
		{"blank project", func(c *Config) { c.DefaultProject = "   " }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_InvalidLevelFromEnv(t *testing.T) {
	_, err := Source{Getenv: env(map[string]string{EnvLogLevel: "chatty"})}.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{}.SlogLevel())
}
