package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		fallback string
		setValue string
		expected string
	}{
		{
			name:     "uses env value",
			key:      "TEST_VAR",
			fallback: "default",
			setValue: "custom",
			expected: "custom",
		},
		{
			name:     "uses fallback",
			key:      "MISSING_VAR",
			fallback: "default",
			setValue: "",
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.setValue)
			require.Equal(t, tt.expected, getEnv(tt.key, tt.fallback))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		setValue string
		expected int
	}{
		{"parses int", "200", 200},
		{"uses fallback on invalid", "invalid", 100},
		{"uses fallback when missing", "", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.setValue)
			require.Equal(t, tt.expected, getEnvInt("TEST_INT", 100))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		setValue string
		fallback bool
		expected bool
	}{
		{"parses false", "false", true, false},
		{"parses numeric true", "1", false, true},
		{"uses fallback on invalid", "nope", true, true},
		{"uses fallback when missing", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.setValue)
			require.Equal(t, tt.expected, getEnvBool("TEST_BOOL", tt.fallback))
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		PathEnv, "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"LOG_LEVEL", "AUDIT_ENABLED", "AUDIT_DB_PATH", "MOLSELECTOR_DEFAULT_FOLDER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), *cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("AUDIT_ENABLED", "false")
	t.Setenv("MOLSELECTOR_DEFAULT_FOLDER", "/data/molecules")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Audit.Enabled)
	require.Equal(t, "/data/molecules", cfg.Review.DefaultFolder)
	require.Equal(t, 30, cfg.Server.ReadTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`server:
  port: 7000
  shutdown_timeout: 5
review:
  default_folder: /srv/review
audit:
  path: /var/lib/molselector/audit.db
`), 0644))
	t.Setenv(PathEnv, path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7100, cfg.Server.Port)
	require.Equal(t, 5, cfg.Server.ShutdownTimeout)
	require.Equal(t, 30, cfg.Server.WriteTimeout)
	require.Equal(t, "/srv/review", cfg.Review.DefaultFolder)
	require.True(t, cfg.Audit.Enabled)
	require.Equal(t, "/var/lib/molselector/audit.db", cfg.Audit.Path)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(PathEnv, filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		require.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0644))
		t.Setenv(PathEnv, path)
		_, err := Load()
		require.ErrorContains(t, err, "failed to parse YAML config")
	})

	t.Run("port out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "70000")
		_, err := Load()
		require.ErrorContains(t, err, "failed to validate config")
	})

	t.Run("unknown log level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		require.ErrorContains(t, err, "failed to validate config")
	})

	t.Run("audit enabled without path", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("audit:\n  enabled: true\n  path: \"\"\n"), 0644))
		t.Setenv(PathEnv, path)
		_, err := Load()
		require.ErrorContains(t, err, "failed to validate config")
	})
}
