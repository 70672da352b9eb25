package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SHEETVIZ_DATA_ROOT", root)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Equal(t, 10000, cfg.MaxRows)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1000, cfg.MaxSessions)
	assert.Equal(t, filepath.Join(root, "theme.json"), cfg.ThemeFile())
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestLoad_DefaultDataRootFollowsXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("SHEETVIZ_DATA_ROOT", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "sheetviz"), cfg.DataRoot)
}

func TestLoadFrom_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envfile := filepath.Join(dir, ".env")
	content := "SHEETVIZ_ENV=development\nSHEETVIZ_PORT=9123\nSHEETVIZ_MAX_ROWS=50\nSHEETVIZ_DATA_ROOT=" + dir + "\n"
	require.NoError(t, os.WriteFile(envfile, []byte(content), 0o600))

	// Overload writes into the process environment; register cleanups first.
	for _, k := range []string{"SHEETVIZ_ENV", "SHEETVIZ_PORT", "SHEETVIZ_MAX_ROWS", "SHEETVIZ_DATA_ROOT"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadFrom(envfile)
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, 9123, cfg.Port)
	assert.Equal(t, 50, cfg.MaxRows)
	assert.Equal(t, dir, cfg.DataRoot)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	t.Setenv("SHEETVIZ_DATA_ROOT", t.TempDir())
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, cfg.Mode)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Setenv("SHEETVIZ_DATA_ROOT", t.TempDir())
	t.Setenv("SHEETVIZ_ENV", "staging")
	t.Setenv("SHEETVIZ_LOG_MODE", "XML")
	t.Setenv("SHEETVIZ_MAX_ROWS", "0")
	t.Setenv("SHEETVIZ_MAX_SESSIONS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHEETVIZ_ENV")
	assert.Contains(t, err.Error(), "SHEETVIZ_LOG_MODE")
	assert.Contains(t, err.Error(), "SHEETVIZ_MAX_ROWS")
	assert.Contains(t, err.Error(), "SHEETVIZ_MAX_SESSIONS")
}

func TestSetupLog_File(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{})
		log.SetLevel(log.InfoLevel)
	})

	t.Setenv("SHEETVIZ_DATA_ROOT", t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	cfg.Mode = ModeDevelopment
	cfg.LogMode = "JSON"
	cfg.Log = filepath.Join(t.TempDir(), "logs", "sheetviz.log")

	closer, err := SetupLog(cfg)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.Infof("[test] hello %s", "file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"[test] hello file"`)
}
