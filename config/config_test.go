package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCREDIFY_API_BASE", "")
	t.Setenv("NEXT_PUBLIC_API_BASE", "")
	os.Unsetenv("ACCREDIFY_API_BASE")
	os.Unsetenv("NEXT_PUBLIC_API_BASE")

	cfg := Load(New())
	assert.Equal(t, "http://localhost:8000/api", cfg.APIBase)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, "accredify_session", cfg.SessionCookie)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, DefaultTemplateCode, cfg.TemplateCode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Dev)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ACCREDIFY_API_BASE", "https://api.example.org/api")
	t.Setenv("ACCREDIFY_HTTP_TIMEOUT", "15s")
	t.Setenv("ACCREDIFY_CHECKLIST_TEMPLATE_CODE", "PMDC-PG-2024")

	cfg := Load(New())
	assert.Equal(t, "https://api.example.org/api", cfg.APIBase)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "PMDC-PG-2024", cfg.TemplateCode)
}

func TestLoad_LegacyEnvName(t *testing.T) {
	t.Setenv("ACCREDIFY_API_BASE", "")
	os.Unsetenv("ACCREDIFY_API_BASE")
	t.Setenv("NEXT_PUBLIC_API_BASE", "https://legacy.example.org/api")

	assert.Equal(t, "https://legacy.example.org/api", Load(New()).APIBase)
}

func TestBindFlags_Override(t *testing.T) {
	t.Setenv("ACCREDIFY_API_BASE", "https://env.example.org/api")
	v := New()
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	require.NoError(t, BindFlags(cmd, v))

	cmd.SetArgs([]string{"--api-base", "https://flag.example.org/api"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "https://flag.example.org/api", Load(v).APIBase)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ACCREDIFY_DOTENV_PROBE=loaded\n"), 0o600))
	t.Setenv("ACCREDIFY_DOTENV_PROBE", "")
	os.Unsetenv("ACCREDIFY_DOTENV_PROBE")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("ACCREDIFY_DOTENV_PROBE"))
}
