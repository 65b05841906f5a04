// File: cmd/root_test.go
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/config"
	"github.com/xkilldash9x/courier-cli/internal/testing/fakeapp"
)

func TestVersion(t *testing.T) {
	deps := &testDeps{app: fakeapp.New()}

	out, err := execute(t, deps, "version")
	require.NoError(t, err)
	assert.Equal(t, "courier "+Version+"\n", out)

	out, err = execute(t, deps, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestInitializeConfig_LayersFileAndEnvironment(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "courier.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("target:\n  base_url: https://portal.example\nretry:\n  max_attempts: 5\n"), 0o600))
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("COURIER_SEARCH_YEAR=2031\n"), 0o600))
	t.Setenv("COURIER_SEARCH_YEAR", "")
	require.NoError(t, os.Unsetenv("COURIER_SEARCH_YEAR"))
	t.Setenv("COURIER_RETRY_MAX_ATTEMPTS", "7")

	v := viper.New()
	config.SetDefaults(v)
	require.NoError(t, initializeConfig(v, cfgPath, envPath))
	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example", cfg.Target.BaseURL)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts, "environment wins over the file")
	assert.Equal(t, "2031", cfg.Search.Year, "dotenv fills unset variables")
}

func TestInitializeConfig_MissingFileIsAnError(t *testing.T) {
	v := viper.New()
	err := initializeConfig(v, filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}
