package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "kikitori", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "kikitori", "config.jsonc"), resolved)
}

func TestEnvPathSitsBesideConfig(t *testing.T) {
	require.Equal(t, filepath.Join("/etc", "kikitori", ".env"), EnvPath("/etc/kikitori/config.jsonc"))
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.False(t, loaded.EnvLoaded)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  "audio": {
    "input": "elgato",
    "fallback": "default"
  },
  "backend": {"provider": "gemini", "model": "gemini-2.5-flash"},
  "paste": {
    "enable": false
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "elgato", loaded.Config.Audio.Input)
	require.Equal(t, "gemini-2.5-flash", loaded.Config.Backend.Model)
	require.False(t, loaded.Config.Paste.Enable)
}

func TestLoadExportsEnvFileBesideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend": {"api_key_env": "KIKITORI_TEST_KEY"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KIKITORI_TEST_KEY=from-file\n"), 0o600))

	t.Setenv("KIKITORI_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("KIKITORI_TEST_KEY"))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.EnvLoaded)
	require.Equal(t, "from-file", Credential(loaded.Config))
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("KIKITORI_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("KIKITORI_TEST_KEY", "from-shell")

	loaded, err := LoadEnvFile(envPath)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "from-shell", os.Getenv("KIKITORI_TEST_KEY"))

	loaded, err = LoadEnvFile(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.False(t, loaded)
}

func TestCredentialTrimsAndUsesProviderDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "  sk-test  ")
	cfg := Default()
	cfg.Backend.Provider = ProviderOpenAI
	require.Equal(t, "sk-test", Credential(cfg))

	t.Setenv("GOOGLE_API_KEY", "")
	require.Empty(t, Credential(Default()))
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}
