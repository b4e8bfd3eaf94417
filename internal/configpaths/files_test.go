package configpaths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExt(t *testing.T) {
	for format, want := range map[string]string{
		"json": "json",
		"yaml": "yaml",
		"yml":  "yaml",
		"toml": "toml",
		"":     "json",
		"ini":  "json",
	} {
		assert.Equal(t, want, Ext(format), format)
	}
}

func TestDefaultConfigDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG lookup only")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, Name), dir)

	path, err := DefaultNamedConfigPath("poll", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, Name, "poll.yaml"), path)
}

func TestConfigCandidatePaths(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	}
	wd, err := os.Getwd()
	require.NoError(t, err)

	jsonPaths, yamlPaths, tomlPaths := ConfigCandidatePaths("custom.yml")
	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "custom.yml", yamlPaths[0])
	assert.Contains(t, jsonPaths, filepath.Join(wd, "bitusb.json"))
	assert.Contains(t, yamlPaths, filepath.Join(wd, "config.yaml"))
	assert.Contains(t, tomlPaths, filepath.Join(wd, "bitusb.toml"))

	jsonPaths, _, tomlPaths = ConfigCandidatePaths("other.toml")
	assert.Equal(t, "other.toml", tomlPaths[0])
	assert.NotContains(t, jsonPaths, "other.toml")

	jsonPaths, _, _ = ConfigCandidatePaths("plain")
	assert.Equal(t, "plain", jsonPaths[0])
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "bitusb.json")
	require.NoError(t, EnsureDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
