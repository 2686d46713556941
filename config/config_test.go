package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
timestamp_url: http://timestamp.example.com
sdk_dir: C:\kits\bin\10.0.22621.0\x64
inf2cat_os: 10_X64,10_X86
log_level: debug
`), 0644))

	conf, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://timestamp.example.com", conf.TimestampURL)
	assert.Equal(t, `C:\kits\bin\10.0.22621.0\x64`, conf.SdkDir)
	assert.Equal(t, "10_X64,10_X86", conf.Inf2CatOS)
	assert.Equal(t, "debug", conf.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("timestamp_url: [oops"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}
