package winsdk

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	name string
	dir  bool
}

func (e fakeEntry) Name() string               { return e.name }
func (e fakeEntry) IsDir() bool                { return e.dir }
func (e fakeEntry) Type() fs.FileMode          { return 0 }
func (e fakeEntry) Info() (fs.FileInfo, error) { return nil, fs.ErrInvalid }

type fakeInfo struct{ name string }

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return 0 }
func (i fakeInfo) Mode() fs.FileMode  { return 0 }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return false }
func (i fakeInfo) Sys() any           { return nil }

func resolver(env map[string]string, dirs map[string][]os.DirEntry, files map[string]bool) *Resolver {
	return &Resolver{
		Arch:   "x64",
		Getenv: func(key string) string { return env[key] },
		ReadDir: func(name string) ([]os.DirEntry, error) {
			entries, ok := dirs[name]
			if !ok {
				return nil, fs.ErrNotExist
			}
			return entries, nil
		},
		Stat: func(name string) (os.FileInfo, error) {
			if files[name] {
				return fakeInfo{name: filepath.Base(name)}, nil
			}
			return nil, fs.ErrNotExist
		},
	}
}

func TestLocateVerBinPath(t *testing.T) {
	r := resolver(map[string]string{
		envVerBinPath: filepath.Join("kits", "bin", "10.0.22621.0"),
		envSdkDir:     "ignored",
	}, nil, nil)
	dir, err := r.Locate()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("kits", "bin", "10.0.22621.0", "x64"), dir)
}

func TestLocateSdkDirPicksHighestVersion(t *testing.T) {
	binRoot := filepath.Join("kits", "bin")
	r := resolver(
		map[string]string{envSdkDir: "kits"},
		map[string][]os.DirEntry{binRoot: {
			fakeEntry{"10.0.19041.0", true},
			fakeEntry{"10.0.22621.0", true},
			fakeEntry{"10.0.9999.0", true},
			fakeEntry{"arm64", true},
			fakeEntry{"README.txt", false},
		}},
		nil,
	)
	dir, err := r.Locate()
	require.NoError(t, err)
	// numeric comparison, not lexical: 22621 beats 9999
	assert.Equal(t, filepath.Join(binRoot, "10.0.22621.0", "x64"), dir)
}

func TestLocateNothingFound(t *testing.T) {
	r := resolver(nil, nil, nil)
	_, err := r.Locate()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateOverride(t *testing.T) {
	r := &Resolver{Dir: "tools"}
	dir, err := r.Locate()
	require.NoError(t, err)
	assert.Equal(t, "tools", dir)
}

func TestTool(t *testing.T) {
	toolDir := filepath.Join("kits", "bin", "10.0.22621.0", "x64")
	r := resolver(
		map[string]string{envVerBinPath: filepath.Join("kits", "bin", "10.0.22621.0")},
		nil,
		map[string]bool{filepath.Join(toolDir, "signtool.exe"): true},
	)
	path, err := r.Tool("signtool.exe")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(toolDir, "signtool.exe"), path)

	_, err = r.Tool("inf2cat.exe")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVersionLess(t *testing.T) {
	assert.True(t, versionLess("10.0.9999.0", "10.0.22621.0"))
	assert.False(t, versionLess("10.0.22621.0", "10.0.9999.0"))
	assert.True(t, versionLess("10.0", "10.0.1"))
}
