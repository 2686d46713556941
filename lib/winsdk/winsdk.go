// Package winsdk locates the Windows Kits tool binaries (signtool.exe,
// inf2cat.exe) used by the signing and packaging commands.
package winsdk

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Environment variables set by a Visual Studio / SDK developer prompt.
const (
	envVerBinPath = "WindowsSdkVerBinPath"
	envSdkDir     = "WindowsSdkDir"
)

const defaultKitsRoot = `C:\Program Files (x86)\Windows Kits\10`

var ErrNotFound = errors.New("Windows SDK not found; install the Windows SDK or set " + envSdkDir)

// Resolver finds SDK tool directories. The lookup functions default to the
// real environment and filesystem; tests replace them.
type Resolver struct {
	// Dir overrides discovery entirely when set (config file or flag).
	Dir string
	// Arch selects the tool architecture subdirectory; defaults to the
	// architecture of this process.
	Arch string

	Getenv  func(string) string
	ReadDir func(string) ([]os.DirEntry, error)
	Stat    func(string) (os.FileInfo, error)
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}

func (r *Resolver) readDir(name string) ([]os.DirEntry, error) {
	if r.ReadDir != nil {
		return r.ReadDir(name)
	}
	return os.ReadDir(name)
}

func (r *Resolver) stat(name string) (os.FileInfo, error) {
	if r.Stat != nil {
		return r.Stat(name)
	}
	return os.Stat(name)
}

func (r *Resolver) arch() string {
	if r.Arch != "" {
		return r.Arch
	}
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	case "arm64":
		return "arm64"
	default:
		return runtime.GOARCH
	}
}

// Locate returns the directory holding the SDK tool binaries for the
// current architecture.
func (r *Resolver) Locate() (string, error) {
	if r.Dir != "" {
		return r.Dir, nil
	}
	if dir := r.getenv(envVerBinPath); dir != "" {
		return filepath.Join(dir, r.arch()), nil
	}
	binRoot := defaultKitsRoot + `\bin`
	if dir := r.getenv(envSdkDir); dir != "" {
		binRoot = filepath.Join(dir, "bin")
	}
	version, err := r.highestVersion(binRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(binRoot, version, r.arch()), nil
}

// Tool resolves the full path of a named SDK tool and verifies it exists.
func (r *Resolver) Tool(name string) (string, error) {
	dir, err := r.Locate()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if _, err := r.stat(path); err != nil {
		return "", fmt.Errorf("%s not found in %s: %w", name, dir, ErrNotFound)
	}
	return path, nil
}

func (r *Resolver) highestVersion(binRoot string) (string, error) {
	entries, err := r.readDir(binRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, binRoot)
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "10.") {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%w: no versioned tool directories under %s", ErrNotFound, binRoot)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versionLess(versions[i], versions[j])
	})
	return versions[len(versions)-1], nil
}

func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, _ := strconv.Atoi(as[i])
		bi, _ := strconv.Atoi(bs[i])
		if ai != bi {
			return ai < bi
		}
	}
	return len(as) < len(bs)
}

// MakeCab ships with Windows itself rather than the SDK, so it is resolved
// from PATH.
func MakeCab() (string, error) {
	path, err := exec.LookPath("makecab.exe")
	if err != nil {
		return "", fmt.Errorf("makecab.exe not found on PATH: %w", err)
	}
	return path, nil
}
