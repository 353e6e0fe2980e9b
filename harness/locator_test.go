package harness

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchBinary(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func envWith(kv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := kv[key]
		return v, ok
	}
}

func noExecutable() (string, error) {
	return "", errors.New("should not be consulted")
}

func TestLocateFromEnv(t *testing.T) {
	dir := t.TempDir()
	want := touchBinary(t, dir, "tectonic")

	exe, err := Locate(LocatorOptions{
		LookupEnv:         envWith(map[string]string{BinPathEnv: dir}),
		CurrentExecutable: noExecutable,
		GOOS:              "linux",
	})

	require.NoError(t, err)
	assert.Equal(t, want, exe.Path)
	assert.Equal(t, SourceEnv, exe.Source)
}

func TestLocateBinDirWinsOverEnv(t *testing.T) {
	flagDir := t.TempDir()
	want := touchBinary(t, flagDir, "tectonic")
	envDir := t.TempDir()
	touchBinary(t, envDir, "tectonic")

	exe, err := Locate(LocatorOptions{
		BinDir:            flagDir,
		LookupEnv:         envWith(map[string]string{BinPathEnv: envDir}),
		CurrentExecutable: noExecutable,
		GOOS:              "linux",
	})

	require.NoError(t, err)
	assert.Equal(t, want, exe.Path)
	assert.Equal(t, SourceFlag, exe.Source)
}

func TestLocateInferred(t *testing.T) {
	tests := []struct {
		name    string
		testExe string // relative to the build root
	}{
		{name: "strips deps segment", testExe: "target/debug/deps/executable-3f2a"},
		{name: "binary next to test process", testExe: "target/debug/executable-3f2a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			want := touchBinary(t, filepath.Join(root, "target", "debug"), "tectonic")

			exe, err := Locate(LocatorOptions{
				LookupEnv: envWith(nil),
				CurrentExecutable: func() (string, error) {
					return filepath.Join(root, filepath.FromSlash(tt.testExe)), nil
				},
				GOOS: "linux",
			})

			require.NoError(t, err)
			assert.Equal(t, want, exe.Path)
			assert.Equal(t, SourceInferred, exe.Source)
		})
	}
}

func TestLocateEmptyEnvIsUnset(t *testing.T) {
	root := t.TempDir()
	want := touchBinary(t, root, "tectonic")

	exe, err := Locate(LocatorOptions{
		LookupEnv: envWith(map[string]string{BinPathEnv: ""}),
		CurrentExecutable: func() (string, error) {
			return filepath.Join(root, "deps", "test"), nil
		},
		GOOS: "linux",
	})

	require.NoError(t, err)
	assert.Equal(t, want, exe.Path)
}

func TestLocateWindowsExtension(t *testing.T) {
	dir := t.TempDir()
	touchBinary(t, dir, "tectonic")
	want := touchBinary(t, dir, "tectonic.exe")

	exe, err := Locate(LocatorOptions{BinDir: dir, GOOS: "windows"})

	require.NoError(t, err)
	assert.Equal(t, want, exe.Path)
}

func TestLocateMissingBinaryAbortsWithExpectedPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "never-built")
	t.Setenv(BinPathEnv, missing)

	_, err := Locate(LocatorOptions{})

	require.Error(t, err)
	var locateErr *LocateError
	require.ErrorAs(t, err, &locateErr)
	assert.Equal(t, filepath.Join(missing, DefaultBinaryName+ExeExtension(runtime.GOOS)), locateErr.Path)
	assert.Equal(t, SourceEnv, locateErr.Source)
	assert.Contains(t, err.Error(), locateErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, KindLocate, KindOf(err))
}

func TestLocateRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tectonic"), 0755))

	_, err := Locate(LocatorOptions{BinDir: dir, GOOS: "linux"})

	var locateErr *LocateError
	require.ErrorAs(t, err, &locateErr)
	assert.Contains(t, err.Error(), "directory")
}

func TestLocateWithoutExecutable(t *testing.T) {
	_, err := Locate(LocatorOptions{
		LookupEnv:         envWith(nil),
		CurrentExecutable: func() (string, error) { return "", errors.New("no /proc") },
	})

	require.Error(t, err)
	assert.Equal(t, KindLocate, KindOf(err))
	assert.Contains(t, err.Error(), BinPathEnv)
}

func TestExeExtension(t *testing.T) {
	assert.Equal(t, ".exe", ExeExtension("windows"))
	assert.Equal(t, "", ExeExtension("linux"))
	assert.Equal(t, "", ExeExtension("darwin"))
}
