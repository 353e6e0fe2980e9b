package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// BinPathEnv names the build-output directory holding the binary under
	// test. It takes precedence over inferring the directory.
	BinPathEnv = "TECTONIC_BIN_PATH"

	// DefaultBinaryName is the executable the harness drives.
	DefaultBinaryName = "tectonic"

	// artifactSegment is the intermediate build directory test executables
	// live in, one level below the final binaries.
	artifactSegment = "deps"
)

// Source records how an Executable was resolved.
type Source string

const (
	SourceFlag     Source = "from --bin-path"
	SourceEnv      Source = "from " + BinPathEnv
	SourceInferred Source = "inferred from the running process"
)

// Executable is the resolved location of the binary under test.
// Resolve it once per process and pass it around by value.
type Executable struct {
	Path   string
	Source Source
}

func (e Executable) String() string {
	return fmt.Sprintf("%s (%s)", e.Path, e.Source)
}

// LocatorOptions configures Locate. Zero values use the process environment.
type LocatorOptions struct {
	// Name is the binary name without extension. Defaults to DefaultBinaryName.
	Name string
	// BinDir is an explicit build-output directory; it wins over the environment.
	BinDir string
	// GOOS selects the executable extension. Defaults to runtime.GOOS.
	GOOS string

	LookupEnv         func(string) (string, bool)
	CurrentExecutable func() (string, error)
}

// Locate resolves the binary under test:
//  1. opts.BinDir, if set
//  2. $TECTONIC_BIN_PATH, if set
//  3. the directory of the running process, minus a trailing "deps" segment
//
// A resolved path that does not exist is a *LocateError; there is no
// fallback to another location.
func Locate(opts LocatorOptions) (Executable, error) {
	if opts.Name == "" {
		opts.Name = DefaultBinaryName
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.CurrentExecutable == nil {
		opts.CurrentExecutable = os.Executable
	}

	dir, source, err := buildDir(opts)
	if err != nil {
		return Executable{}, &LocateError{Source: source, Err: err}
	}

	path, err := filepath.Abs(filepath.Join(dir, opts.Name+ExeExtension(opts.GOOS)))
	if err != nil {
		return Executable{}, &LocateError{Path: path, Source: source, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Executable{}, &LocateError{Path: path, Source: source, Err: err}
	}
	if info.IsDir() {
		return Executable{}, &LocateError{Path: path, Source: source, Err: errors.New("path is a directory")}
	}

	return Executable{Path: path, Source: source}, nil
}

// ExeExtension returns the executable file extension for goos.
func ExeExtension(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

func buildDir(opts LocatorOptions) (string, Source, error) {
	if opts.BinDir != "" {
		return opts.BinDir, SourceFlag, nil
	}
	if dir, ok := opts.LookupEnv(BinPathEnv); ok && dir != "" {
		return dir, SourceEnv, nil
	}

	self, err := opts.CurrentExecutable()
	if err != nil {
		return "", SourceInferred, fmt.Errorf("failed to find running executable: %w", err)
	}
	dir := filepath.Dir(self)
	if filepath.Base(dir) == artifactSegment {
		dir = filepath.Dir(dir)
	}
	return dir, SourceInferred, nil
}
