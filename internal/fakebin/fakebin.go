// Package fakebin lets a test binary stand in for the executable under
// test. A TestMain calls Main first; when EnvVar is set the process
// behaves like a tiny document compiler and never returns.
//
//	-h                print usage, exit 0
//	--sleep=DUR       sleep, then exit 0
//	--exit=N          print to stderr, exit N
//	--signal          kill itself (SIGKILL on unix)
//	--pwd             print the working directory
//	[--format=F] FILE read FILE, write FILE.pdf next to it, exit 0;
//	                  missing FILE prints to stderr and exits 1
package fakebin

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvVar switches a test binary into fake mode.
const EnvVar = "TECTEST_FAKE_BINARY"

// Env is the child environment entry enabling fake mode.
const Env = EnvVar + "=1"

// Main runs the fake when EnvVar is set and returns otherwise.
func Main() {
	if os.Getenv(EnvVar) != "1" {
		return
	}
	os.Exit(run(os.Args[1:]))
}

// Install links the running test binary into a fresh directory as name,
// mimicking a build-output directory. It returns that directory.
func Install(dir, name string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.Symlink(self, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	return dir, nil
}

func run(args []string) int {
	var input string
	for _, arg := range args {
		switch {
		case arg == "-h":
			fmt.Println("Usage: tectonic [OPTIONS] <INPUT>")
			fmt.Println("    --format <FORMAT>    The name of the format file")
			return 0
		case strings.HasPrefix(arg, "--sleep="):
			d, err := time.ParseDuration(strings.TrimPrefix(arg, "--sleep="))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: bad duration: %v\n", err)
				return 2
			}
			time.Sleep(d)
			return 0
		case strings.HasPrefix(arg, "--exit="):
			code, err := strconv.Atoi(strings.TrimPrefix(arg, "--exit="))
			if err != nil {
				return 2
			}
			fmt.Fprintf(os.Stderr, "error: exiting with %d\n", code)
			return code
		case arg == "--signal":
			killSelf()
			time.Sleep(time.Minute)
			return 0
		case arg == "--pwd":
			wd, _ := os.Getwd()
			fmt.Println(wd)
			return 0
		case strings.HasPrefix(arg, "--format="):
		default:
			input = arg
		}
	}

	if input == "" {
		fmt.Fprintln(os.Stderr, "error: no input file given")
		return 1
	}
	data, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open input file %q: %v\n", input, err)
		return 1
	}
	out := strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write %q: %v\n", out, err)
		return 1
	}
	fmt.Printf("Writing `%s` (%d bytes).\n", out, len(data))
	return 0
}
