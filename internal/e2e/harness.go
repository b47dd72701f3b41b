// Package e2e runs the razd CLI in-process against throwaway projects.
// It isolates the config and tracking directories per test and captures
// what the commands print.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/razd/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands inside one project directory with isolated
// razd state.
type Harness struct {
	t       *testing.T
	homeDir string
	project *Fixture
}

// NewHarness creates a harness with a fresh home, data directory and
// project directory. Sync-related environment variables are cleared.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	h := &Harness{
		t:       t,
		homeDir: homeDir,
		project: NewFixture(t, t.TempDir()),
	}

	t.Setenv("RAZD_HOME", filepath.Join(homeDir, ".razd"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(homeDir, "data"))
	t.Setenv("LOCALAPPDATA", filepath.Join(homeDir, "data"))
	for _, key := range []string{"RAZD_NO_SYNC", "RAZD_AUTO_YES", "RAZD_SYNC_AUTO_BACKUP", "RAZD_DATA_DIR", "RAZD_OUTPUT_COLOR", "RAZD_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return h
}

// SetEnv sets an environment variable for the rest of the test.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// Project returns the fixture for the project directory commands run in.
func (h *Harness) Project() *Fixture {
	return h.project
}

// Run executes razd with args in the project directory.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()
	return h.run("", args)
}

// RunWithStdin executes razd with stdin fed from input, for commands that
// ask questions.
func (h *Harness) RunWithStdin(input string, args ...string) *Result {
	h.t.Helper()
	return h.run(input, args)
}

func (h *Harness) run(input string, args []string) *Result {
	h.t.Helper()

	args = append([]string{"razd", "--no-color", "--dir", h.project.Path(".")}, args...)

	oldStdin := os.Stdin
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdin pipe: %v", err)
	}
	go func() {
		defer func() {
			_ = stdinW.Close()
		}()
		_, _ = stdinW.WriteString(input)
	}()
	os.Stdin = stdinR

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain stdout while the command runs so large output cannot block
	// on a full pipe.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdin = oldStdin
	os.Stdout = oldStdout
	_ = stdinR.Close()

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
