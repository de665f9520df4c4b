// Package runner dispatches the detected framework's external toolchain and
// captures its combined output, exit status, and report artifact.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bartekus/proctor/internal/detect"
)

// Execution bounds applied when Dispatch fields are left zero.
const (
	DefaultTimeout   = 30 * time.Minute
	DefaultMaxOutput = 4 << 20 // 4 MiB of combined output
)

// Dispatch runs one framework's command sequence inside a target directory.
// All subprocesses run with a timeout and an output size cap, so a hung or
// chatty test command cannot hang or balloon the wrapper.
type Dispatch struct {
	ScratchDir string // where framework artifacts are written

	Timeout   time.Duration // per-command; DefaultTimeout when zero
	MaxOutput int           // combined-log byte cap; DefaultMaxOutput when zero

	// InstallFatal aborts the run when the dependency-install step fails.
	// Default is to warn and proceed to the test command anyway.
	InstallFatal bool

	Verbose bool
	Log     io.Writer // warnings and progress; os.Stderr when nil
}

// Run executes kind's command plan against rootDir and returns the captured
// result. A nonzero exit from the test command is not an error here; it is
// recorded verbatim in ExitCode for the report layer to interpret.
func (d *Dispatch) Run(ctx context.Context, kind detect.Kind, rootDir string) (*ExecutionResult, error) {
	p, err := planFor(kind, rootDir, d.ScratchDir)
	if err != nil {
		return nil, err
	}
	return d.runPlan(ctx, p, rootDir)
}

func (d *Dispatch) runPlan(ctx context.Context, p *plan, rootDir string) (*ExecutionResult, error) {
	var combined strings.Builder

	if len(p.install) > 0 {
		code, out, _, err := d.execute(ctx, p.install, rootDir)
		combined.WriteString(out)
		switch {
		case err != nil && d.InstallFatal:
			return nil, fmt.Errorf("installing dependencies: %w", err)
		case err != nil:
			fmt.Fprintf(d.log(), "WARN: dependency install did not run (%v); continuing\n", err)
		case code != 0 && d.InstallFatal:
			return nil, fmt.Errorf("dependency install failed (exit %d)", code)
		case code != 0:
			fmt.Fprintf(d.log(), "WARN: dependency install exited %d; continuing\n", code)
		}
	}

	start := time.Now()
	code, out, truncated, err := d.execute(ctx, p.test, rootDir)
	if err != nil {
		return nil, fmt.Errorf("running %s tests: %w", p.kind, err)
	}
	combined.WriteString(out)

	res := &ExecutionResult{
		Kind:        p.kind,
		RunID:       uuid.New().String(),
		ExitCode:    code,
		CombinedLog: combined.String(),
		Truncated:   truncated,
		Duration:    time.Since(start),
	}

	if p.logArtifact {
		if err := os.MkdirAll(d.ScratchDir, 0o755); err == nil {
			err = os.WriteFile(p.artifact, []byte(res.CombinedLog), 0o644)
		}
		if err != nil {
			fmt.Fprintf(d.log(), "WARN: writing log artifact: %v\n", err)
		} else {
			res.Artifact = p.artifact
		}
	} else if fileExists(p.artifact) {
		// Frameworks only leave their report behind when they got far
		// enough; a missing artifact is not an error.
		res.Artifact = p.artifact
	}

	return res, nil
}

// execute runs a single command, blocking until it exits, the timeout fires,
// or ctx is cancelled. The returned exit code is only meaningful when err is
// nil; a command that cannot be started at all is an error.
func (d *Dispatch) execute(ctx context.Context, argv []string, dir string) (exitCode int, out string, truncated bool, err error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxOutput := d.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if d.Verbose {
		fmt.Fprintf(d.log(), "$ %s\n", strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var buf bytes.Buffer
	lw := &limitWriter{buf: &buf, limit: maxOutput}
	cmd.Stdout = lw
	cmd.Stderr = lw

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return 0, buf.String(), false, fmt.Errorf("%s timed out after %s (process killed)", argv[0], timeout)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// Binary not found or not startable.
			return 0, buf.String(), false, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return exitCode, buf.String(), buf.Len() >= maxOutput, nil
}

func (d *Dispatch) log() io.Writer {
	if d.Log != nil {
		return d.Log
	}
	return os.Stderr
}

// limitWriter writes up to limit bytes to buf and silently discards the
// rest, reporting full consumption to avoid short-write errors.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
