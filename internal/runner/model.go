package runner

import (
	"time"

	"github.com/bartekus/proctor/internal/detect"
)

// ExecutionResult holds the outcome of one framework invocation. It is
// created once by Dispatch and read-only afterwards.
type ExecutionResult struct {
	Kind        detect.Kind
	RunID       string        // unique identifier for this run
	ExitCode    int           // test command exit code, verbatim
	CombinedLog string        // interleaved stdout/stderr (may be truncated)
	Artifact    string        // path to the framework's own report file, "" if none was produced
	Truncated   bool          // true if the combined log hit the size cap
	Duration    time.Duration // wall time of the test command
}

// Passed reports whether the test command exited cleanly.
func (r *ExecutionResult) Passed() bool {
	return r.ExitCode == 0
}
