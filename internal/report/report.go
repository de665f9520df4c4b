// Package report renders the unified text report and persists run artifacts.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/bartekus/proctor/internal/detect"
	"github.com/bartekus/proctor/internal/runner"
)

// Report is the unified result of one wrapper invocation: a fixed header
// derived from the execution outcome, with the captured log appended
// verbatim. No mutation after creation.
type Report struct {
	Kind      detect.Kind
	Passed    bool
	Timestamp time.Time // always UTC
	Body      string    // combined log, verbatim
	Truncated bool
}

// Generate derives a Report from an execution result. Passed follows from
// the test command's exit code alone.
func Generate(res *runner.ExecutionResult, now time.Time) Report {
	return Report{
		Kind:      res.Kind,
		Passed:    res.ExitCode == 0,
		Timestamp: now.UTC(),
		Body:      res.CombinedLog,
		Truncated: res.Truncated,
	}
}

const (
	banner    = "========================================"
	separator = "----------------------------------------"
)

// Render produces the fixed-format text report.
func (r Report) Render() string {
	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}

	var b strings.Builder
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, " PROCTOR TEST REPORT")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Framework: %s\n", r.Kind)
	fmt.Fprintf(&b, "Status:    %s\n", status)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintln(&b, separator)
	b.WriteString(r.Body)
	if !strings.HasSuffix(r.Body, "\n") {
		b.WriteByte('\n')
	}
	if r.Truncated {
		fmt.Fprintln(&b, "... (output truncated)")
	}
	return b.String()
}
