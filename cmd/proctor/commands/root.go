// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Proctor - Proctor is a framework-detecting test-execution wrapper.
It inspects a project directory, determines which test framework applies
(jest, pytest, or go test), runs that framework's toolchain, and emits a
unified report plus optional machine-readable artifacts.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/proctor/cmd/proctor/internal/clierr"
	"github.com/bartekus/proctor/internal/config"
	"github.com/bartekus/proctor/internal/detect"
	"github.com/bartekus/proctor/internal/report"
	"github.com/bartekus/proctor/internal/runner"
)

// DefaultTarget is the conventional container mount point used when no
// target directory argument is given.
const DefaultTarget = "/workspace"

// ScratchDirName is the scratch directory created under the target, holding
// the text report, last-run.json, and framework artifacts.
const ScratchDirName = ".proctor"

// dispatchRun is the seam between the CLI and the subprocess layer; tests
// replace it to simulate passing and failing test commands.
var dispatchRun = func(ctx context.Context, d *runner.Dispatch, kind detect.Kind, rootDir string) (*runner.ExecutionResult, error) {
	return d.Run(ctx, kind, rootDir)
}

// NewRootCmd constructs the Proctor root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("PROCTOR_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	var (
		detectOnly    bool
		frameworkName string
		outputDir     string
		timeout       time.Duration
		installFatal  bool
	)

	cmd := &cobra.Command{
		Use:   "proctor [targetDir]",
		Short: "Proctor - framework-detecting test runner",
		Long: `Proctor detects which test framework a project uses (jest, pytest, or
go test), runs it, and writes a unified report. The target directory
defaults to ` + DefaultTarget + `.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := DefaultTarget
			if len(args) > 0 {
				target = args[0]
			}
			opts := runOptions{
				detectOnly:    detectOnly,
				frameworkName: frameworkName,
				outputDir:     outputDir,
				timeout:       timeout,
				installFatal:  installFatal,
				flagChanged:   cmd.Flags().Changed,
			}
			return runProctor(cmd, target, opts)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	cmd.Flags().BoolVar(&detectOnly, "detect", false, "detect the framework and exit without running tests")
	cmd.Flags().StringVar(&frameworkName, "framework", "", "force the framework (jest, pytest, gotest), bypassing detection")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory to copy the report and framework artifact into")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "subprocess timeout (overrides config)")
	cmd.Flags().BoolVar(&installFatal, "install-fatal", false, "abort when dependency installation fails")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of Proctor",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Proctor version %s\n", version)
		},
	})

	return cmd
}

type runOptions struct {
	detectOnly    bool
	frameworkName string
	outputDir     string
	timeout       time.Duration
	installFatal  bool
	flagChanged   func(string) bool
}

func runProctor(cmd *cobra.Command, target string, opts runOptions) error {
	target = filepath.Clean(target)
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return clierr.Newf(1, "target directory %s does not exist", target)
	}

	if opts.detectOnly {
		fmt.Fprintln(cmd.OutOrStdout(), detect.Detect(target))
		return nil
	}

	cfg, err := config.Load(filepath.Join(target, config.FileName))
	if err != nil {
		return clierr.Wrap(1, "loading config", err)
	}
	if opts.flagChanged("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if opts.flagChanged("install-fatal") {
		cfg.InstallFatal = opts.installFatal
	}
	effectiveTimeout := cfg.Timeout()
	if opts.flagChanged("timeout") {
		effectiveTimeout = opts.timeout
	}

	kind := detect.Unknown
	if opts.frameworkName != "" {
		var ok bool
		if kind, ok = detect.ParseKind(opts.frameworkName); !ok {
			return clierr.Newf(1, "unknown framework %q (supported: %s)", opts.frameworkName, supportedList())
		}
	} else {
		kind = detect.Detect(target)
	}
	if kind == detect.Unknown {
		return clierr.Newf(1, "no supported test framework detected in %s (supported: %s)", target, supportedList())
	}

	scratchDir := filepath.Join(target, ScratchDirName)
	verbose, _ := cmd.Flags().GetBool("verbose")
	disp := &runner.Dispatch{
		ScratchDir:   scratchDir,
		Timeout:      effectiveTimeout,
		MaxOutput:    cfg.MaxOutputBytes(),
		InstallFatal: cfg.InstallFatal,
		Verbose:      verbose,
		Log:          cmd.ErrOrStderr(),
	}

	res, err := dispatchRun(cmd.Context(), disp, kind, target)
	if err != nil {
		return clierr.Wrap(1, "running tests", err)
	}

	rep := report.Generate(res, time.Now())
	rendered := rep.Render()
	fmt.Fprint(cmd.OutOrStdout(), rendered)

	persist(cmd, scratchDir, res, rep, rendered, cfg.OutputDir)

	if !rep.Passed {
		return clierr.Newf(res.ExitCode, "%s tests failed", kind)
	}
	return nil
}

// persist writes the scratch report and summary, then copies artifacts into
// the output directory when one is configured. Every failure here is a
// warning; persistence never changes the run's pass/fail outcome.
func persist(cmd *cobra.Command, scratchDir string, res *runner.ExecutionResult, rep report.Report, rendered, outputDir string) {
	errOut := cmd.ErrOrStderr()
	store := report.NewStore(scratchDir)

	reportPath, err := store.WriteReport(rendered)
	if err != nil {
		fmt.Fprintf(errOut, "WARN: writing report: %v\n", err)
	}
	if err := store.WriteLastRun(report.LastRun{
		Framework: string(rep.Kind),
		Passed:    rep.Passed,
		ExitCode:  res.ExitCode,
		RunID:     res.RunID,
		Timestamp: rep.Timestamp,
	}); err != nil {
		fmt.Fprintf(errOut, "WARN: writing run summary: %v\n", err)
	}

	if outputDir == "" {
		fmt.Fprintln(errOut, "no output directory configured; artifacts not persisted")
		return
	}
	for _, err := range report.CopyInto(outputDir, reportPath, res.Artifact) {
		fmt.Fprintf(errOut, "WARN: copying artifact: %v\n", err)
	}
}

func supportedList() string {
	names := make([]string, 0, len(detect.Supported))
	for _, k := range detect.Supported {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
