package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ReportFileName is the text report written to the scratch directory and
// copied into the output directory when one is configured.
const ReportFileName = "report.txt"

// LastRun is the machine-readable summary of the most recent invocation.
// Matches the scratch directory's last-run.json schema.
type LastRun struct {
	Framework string    `json:"framework"`
	Passed    bool      `json:"passed"`
	ExitCode  int       `json:"exit_code"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists the rendered report and run summary into a scratch
// directory (conventionally .proctor under the target).
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// ReportPath is where WriteReport lands the text report.
func (s *Store) ReportPath() string {
	return filepath.Join(s.baseDir, ReportFileName)
}

// WriteReport saves the rendered report text and returns its path. The
// write is atomic so a concurrent reader never sees a half-written report.
func (s *Store) WriteReport(rendered string) (string, error) {
	path := s.ReportPath()
	if err := atomicWrite(path, []byte(rendered)); err != nil {
		return "", err
	}
	return path, nil
}

// atomicWrite writes content to path via a temp file and rename.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "report-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// WriteLastRun saves the run summary.
func (s *Store) WriteLastRun(last LastRun) (err error) {
	path := filepath.Join(s.baseDir, "last-run.json")
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(last)
}

// ReadLastRun loads the previous run summary. A missing file is a clean
// state, not an error.
func (s *Store) ReadLastRun() (*LastRun, error) {
	f, err := os.Open(filepath.Join(s.baseDir, "last-run.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening last run file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var last LastRun
	if err := json.NewDecoder(f).Decode(&last); err != nil {
		return nil, fmt.Errorf("decoding last run: %w", err)
	}
	return &last, nil
}

// Reset clears the scratch directory.
func (s *Store) Reset() error {
	return os.RemoveAll(s.baseDir)
}

// CopyInto copies each named file into outputDir, keeping base names. Empty
// paths are skipped. The output directory is expected to exist already; one
// error is returned per file that could not be copied, so callers can warn
// without aborting.
func CopyInto(outputDir string, paths ...string) []error {
	var errs []error
	for _, src := range paths {
		if src == "" {
			continue
		}
		if err := copyFile(src, filepath.Join(outputDir, filepath.Base(src))); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
