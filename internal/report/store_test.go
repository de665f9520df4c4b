package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LastRunRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	in := LastRun{
		Framework: "gotest",
		Passed:    false,
		ExitCode:  2,
		RunID:     "run-42",
		Timestamp: fixedTime,
	}
	require.NoError(t, store.WriteLastRun(in))

	out, err := store.ReadLastRun()
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "gotest", out.Framework)
	assert.False(t, out.Passed)
	assert.Equal(t, 2, out.ExitCode)
	assert.Equal(t, "run-42", out.RunID)
	assert.True(t, out.Timestamp.Equal(fixedTime))
}

func TestStore_ReadLastRunCleanState(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-written"))

	out, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStore_WriteReport(t *testing.T) {
	// Base dir does not exist yet; WriteReport must create it.
	base := filepath.Join(t.TempDir(), "scratch")
	store := NewStore(base)

	path, err := store.WriteReport("rendered report\n")
	require.NoError(t, err)
	assert.Equal(t, store.ReportPath(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rendered report\n", string(data))
}

func TestStore_Reset(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.WriteReport("x")
	require.NoError(t, err)

	require.NoError(t, store.Reset())

	_, err = os.Stat(store.ReportPath())
	assert.True(t, os.IsNotExist(err))
}

func TestCopyInto(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	a := filepath.Join(src, "report.txt")
	b := filepath.Join(src, "jest-results.json")
	require.NoError(t, os.WriteFile(a, []byte("report"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("{}"), 0o644))

	errs := CopyInto(out, a, "", b)
	assert.Empty(t, errs)

	data, err := os.ReadFile(filepath.Join(out, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "report", string(data))

	_, err = os.Stat(filepath.Join(out, "jest-results.json"))
	assert.NoError(t, err)
}

func TestCopyInto_MissingOutputDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(src, []byte("report"), 0o644))

	errs := CopyInto(filepath.Join(t.TempDir(), "does-not-exist"), src)
	assert.Len(t, errs, 1)
}

func TestCopyInto_MissingSource(t *testing.T) {
	errs := CopyInto(t.TempDir(), filepath.Join(t.TempDir(), "ghost.txt"))
	assert.Len(t, errs, 1)
}
