package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartekus/proctor/internal/detect"
)

// Artifact file names written into the scratch directory.
const (
	jestArtifact   = "jest-results.json"
	pytestArtifact = "pytest-report.html"
	gotestArtifact = "gotest.log"
)

// plan is the fixed command sequence for one framework: an optional
// dependency-install step, the test command, and the artifact the framework
// is expected to leave behind.
type plan struct {
	kind    detect.Kind
	install []string // empty when no dependency manifest is present
	test    []string

	// artifact is where the framework's own report lands. For gotest there
	// is no native report file; logArtifact makes runPlan write the combined
	// log there instead.
	artifact    string
	logArtifact bool
}

// planFor builds the command plan for kind against rootDir. Unknown never
// reaches Dispatch; callers must short-circuit detection failures before
// calling Run.
func planFor(kind detect.Kind, rootDir, scratchDir string) (*plan, error) {
	switch kind {
	case detect.Jest:
		p := &plan{
			kind:     kind,
			artifact: filepath.Join(scratchDir, jestArtifact),
		}
		if fileExists(filepath.Join(rootDir, "package.json")) {
			p.install = []string{"npm", "install"}
		}
		p.test = []string{
			"npx", "jest", "--ci", "--json", "--coverage",
			"--outputFile", p.artifact,
		}
		return p, nil

	case detect.Pytest:
		p := &plan{
			kind:     kind,
			artifact: filepath.Join(scratchDir, pytestArtifact),
		}
		if fileExists(filepath.Join(rootDir, "requirements.txt")) {
			p.install = []string{"pip", "install", "-r", "requirements.txt"}
		}
		p.test = []string{
			"python", "-m", "pytest", "-v",
			"--html=" + p.artifact, "--self-contained-html",
		}
		return p, nil

	case detect.GoTest:
		p := &plan{
			kind:        kind,
			artifact:    filepath.Join(scratchDir, gotestArtifact),
			logArtifact: true,
			test:        []string{"go", "test", "-v", "-json", "./..."},
		}
		if fileExists(filepath.Join(rootDir, "go.mod")) {
			p.install = []string{"go", "mod", "download"}
		}
		return p, nil
	}

	return nil, fmt.Errorf("framework %q cannot be dispatched", kind)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
