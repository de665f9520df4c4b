// SPDX-License-Identifier: AGPL-3.0-or-later
package detect

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies the test framework detected in a project directory.
type Kind string

const (
	Jest    Kind = "jest"
	Pytest  Kind = "pytest"
	GoTest  Kind = "gotest"
	Unknown Kind = "unknown"
)

// Supported lists the frameworks proctor can run, in detection priority order.
// The JS-before-Python-before-Go ordering carries no semantic weight; it is
// fixed so that mixed-marker directories resolve deterministically.
var Supported = []Kind{Jest, Pytest, GoTest}

// ParseKind maps a CLI identifier to a Kind. The second return is false for
// names that are not a supported framework.
func ParseKind(name string) (Kind, bool) {
	switch Kind(strings.ToLower(name)) {
	case Jest:
		return Jest, true
	case Pytest:
		return Pytest, true
	case GoTest:
		return GoTest, true
	}
	return Unknown, false
}

// excludeDirs are dependency and VCS directories never scanned for test
// files. Matching is by path segment: "vendor" excludes "vendor/x" and
// "pkg/vendor/x" but not "vendored/x".
var excludeDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	".proctor":     true,
}

// Per-framework file name patterns, matched against base names.
var (
	jestPatterns   = []string{"*.test.js", "*.test.ts"}
	pytestPatterns = []string{"test_*.py", "*_test.py"}
	gotestPatterns = []string{"*_test.go"}
)

// pytestConfigs are configuration files whose presence at the root implies a
// Python test setup.
var pytestConfigs = []string{"pytest.ini", "setup.cfg", "pyproject.toml"}

// Detect inspects rootDir and returns the framework that applies, checking
// markers in fixed priority order: Jest, then Pytest, then GoTest. A missing
// or unreadable directory is a normal no-match, never an error.
func Detect(rootDir string) Kind {
	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		return Unknown
	}

	m := scanMarkers(rootDir)
	switch {
	case m.jest:
		return Jest
	case m.pytest:
		return Pytest
	case m.gotest:
		return GoTest
	}
	return Unknown
}

type markers struct {
	jest   bool
	pytest bool
	gotest bool
}

func scanMarkers(rootDir string) markers {
	var m markers

	m.jest = hasJestManifest(rootDir)
	for _, name := range pytestConfigs {
		if fileExists(filepath.Join(rootDir, name)) {
			m.pytest = true
			break
		}
	}
	m.gotest = fileExists(filepath.Join(rootDir, "go.mod"))

	if m.jest {
		// Highest priority already matched; no walk needed.
		return m
	}

	// Walk errors are swallowed: an unreadable subtree simply contributes
	// no markers.
	_ = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != rootDir && excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		switch {
		case matchesAny(name, jestPatterns):
			m.jest = true
			return filepath.SkipAll
		case matchesAny(name, pytestPatterns):
			m.pytest = true
		case matchesAny(name, gotestPatterns):
			m.gotest = true
		}
		return nil
	})

	return m
}

// hasJestManifest reports whether rootDir has a package.json that declares a
// jest dependency. The check is a textual substring match on the dependency
// name, not a JSON parse.
func hasJestManifest(rootDir string) bool {
	data, err := os.ReadFile(filepath.Join(rootDir, "package.json"))
	if err != nil {
		return false
	}
	return strings.Contains(string(data), `"jest"`)
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
