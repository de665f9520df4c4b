package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Kind
	}{
		{
			name:  "jest dependency in manifest",
			files: map[string]string{"package.json": `{"devDependencies":{"jest":"^29.0.0"}}`},
			want:  Jest,
		},
		{
			name:  "js test file",
			files: map[string]string{"src/app.test.js": ""},
			want:  Jest,
		},
		{
			name:  "ts test file",
			files: map[string]string{"src/app.test.ts": ""},
			want:  Jest,
		},
		{
			name:  "manifest without jest and no test files",
			files: map[string]string{"package.json": `{"dependencies":{"react":"18"}}`},
			want:  Unknown,
		},
		{
			name:  "pytest ini",
			files: map[string]string{"pytest.ini": ""},
			want:  Pytest,
		},
		{
			name:  "pyproject with test file",
			files: map[string]string{"pyproject.toml": "", "test_math.py": ""},
			want:  Pytest,
		},
		{
			name:  "python test suffix pattern",
			files: map[string]string{"tests/math_test.py": ""},
			want:  Pytest,
		},
		{
			name:  "go module manifest",
			files: map[string]string{"go.mod": "module example.com/x\n"},
			want:  GoTest,
		},
		{
			name:  "go test file without go.mod",
			files: map[string]string{"pkg/sum_test.go": "package pkg\n"},
			want:  GoTest,
		},
		{
			name:  "no recognized markers",
			files: map[string]string{"README.md": "hello"},
			want:  Unknown,
		},
		{
			name: "empty directory",
			want: Unknown,
		},
		{
			name: "jest wins over python and go markers",
			files: map[string]string{
				"app.test.js":    "",
				"pyproject.toml": "",
				"test_x.py":      "",
				"go.mod":         "module x\n",
			},
			want: Jest,
		},
		{
			name:  "python wins over go markers",
			files: map[string]string{"setup.cfg": "", "go.mod": "module x\n"},
			want:  Pytest,
		},
		{
			name:  "markers inside node_modules are ignored",
			files: map[string]string{"node_modules/pkg/a.test.js": ""},
			want:  Unknown,
		},
		{
			name:  "markers inside vendor are ignored",
			files: map[string]string{"vendor/dep/dep_test.go": ""},
			want:  Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			assert.Equal(t, tt.want, Detect(dir))
		})
	}
}

func TestDetect_MissingDirectory(t *testing.T) {
	assert.Equal(t, Unknown, Detect(filepath.Join(t.TempDir(), "nope")))
}

func TestDetect_FileInsteadOfDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, Unknown, Detect(path))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"jest", Jest, true},
		{"pytest", Pytest, true},
		{"gotest", GoTest, true},
		{"GoTest", GoTest, true},
		{"vitest", Unknown, false},
		{"", Unknown, false},
		{"unknown", Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
