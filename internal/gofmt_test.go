package internal

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGofmtCompliance verifies that all Go source files in the project
// are formatted. If it fails, run: gofmt -w ./internal/ ./cmd/
func TestGofmtCompliance(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	projectRoot := wd
	if filepath.Base(wd) == "internal" {
		projectRoot = filepath.Dir(wd)
	}

	var unformatted []string
	for _, dir := range []string{"internal", "cmd"} {
		err := filepath.WalkDir(filepath.Join(projectRoot, dir), func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "vendor" || strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			formatted, err := format.Source(content)
			if err != nil {
				// Unparseable files are reported by the compiler instead.
				return nil
			}
			if !bytes.Equal(content, formatted) {
				rel, _ := filepath.Rel(projectRoot, path)
				unformatted = append(unformatted, rel)
			}
			return nil
		})
		require.NoError(t, err)
	}

	if len(unformatted) > 0 {
		t.Errorf("files not gofmt-formatted:\n  %s\nRun 'gofmt -w ./internal/ ./cmd/' to fix.",
			strings.Join(unformatted, "\n  "))
	}
}
