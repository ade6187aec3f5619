package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/plan"
)

// isTemplateFile reports whether name looks like a template definition.
func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return (ext == ".yaml" || ext == ".yml") && !strings.HasPrefix(filepath.Base(name), ".")
}

// LoadFile reads a single YAML template. A template without a name takes
// the file's base name.
func LoadFile(path string) (plan.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plan.Template{}, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var t plan.Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return plan.Template{}, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if strings.TrimSpace(t.Name) == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := t.Validate(); err != nil {
		return plan.Template{}, errors.Wrapf(err, "template %s", path)
	}
	return t, nil
}

// LoadDir reads every *.yaml / *.yml file directly inside dir, sorted by
// file name. The first invalid file aborts the load. Two files declaring
// the same template name are an error.
func LoadDir(dir string) ([]plan.Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	tmpls := make([]plan.Template, 0, len(files))
	origin := make(map[string]string, len(files))
	for _, name := range files {
		t, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, dup := origin[key(t.Name)]; dup {
			return nil, errors.NewValidationError("duplicate template name").
				WithField("name").
				WithValue(fmt.Sprintf("%s (in %s and %s)", t.Name, prev, name))
		}
		origin[key(t.Name)] = name
		tmpls = append(tmpls, t)
	}
	return tmpls, nil
}
