// Package scaffold renders the files workon generates: a new work directory's
// environment definitions, script launchers and the prepare-commit-msg hook.
//
// Templates use [[ ]] delimiters because environment.devenv.yml is itself a
// Jinja template for conda devenv and contains {{ root }}.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/mrz1836/workon/internal/errors"
)

//go:embed templates
var templateFS embed.FS

const (
	leftDelim  = "[["
	rightDelim = "]]"
)

// registry holds parsed templates.
type registry struct {
	mu        sync.RWMutex
	templates map[TemplateID]*template.Template
	sources   map[TemplateID]string
}

//nolint:gochecknoglobals // embedded templates are loaded once
var globalRegistry = &registry{
	templates: make(map[TemplateID]*template.Template),
	sources:   make(map[TemplateID]string),
}

//nolint:gochecknoinits // preload embedded templates
func init() {
	if err := globalRegistry.loadAll(); err != nil {
		panic(fmt.Sprintf("failed to load embedded templates: %v", err))
	}
}

func (r *registry) loadAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := templateFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		id := pathToID(path)
		tmpl, err := template.New(string(id)).
			Delims(leftDelim, rightDelim).
			Option("missingkey=error").
			Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}

		r.templates[id] = tmpl
		r.sources[id] = string(content)
		return nil
	})
}

// pathToID converts templates/git/prepare-commit-msg.tmpl to git/prepare-commit-msg.
func pathToID(path string) TemplateID {
	id := strings.TrimPrefix(path, "templates/")
	return TemplateID(strings.TrimSuffix(id, ".tmpl"))
}

func (r *registry) get(id TemplateID) (*template.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

// Render executes a template with data.
func Render(id TemplateID, data any) (string, error) {
	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}
	return buf.String(), nil
}

// Source returns the raw template text.
func Source(id TemplateID) (string, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	src, ok := globalRegistry.sources[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrTemplateNotFound, id)
	}
	return src, nil
}

// List returns all template IDs, sorted.
func List() []TemplateID {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	ids := make([]TemplateID, 0, len(globalRegistry.templates))
	for id := range globalRegistry.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
