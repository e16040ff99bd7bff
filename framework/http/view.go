package http

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
)

// ── View / Templates ─────────────────────────────────────────────────────────

// ViewEngine renders html/template files from a directory.
type ViewEngine struct {
	dir string
	ext string
}

// NewViewEngine creates a ViewEngine.
// dir is the templates directory (e.g. "./views"), ext is the file extension (e.g. ".html").
func NewViewEngine(dir, ext string) *ViewEngine {
	return &ViewEngine{dir: dir, ext: ext}
}

// Render renders the named template with data.
//
//	html, err := engine.Render("home", map[string]any{"title": "Home"})
func (ve *ViewEngine) Render(name string, data any) (string, error) {
	tmpl, err := template.ParseFiles(ve.path(name))
	if err != nil {
		return "", fmt.Errorf("view: template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("view: rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderWithLayout renders name inside a base layout.
func (ve *ViewEngine) RenderWithLayout(layout, name string, data any) (string, error) {
	layoutPath := ve.path(layout)
	tmpl, err := template.ParseFiles(layoutPath, ve.path(name))
	if err != nil {
		return "", fmt.Errorf("view: template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, filepath.Base(layoutPath), data); err != nil {
		return "", fmt.Errorf("view: rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

func (ve *ViewEngine) path(name string) string {
	return filepath.Join(ve.dir, name+ve.ext)
}
