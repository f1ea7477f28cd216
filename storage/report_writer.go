package storage

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"farcaster-analyzer/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONWriter saves the aggregate report as an indented JSON document.
type JSONWriter struct {
	path string
}

func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

func (w *JSONWriter) WriteReport(r *models.AggregateReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("json: encode report: %w", err)
	}
	return writeFile(w.path, append(data, '\n'), "json")
}

// TextWriter saves an already rendered report.
type TextWriter struct {
	path   string
	render func(*models.AggregateReport) string
}

// NewTextWriter takes the render function so the same text that goes to
// stdout lands in the file.
func NewTextWriter(path string, render func(*models.AggregateReport) string) *TextWriter {
	return &TextWriter{path: path, render: render}
}

func (w *TextWriter) WriteReport(r *models.AggregateReport) error {
	return writeFile(w.path, []byte(w.render(r)), "text")
}

func writeFile(path string, data []byte, kind string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%s: create output dir: %w", kind, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%s: write %q: %w", kind, path, err)
	}
	return nil
}
