// Package report assembles, renders and persists run reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dealhound/dealhound/models"
)

// Writer defines the interface for report output.
type Writer interface {
	Write(report *models.RunReport) error
	Close() error
	Validate() error
}

// JSONWriter writes one pretty-printed JSON document per report.
type JSONWriter struct {
	file *os.File
	mu   sync.Mutex
}

// NewJSONWriter creates the output file, making parent directories as needed.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	return &JSONWriter{file: f}, nil
}

// Write encodes the report, indented, with currency signs left unescaped.
func (jw *JSONWriter) Write(report *models.RunReport) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	encoder := json.NewEncoder(jw.file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.file.Close()
}

// Validate ensures the report file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat report file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("report file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
