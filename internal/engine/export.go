package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format names an export format. The value doubles as the output file
// extension.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "xlsx"
	FormatPDF     Format = "pdf"
	FormatParquet Format = "parquet"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, true
	case "xlsx", "excel":
		return FormatExcel, true
	case "pdf":
		return FormatPDF, true
	case "parquet":
		return FormatParquet, true
	}
	return "", false
}

// FormatWriter serializes one table to one file. Implementations must
// not leave a partial file behind on failure.
type FormatWriter interface {
	Format() Format
	Write(t *Table, path string) error
}

// Exporter dispatches export jobs to the registered format writers. A
// format with no registered writer is unavailable: requesting it yields
// UnavailableFormatError without disturbing the other formats. That is
// the capability gate for optional collaborators such as PDF.
type Exporter struct {
	mu      sync.RWMutex
	writers map[Format]FormatWriter
}

// NewExporter returns an exporter with the given writers registered.
func NewExporter(writers ...FormatWriter) *Exporter {
	e := &Exporter{writers: make(map[Format]FormatWriter)}
	for _, w := range writers {
		e.Register(w)
	}
	return e
}

// Register adds a format writer.
// Panics if a writer for the same format is already registered.
func (e *Exporter) Register(w FormatWriter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.writers[w.Format()]; exists {
		panic(fmt.Sprintf("format writer already registered: %s", w.Format()))
	}
	e.writers[w.Format()] = w
}

// Writer returns the registered writer for a format.
// Returns false if the format is unavailable.
func (e *Exporter) Writer(f Format) (FormatWriter, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.writers[f]
	return w, ok
}

// Available returns the registered formats, sorted for consistent
// ordering.
func (e *Exporter) Available() []Format {
	e.mu.RLock()
	defer e.mu.RUnlock()

	formats := make([]Format, 0, len(e.writers))
	for f := range e.writers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// ExportOutcome is one format's independent result: the written path on
// success, or the failure cause.
type ExportOutcome struct {
	Format Format `json:"format"`
	Path   string `json:"path,omitempty"`
	Err    error  `json:"-"`
}

// Export writes the table under dir as base.<ext> in every requested
// format. Attempts are independent: each produces its own outcome and a
// failure never cancels a sibling. Duplicate formats collapse to one
// attempt; outcomes come back in request order.
func (e *Exporter) Export(t *Table, dir, base string, formats []Format) []ExportOutcome {
	requested := make([]Format, 0, len(formats))
	seen := make(map[Format]bool, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			requested = append(requested, f)
		}
	}

	outcomes := make([]ExportOutcome, len(requested))
	var wg sync.WaitGroup
	for i, f := range requested {
		outcomes[i].Format = f
		w, ok := e.Writer(f)
		if !ok {
			outcomes[i].Err = &UnavailableFormatError{Format: f}
			continue
		}
		path := filepath.Join(dir, base+"."+string(f))
		wg.Add(1)
		go func(i int, w FormatWriter, path string) {
			defer wg.Done()
			if err := w.Write(t, path); err != nil {
				outcomes[i].Err = err
				return
			}
			outcomes[i].Path = path
		}(i, w, path)
	}
	wg.Wait()
	return outcomes
}
