// Package sheet reads and writes tables as spreadsheet files.
//
// The Codec is the engine's file collaborator: it decodes CSV, TSV and
// Excel files into tables and encodes tables back out as CSV, Excel,
// PDF or Parquet. All filesystem access goes through an injected
// afero.Fs, so tests run against an in-memory filesystem. Every write
// lands via a temp-then-rename so a failed encode never leaves a
// partial file behind.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/tabwork/tabwork/internal/engine"
)

// Codec converts between files and tables. The zero value is not
// usable; build one with NewCodec.
type Codec struct {
	fs        afero.Fs
	sheetName string
	backups   bool
	backupDir string

	// now stamps backup file names; tests pin it.
	now func() time.Time
}

// Option adjusts a Codec.
type Option func(*Codec)

// WithBackups makes Save copy an existing destination into dir before
// overwriting it. An empty dir keeps backups next to the original.
func WithBackups(dir string) Option {
	return func(c *Codec) {
		c.backups = true
		c.backupDir = dir
	}
}

// WithSheetName sets the sheet name used for single-sheet Excel writes.
func WithSheetName(name string) Option {
	return func(c *Codec) {
		if name != "" {
			c.sheetName = name
		}
	}
}

// NewCodec builds a codec over the given filesystem.
func NewCodec(fs afero.Fs, opts ...Option) *Codec {
	c := &Codec{
		fs:        fs,
		sheetName: "Sheet1",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read decodes one file into a table, picking the decoder from the
// path's extension.
func (c *Codec) Read(path string) (*engine.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return c.readCSV(path, ',')
	case ".tsv", ".txt":
		return c.readCSV(path, '\t')
	case ".xlsx", ".xlsm":
		return c.readExcel(path)
	default:
		return nil, &engine.ReadError{Path: path, Err: fmt.Errorf("unsupported file type %q", ext)}
	}
}

// Save encodes the table to one file, picking the encoder from the
// path's extension. An existing destination is backed up first when
// backups are enabled; the backup's path (or "") is returned.
func (c *Codec) Save(t *engine.Table, path string) (string, error) {
	var write func() error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		write = func() error { return c.writeCSV(t, path, ',') }
	case ".tsv", ".txt":
		write = func() error { return c.writeCSV(t, path, '\t') }
	case ".xlsx", ".xlsm":
		write = func() error { return c.writeExcel(t, path) }
	case ".pdf":
		write = func() error { return c.writePDF(t, path) }
	case ".parquet":
		write = func() error { return c.writeParquet(t, path) }
	default:
		return "", &engine.WriteError{Path: path, Err: fmt.Errorf("unsupported file type %q", ext)}
	}

	backup, err := c.backupExisting(path)
	if err != nil {
		return "", err
	}
	if err := write(); err != nil {
		return "", err
	}
	return backup, nil
}

// backupExisting copies the current content of path aside and returns
// the copy's path, or "" when there is nothing to back up.
func (c *Codec) backupExisting(path string) (string, error) {
	if !c.backups {
		return "", nil
	}
	info, err := c.fs.Stat(path)
	if err != nil || info.IsDir() {
		return "", nil
	}

	dir := c.backupDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	target := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, c.now().Format("20060102_150405"), ext))

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return "", &engine.ReadError{Path: path, Err: err}
	}
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return "", &engine.WriteError{Path: target, Err: err}
	}
	if err := afero.WriteFile(c.fs, target, data, 0o644); err != nil {
		return "", &engine.WriteError{Path: target, Err: err}
	}
	return target, nil
}

// atomicWrite encodes into a sibling temp file and renames it over path
// once the encode succeeds. The temp file is removed on failure.
func (c *Codec) atomicWrite(path string, encode func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return &engine.WriteError{Path: path, Err: err}
		}
	}

	tmp := path + ".tmp"
	f, err := c.fs.Create(tmp)
	if err != nil {
		return &engine.WriteError{Path: path, Err: err}
	}
	if err := encode(f); err != nil {
		f.Close()
		c.fs.Remove(tmp)
		return &engine.WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		c.fs.Remove(tmp)
		return &engine.WriteError{Path: path, Err: err}
	}
	if err := c.fs.Rename(tmp, path); err != nil {
		c.fs.Remove(tmp)
		return &engine.WriteError{Path: path, Err: err}
	}
	return nil
}

// header returns the first record of a decoded file, guarding against
// an empty file.
func header(path string, records [][]string) ([]string, [][]string, error) {
	if len(records) == 0 {
		return nil, nil, &engine.ReadError{Path: path, Err: errors.New("file has no header row")}
	}
	return records[0], records[1:], nil
}
