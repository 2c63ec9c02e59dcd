package sheet

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/tabwork/tabwork/internal/engine"
)

// DefaultExtensions are the file types a folder scan picks up.
var DefaultExtensions = []string{".csv", ".tsv", ".txt", ".xlsx", ".xlsm"}

// Scanner lists the loadable files under a folder.
type Scanner struct {
	fs   afero.Fs
	exts map[string]bool
}

// NewScanner builds a scanner matching the given extensions, or
// DefaultExtensions when none are given.
func NewScanner(fs afero.Fs, extensions []string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &Scanner{fs: fs, exts: exts}
}

// List returns the matching files directly under dir in lexicographic
// order. Subfolders, hidden files and Office ~$ lock files are skipped.
func (s *Scanner) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, &engine.ReadError{Path: dir, Err: err}
	}

	var paths []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !s.exts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
