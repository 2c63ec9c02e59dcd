package engine

import "sync"

// defaultUndoDepth bounds how many superseded tables the store retains.
const defaultUndoDepth = 12

// Store owns the current working table and its provenance. Replace is the
// engine's only stateful entry point: it validates the incoming table and
// swaps it in atomically, so a failed replacement leaves the previous
// table untouched. Superseded tables go onto a bounded undo stack.
//
// Reads hand out the immutable current table; callers may use it for any
// number of concurrent read-only operations.
type Store struct {
	mu      sync.RWMutex
	current *Table
	sources []string
	undo    []*Table
	depth   int
}

// NewStore returns an empty store retaining up to undoDepth superseded
// tables; undoDepth <= 0 selects the default.
func NewStore(undoDepth int) *Store {
	if undoDepth <= 0 {
		undoDepth = defaultUndoDepth
	}
	return &Store{depth: undoDepth}
}

// Current returns the working table, or nil when nothing is loaded.
func (s *Store) Current() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in a new working table. The incoming table is validated
// first; on SchemaError the previous table is retained unchanged. The
// superseded table is pushed onto the undo stack. Provenance is not
// touched; use SetSources when the table's origin changes.
func (s *Store) Replace(t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.undo = append(s.undo, s.current)
		if len(s.undo) > s.depth {
			s.undo = s.undo[len(s.undo)-s.depth:]
		}
	}
	s.current = t
	return nil
}

// Undo restores the most recently superseded table and returns it.
// Returns ErrNoUndo when the stack is empty.
func (s *Store) Undo() (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return nil, ErrNoUndo
	}
	t := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.current = t
	return t, nil
}

// SetSources records the ordered file paths the working table came from.
func (s *Store) SetSources(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append([]string(nil), paths...)
}

// SourcePaths returns a copy of the ordered source paths.
func (s *Store) SourcePaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sources...)
}

// Clear drops the working table, its provenance and the undo history.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.sources = nil
	s.undo = nil
}
