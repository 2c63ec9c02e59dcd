package engine

// The Service is the orchestration layer over the pure table operations:
// it owns the working-table store, the configured coercer and the file
// collaborators, stamps every operation with an ID for log correlation,
// and turns operation results into summaries the caller can print.
// The pure operations stay free of I/O; everything that touches a file
// goes through the injected collaborators.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tabwork/tabwork/internal/logging"
)

// Reader produces a table from a file path. Failures surface as
// ReadError.
type Reader interface {
	Read(path string) (*Table, error)
}

// Lister enumerates the supported source files under a folder in a
// stable order.
type Lister interface {
	List(dir string) ([]string, error)
}

// Saver writes a table to a single file, picking the format from the
// path's extension. When the destination already exists the previous
// content is backed up first; the backup's path (or "") is returned.
type Saver interface {
	Save(t *Table, path string) (backupPath string, err error)
}

// Sheet is one named sheet of a workbook.
type Sheet struct {
	Name  string
	Table *Table
}

// WorkbookWriter writes a multi-sheet workbook.
type WorkbookWriter interface {
	WriteWorkbook(path string, sheets []Sheet) error
}

// Deps wires a Service's collaborators. Store and Coercer default when
// nil; ReadConcurrency and PreviewRows default when zero.
type Deps struct {
	Store    *Store
	Coercer  *Coercer
	Reader   Reader
	Lister   Lister
	Saver    Saver
	Workbook WorkbookWriter
	Exporter *Exporter

	ReadConcurrency int
	PreviewRows     int
}

// Service runs engine operations against the working table.
type Service struct {
	store    *Store
	co       *Coercer
	reader   Reader
	lister   Lister
	saver    Saver
	workbook WorkbookWriter
	exporter *Exporter

	readLimit   int
	previewRows int
}

// NewService builds a service from its dependencies.
func NewService(d Deps) *Service {
	s := &Service{
		store:       d.Store,
		co:          d.Coercer,
		reader:      d.Reader,
		lister:      d.Lister,
		saver:       d.Saver,
		workbook:    d.Workbook,
		exporter:    d.Exporter,
		readLimit:   d.ReadConcurrency,
		previewRows: d.PreviewRows,
	}
	if s.store == nil {
		s.store = NewStore(0)
	}
	if s.co == nil {
		s.co = NewCoercer()
	}
	if s.exporter == nil {
		s.exporter = NewExporter()
	}
	if s.readLimit <= 0 {
		s.readLimit = 4
	}
	if s.previewRows <= 0 {
		s.previewRows = 200
	}
	return s
}

// Store exposes the working-table store.
func (s *Service) Store() *Store { return s.store }

// Coercer exposes the configured coercer.
func (s *Service) Coercer() *Coercer { return s.co }

// begin stamps the context with a fresh operation ID and returns a
// logger carrying it.
func (s *Service) begin(ctx context.Context, op string) (context.Context, *slog.Logger) {
	ctx = logging.WithOperationID(ctx, uuid.New().String())
	return ctx, logging.WithFields(ctx, "op", op)
}

// working returns the current table or a SchemaError when nothing is
// loaded yet.
func (s *Service) working() (*Table, error) {
	t := s.store.Current()
	if t == nil {
		return nil, &SchemaError{Reason: "no working table loaded"}
	}
	return t, nil
}

// LoadSummary reports a completed file load.
type LoadSummary struct {
	Path      string `json:"path"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// LoadFile reads one file and makes it the working table.
func (s *Service) LoadFile(ctx context.Context, path string) (*LoadSummary, error) {
	_, log := s.begin(ctx, "load")
	start := time.Now()

	t, err := s.reader.Read(path)
	if err != nil {
		log.Error("load failed", "path", path, "error", err)
		return nil, err
	}
	if err := s.store.Replace(t); err != nil {
		return nil, err
	}
	s.store.SetSources(path)

	sum := &LoadSummary{
		Path:      path,
		Rows:      t.NumRows(),
		Cols:      t.NumCols(),
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	log.Info("loaded table", "path", path, "rows", sum.Rows, "cols", sum.Cols)
	return sum, nil
}

// MergeSummary reports a completed folder merge.
type MergeSummary struct {
	Dir       string   `json:"dir"`
	Files     []string `json:"files"`
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	ElapsedMs int64    `json:"elapsedMs"`
}

// MergeFolder reads every supported file under dir (bounded parallel
// reads), merges them in listing order and makes the result the working
// table. The merged table's provenance lists every input path in order.
func (s *Service) MergeFolder(ctx context.Context, dir string) (*MergeSummary, error) {
	ctx, log := s.begin(ctx, "merge-folder")
	start := time.Now()

	paths, err := s.lister.List(dir)
	if err != nil {
		log.Error("listing failed", "dir", dir, "error", err)
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &MergeError{Reason: fmt.Sprintf("no supported files in %s", dir)}
	}
	log.Info("merging folder", "dir", dir, "files", len(paths))

	tables := make([]*Table, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.readLimit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := s.reader.Read(path)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("merge read failed", "dir", dir, "error", err)
		return nil, err
	}

	merged, err := Merge(s.co, tables)
	if err != nil {
		log.Error("merge failed", "dir", dir, "error", err)
		return nil, err
	}
	if err := s.store.Replace(merged); err != nil {
		return nil, err
	}
	s.store.SetSources(paths...)

	sum := &MergeSummary{
		Dir:       dir,
		Files:     paths,
		Rows:      merged.NumRows(),
		Cols:      merged.NumCols(),
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	log.Info("merged folder", "files", len(paths), "rows", sum.Rows, "cols", sum.Cols)
	return sum, nil
}

// SaveSummary reports a completed save.
type SaveSummary struct {
	Path       string `json:"path"`
	BackupPath string `json:"backupPath,omitempty"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
}

// SaveAs writes the working table to one file, format by extension,
// backing up any existing file first.
func (s *Service) SaveAs(ctx context.Context, path string) (*SaveSummary, error) {
	_, log := s.begin(ctx, "save")
	cur, err := s.working()
	if err != nil {
		return nil, err
	}

	backup, err := s.saver.Save(cur, path)
	if err != nil {
		log.Error("save failed", "path", path, "error", err)
		return nil, err
	}
	sum := &SaveSummary{
		Path:       path,
		BackupPath: backup,
		Rows:       cur.NumRows(),
		Cols:       cur.NumCols(),
	}
	log.Info("saved table", "path", path, "rows", sum.Rows, "backup", backup != "")
	return sum, nil
}

// Preview returns the first n rows of the working table (the configured
// preview cap when n <= 0).
func (s *Service) Preview(ctx context.Context, n int) (*Table, error) {
	cur, err := s.working()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > s.previewRows {
		n = s.previewRows
	}
	return cur.Head(n), nil
}

// Undo restores the previously superseded working table.
func (s *Service) Undo(ctx context.Context) (*OpSummary, error) {
	_, log := s.begin(ctx, "undo")
	t, err := s.store.Undo()
	if err != nil {
		return nil, err
	}
	log.Info("restored previous table", "rows", t.NumRows(), "cols", t.NumCols())
	return &OpSummary{Op: "undo", RowsOut: t.NumRows()}, nil
}

// SourcePaths returns the working table's provenance.
func (s *Service) SourcePaths() []string { return s.store.SourcePaths() }
