package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/csvunion/internal/logging"
)

// DefaultMaxTables caps the tables accepted by one merge.
const DefaultMaxTables = 50

var (
	// ErrNoTables is returned by a merge with nothing to merge.
	ErrNoTables = errors.New("no tables to merge")

	// ErrTooManyTables is returned when a merge names more than MaxTables.
	ErrTooManyTables = errors.New("too many tables in one merge")
)

// DuplicateTableError is returned when two tables of one merge share a name.
type DuplicateTableError struct {
	Name string
}

func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("duplicate table name %q", e.Name)
}

// TextSource fetches the CSV text behind a locator.
type TextSource interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// TableReader splits CSV text into a header row and data rows.
type TableReader interface {
	Parse(text string) (headers []string, rows [][]string, err error)
}

// TableSpec names one table and where to fetch it from.
type TableSpec struct {
	Name    string `json:"name" yaml:"name"`
	Locator string `json:"locator" yaml:"locator"`
}

// Upload is a table whose text is already in memory.
type Upload struct {
	Name string
	Text string
}

// ServiceConfig tunes a Service.
type ServiceConfig struct {
	// MaxTables caps tables per merge (default: DefaultMaxTables).
	MaxTables int

	// MaxParallel caps tables loaded at once within a merge; 0 is unbounded.
	MaxParallel int
}

// MergeResult is a completed merge.
type MergeResult struct {
	RunID  string
	Tables []*TypedTable
	Merged *MergedTable
}

// Service loads tables through a TextSource and TableReader and merges them.
// It holds no per-merge state and is safe for concurrent use.
type Service struct {
	source TextSource
	reader TableReader
	cfg    ServiceConfig
}

// NewService creates a Service. source may be nil when only in-memory text
// is merged.
func NewService(source TextSource, reader TableReader, cfg ServiceConfig) *Service {
	if cfg.MaxTables <= 0 {
		cfg.MaxTables = DefaultMaxTables
	}
	return &Service{
		source: source,
		reader: reader,
		cfg:    cfg,
	}
}

// BuildText parses text and builds a TypedTable named name.
func (s *Service) BuildText(name, text string) (*TypedTable, error) {
	headers, rows, err := s.reader.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	return BuildTable(name, RawTable{Header: headers, Data: rows})
}

// Load fetches, parses and builds the table described by spec.
func (s *Service) Load(ctx context.Context, spec TableSpec) (*TypedTable, error) {
	if s.source == nil {
		return nil, fmt.Errorf("table %q: no source configured for %q", spec.Name, spec.Locator)
	}

	start := time.Now()
	text, err := s.source.Fetch(ctx, spec.Locator)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", spec.Name, err)
	}

	t, err := s.BuildText(spec.Name, text)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("table built",
		"table", t.Name(),
		"locator", spec.Locator,
		"fields", len(t.Fields()),
		"rows", t.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return t, nil
}

// Merge loads every table in parallel and merges them in the order given. Any
// failure fails the whole merge.
func (s *Service) Merge(ctx context.Context, specs []TableSpec) (*MergeResult, error) {
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	if err := s.checkNames(names); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	start := time.Now()

	tables := make([]*TypedTable, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.MaxParallel > 0 {
		g.SetLimit(s.cfg.MaxParallel)
	}
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			t, err := s.Load(gctx, spec)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.FromContext(ctx).Warn("merge failed", "tables", len(specs), "error", err)
		return nil, err
	}

	return s.finish(ctx, runID, tables, start), nil
}

// MergeUploads builds each upload and merges them in argument order.
func (s *Service) MergeUploads(ctx context.Context, uploads []Upload) (*MergeResult, error) {
	names := make([]string, len(uploads))
	for i, u := range uploads {
		names[i] = u.Name
	}
	if err := s.checkNames(names); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	start := time.Now()

	tables := make([]*TypedTable, len(uploads))
	for i, u := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := s.BuildText(u.Name, u.Text)
		if err != nil {
			logging.FromContext(ctx).Warn("merge failed", "table", u.Name, "error", err)
			return nil, err
		}
		tables[i] = t
	}

	return s.finish(ctx, runID, tables, start), nil
}

func (s *Service) finish(ctx context.Context, runID string, tables []*TypedTable, start time.Time) *MergeResult {
	merged := MergeTables(tables...)

	logging.FromContext(ctx).Info("merge complete",
		"tables", len(tables),
		"fields", len(merged.Fields),
		"rows", len(merged.Rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &MergeResult{
		RunID:  runID,
		Tables: tables,
		Merged: merged,
	}
}

func (s *Service) checkNames(names []string) error {
	if len(names) == 0 {
		return ErrNoTables
	}
	if len(names) > s.cfg.MaxTables {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTables, len(names), s.cfg.MaxTables)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return &DuplicateTableError{Name: n}
		}
		seen[n] = true
	}
	return nil
}
