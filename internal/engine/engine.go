// Package engine resolves report definition files end to end: it loads the
// definition, picks the mapping source, runs the resolver with the configured
// row-size guard and optionally probes the result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/reportcols/internal/definition"
	"github.com/leapstack-labs/reportcols/internal/mapping"
	"github.com/leapstack-labs/reportcols/internal/probe"
	"github.com/leapstack-labs/reportcols/internal/rowsize"
	"github.com/leapstack-labs/reportcols/internal/schema"
	"github.com/leapstack-labs/reportcols/internal/state"
	"github.com/leapstack-labs/reportcols/pkg/resolver"
)

// Engine orchestrates column resolution for definition files.
type Engine struct {
	resolver *resolver.Resolver
	guard    rowsize.Guard
	prober   *probe.Prober
	logger   *slog.Logger

	// State store (lazy initialized)
	statePath string
	store     *state.SQLiteStore
	storeMu   sync.Mutex
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite state database
	StatePath string
	// RowSize configures the row-size guard
	RowSize rowsize.Config
	// TextType and NarrowType override the placeholder types (optional)
	TextType   string
	NarrowType string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine. The state store is only opened when a
// mapping is read from or written to it.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "state_path", cfg.StatePath, "row_size_dsn_set", cfg.RowSize.DSN != "")

	guard, err := rowsize.New(cfg.RowSize, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create row size guard: %w", err)
	}

	return &Engine{
		resolver: resolver.New(schema.Populator{}, guard, resolver.Options{
			TextType:   cfg.TextType,
			NarrowType: cfg.NarrowType,
			Logger:     logger,
		}),
		guard:     guard,
		prober:    probe.New(logger),
		logger:    logger,
		statePath: cfg.StatePath,
	}, nil
}

// Close releases the row-size guard and the state store.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.guard.Close(); err != nil {
		firstErr = err
	}

	e.storeMu.Lock()
	defer e.storeMu.Unlock()
	if e.store != nil {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.store = nil
	}
	return firstErr
}

// Store returns the state store, opening it on first use.
func (e *Engine) Store() (state.Store, error) {
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	if e.store != nil {
		return e.store, nil
	}
	if e.statePath == "" {
		return nil, fmt.Errorf("state path not configured")
	}

	store := state.NewSQLiteStore(e.logger)
	if err := store.Open(e.statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	e.store = store
	return store, nil
}

// ImportMappings stores the mappings of the definition at path, replacing
// any mappings previously stored for its report.
func (e *Engine) ImportMappings(ctx context.Context, path string) (reportID string, count int, err error) {
	def, err := definition.Load(path)
	if err != nil {
		return "", 0, err
	}
	bundle, err := def.Build()
	if err != nil {
		return "", 0, err
	}

	store, err := e.Store()
	if err != nil {
		return "", 0, err
	}
	entries := bundle.Entries()
	if err := store.SaveMappings(ctx, bundle.Report.ID, entries); err != nil {
		return "", 0, err
	}

	e.logger.Info("imported mappings", "report", bundle.Report.ID, "count", len(entries), "file", path)
	return bundle.Report.ID, len(entries), nil
}

// ListReports lists the reports with stored mappings.
func (e *Engine) ListReports(ctx context.Context) ([]state.ReportSummary, error) {
	store, err := e.Store()
	if err != nil {
		return nil, err
	}
	return store.ListReports(ctx)
}

// StoredMapping returns the stored mapping table of reportID.
func (e *Engine) StoredMapping(ctx context.Context, reportID string) (*mapping.Table, error) {
	store, err := e.Store()
	if err != nil {
		return nil, err
	}
	return store.LoadMapping(ctx, reportID)
}

// DeleteMappings removes the stored mappings of reportID.
func (e *Engine) DeleteMappings(ctx context.Context, reportID string) error {
	store, err := e.Store()
	if err != nil {
		return err
	}
	if err := store.DeleteReport(ctx, reportID); err != nil {
		return err
	}
	e.logger.Info("deleted mappings", "report", reportID)
	return nil
}

// Trace follows masterQID of reportID through projects using the stored
// mapping.
func (e *Engine) Trace(ctx context.Context, reportID, masterQID string, projects ...string) ([]string, error) {
	table, err := e.StoredMapping(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return table.Chain(masterQID, projects...), nil
}
