// Package rowsize implements row-size guards that tell the resolver whether a
// project's response row still has room for full-width placeholder columns.
package rowsize

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	// SQL Server driver registered as "sqlserver".
	_ "github.com/microsoft/go-mssqldb"
)

// DefaultLimit is the maximum in-row size of a SQL Server data row in bytes.
const DefaultLimit = 8060

// DefaultDriver is the database/sql driver used by Open.
const DefaultDriver = "sqlserver"

// maxPointerSize is the in-row footprint of a (MAX) column stored off-row.
const maxPointerSize = 24

// ErrTableNotFound is returned when the response table of a project has no
// columns in the catalog.
var ErrTableNotFound = errors.New("response table not found")

// Guard is a row-size guard that owns resources.
type Guard interface {
	RowSizeSafe(ctx context.Context, realProjectID string) (bool, error)
	Close() error
}

// Config selects and configures a guard.
type Config struct {
	Driver string
	// DSN of the report database. Empty selects a Static guard.
	DSN   string
	Limit int
	// AssumeSafe is the answer of the Static guard.
	AssumeSafe bool
}

// New returns a SQLGuard when cfg has a DSN and a Static guard otherwise.
func New(cfg Config, logger *slog.Logger) (Guard, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		logger.Debug("no row size database configured, using static guard", "safe", cfg.AssumeSafe)
		return Static(cfg.AssumeSafe), nil
	}
	driver := cfg.Driver
	if driver == "" {
		driver = DefaultDriver
	}
	return Open(driver, cfg.DSN, cfg.Limit, logger)
}

// Static answers every check with the same value.
type Static bool

// RowSizeSafe returns the static answer.
func (s Static) RowSizeSafe(context.Context, string) (bool, error) {
	return bool(s), nil
}

// Close is a no-op.
func (Static) Close() error { return nil }

// SQLGuard sums the declared column sizes of a response table in the
// SQL Server catalog.
type SQLGuard struct {
	DB     *sql.DB
	Limit  int
	Logger *slog.Logger
}

// Open connects to the report database.
func Open(driver, dsn string, limit int, logger *slog.Logger) (*SQLGuard, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return NewSQLGuard(db, limit, logger), nil
}

// NewSQLGuard wraps an open database handle. A limit of zero or less uses
// DefaultLimit.
func NewSQLGuard(db *sql.DB, limit int, logger *slog.Logger) *SQLGuard {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLGuard{DB: db, Limit: limit, Logger: logger}
}

const rowSizeQuery = `SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN c.max_length = -1 THEN @p2 ELSE c.max_length END), 0)
FROM sys.columns c
WHERE c.object_id = OBJECT_ID(@p1)`

// RowSizeSafe reports whether the declared row size of the response table of
// realProjectID is within the limit.
func (g *SQLGuard) RowSizeSafe(ctx context.Context, realProjectID string) (bool, error) {
	if g.DB == nil {
		return false, fmt.Errorf("database connection not established")
	}

	table := "[" + strings.TrimSpace(realProjectID) + "]"
	var count, total int64
	if err := g.DB.QueryRowContext(ctx, rowSizeQuery, table, maxPointerSize).Scan(&count, &total); err != nil {
		return false, fmt.Errorf("failed to query row size of %s: %w", table, err)
	}
	if count == 0 {
		return false, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}

	safe := total <= int64(g.Limit)
	g.Logger.Debug("row size checked",
		"table", table,
		"columns", count,
		"bytes", total,
		"limit", g.Limit,
		"safe", safe,
	)
	return safe, nil
}

// Close closes the database connection.
func (g *SQLGuard) Close() error {
	if g.DB != nil {
		g.Logger.Debug("closing database connection")
		return g.DB.Close()
	}
	return nil
}
