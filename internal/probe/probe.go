// Package probe checks that resolved column lists are executable SQL by
// running them against empty scratch tables in an in-memory SQLite database.
package probe

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/reportcols/pkg/columns"
	"github.com/leapstack-labs/reportcols/pkg/resolver"
	_ "modernc.org/sqlite"
)

// Tables names the tables a resolution reads from.
type Tables struct {
	// Response is the bracket-quoted response table.
	Response string
	// Context is the bracket-quoted context-response table.
	Context string
}

// Error reports a list that failed to execute or returned the wrong shape.
type Error struct {
	List  string
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s: %v", e.List, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Prober runs resolved lists against scratch tables.
type Prober struct {
	logger *slog.Logger
}

// New creates a Prober. The logger parameter is optional (nil uses discard logger).
func New(logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Prober{logger: logger}
}

// Probe creates one scratch table per table referenced by res, then selects
// the primary list from the response table and, when present, the combined
// list from the response and context tables. Both selects must return
// exactly the aliases of the list in order.
func (p *Prober) Probe(ctx context.Context, res *resolver.Result, tables Tables) error {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open probe database: %w", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	scratch := scratchSchema(res, tables)
	for _, table := range scratch.order {
		ddl := createTable(table, scratch.columns[table])
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create scratch table %s: %w", table, err)
		}
	}

	query := "SELECT " + render(res.Primary) + " FROM " + tables.Response
	if err := p.run(ctx, db, "cols", query, aliases(res.Primary)); err != nil {
		return err
	}

	if len(res.Combined) > 0 {
		query := "SELECT " + render(res.Combined) + " FROM " + tables.Response + ", " + tables.Context
		if err := p.run(ctx, db, "combCols", query, aliases(res.Combined)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prober) run(ctx context.Context, db *sql.DB, list, query string, want []string) error {
	p.logger.Debug("probing column list", "list", list, "columns", len(want))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &Error{List: list, Query: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	got, err := rows.Columns()
	if err != nil {
		return &Error{List: list, Query: query, Err: err}
	}
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return &Error{List: list, Query: query, Err: err}
	}

	if !slices.Equal(got, want) {
		return &Error{
			List:  list,
			Query: query,
			Err:   fmt.Errorf("returned columns %v, want %v", got, want),
		}
	}
	return nil
}

type scratchTables struct {
	order   []string
	columns map[string][]string
}

func (s *scratchTables) add(table, column string) {
	cols, ok := s.columns[table]
	if !ok {
		s.order = append(s.order, table)
	}
	if column != "" && !slices.Contains(cols, column) {
		cols = append(cols, column)
	}
	s.columns[table] = cols
}

func scratchSchema(res *resolver.Result, tables Tables) *scratchTables {
	s := &scratchTables{columns: make(map[string][]string)}
	s.add(tables.Response, "")
	if len(res.Combined) > 0 {
		s.add(tables.Context, "")
	}
	for _, list := range [][]columns.Column{res.Primary, res.Combined} {
		for _, c := range list {
			if c.IsPlaceholder() {
				continue
			}
			s.add(c.Table, c.Source)
		}
	}
	return s
}

func createTable(table string, cols []string) string {
	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, `"_probe_id" INTEGER`)
	for _, c := range cols {
		defs = append(defs, `"`+strings.ReplaceAll(c, `"`, `""`)+`"`)
	}
	return "CREATE TABLE " + table + " (" + strings.Join(defs, ", ") + ")"
}

// render renders the list as the SQL assembler would, adjusting placeholder
// types SQLite cannot parse.
func render(cols []columns.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if c.IsPlaceholder() {
			c.Type = sqliteType(c.Type)
		}
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func sqliteType(t string) string {
	if i := strings.Index(strings.ToUpper(t), "(MAX)"); i >= 0 {
		return t[:i]
	}
	return t
}

func aliases(cols []columns.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Alias
	}
	return out
}
