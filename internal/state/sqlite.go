package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/reportcols/internal/mapping"
	_ "modernc.org/sqlite"
)

// MemoryPath opens an in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
// The logger parameter is optional (nil uses discard logger).
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database, creating its directory
// when needed. Use MemoryPath for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == MemoryPath {
		// Every connection of an in-memory database sees its own database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema brings the database schema up to date.
func (s *SQLiteStore) InitSchema() error {
	return s.Migrate()
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// SaveMappings replaces all mappings of reportID with entries in a single
// transaction.
func (s *SQLiteStore) SaveMappings(ctx context.Context, reportID string, entries []mapping.Entry) (err error) {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if reportID == "" {
		return fmt.Errorf("report id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM question_mappings WHERE report_id = ?`, reportID); err != nil {
		return fmt.Errorf("failed to clear mappings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO question_mappings (id, report_id, slave_project_id, master_question_id, slave_question_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (report_id, slave_project_id, master_question_id)
		 DO UPDATE SET slave_question_id = excluded.slave_question_id, created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx, generateID(), reportID, e.SlaveProjectID, e.MasterQuestionID, e.SlaveQuestionID, now); err != nil {
			return fmt.Errorf("failed to save mapping %s/%s: %w", e.SlaveProjectID, e.MasterQuestionID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mappings: %w", err)
	}
	s.logger.Debug("saved mappings", "report", reportID, "count", len(entries))
	return nil
}

// LoadMapping returns the stored mapping table of reportID.
func (s *SQLiteStore) LoadMapping(ctx context.Context, reportID string) (*mapping.Table, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT slave_project_id, master_question_id, slave_question_id
		 FROM question_mappings WHERE report_id = ?
		 ORDER BY slave_project_id, master_question_id`,
		reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	table := mapping.New()
	for rows.Next() {
		var e mapping.Entry
		if err := rows.Scan(&e.SlaveProjectID, &e.MasterQuestionID, &e.SlaveQuestionID); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		table.Add(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mappings: %w", err)
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", reportID, ErrReportNotFound)
	}
	return table, nil
}

// ListReports summarizes every report with stored mappings, ordered by
// report id.
func (s *SQLiteStore) ListReports(ctx context.Context) ([]ReportSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT report_id, slave_project_id, created_at FROM question_mappings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[string]*ReportSummary)
	slaves := make(map[string]map[string]struct{})
	for rows.Next() {
		var reportID, slaveID string
		var createdAt time.Time
		if err := rows.Scan(&reportID, &slaveID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		sum, ok := byID[reportID]
		if !ok {
			sum = &ReportSummary{ReportID: reportID}
			byID[reportID] = sum
			slaves[reportID] = make(map[string]struct{})
		}
		sum.Mappings++
		slaves[reportID][slaveID] = struct{}{}
		if createdAt.After(sum.UpdatedAt) {
			sum.UpdatedAt = createdAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	out := make([]ReportSummary, 0, len(byID))
	for id, sum := range byID {
		sum.SlaveProjects = len(slaves[id])
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportID < out[j].ReportID })
	return out, nil
}

// DeleteReport removes every mapping of reportID.
func (s *SQLiteStore) DeleteReport(ctx context.Context, reportID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM question_mappings WHERE report_id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete mappings: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", reportID, ErrReportNotFound)
	}
	return nil
}

// IsNotFound reports whether err says a report has no stored mappings.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound)
}
