// Package state persists report question mappings in SQLite so that slave
// resolutions can run without the definition file that introduced them.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/reportcols/internal/mapping"
)

// ErrReportNotFound is returned when no mappings are stored for a report.
var ErrReportNotFound = errors.New("report has no stored mappings")

// Store is the mapping persistence interface.
type Store interface {
	// SaveMappings replaces all mappings of reportID with entries.
	SaveMappings(ctx context.Context, reportID string, entries []mapping.Entry) error
	// LoadMapping returns the stored mapping table of reportID.
	LoadMapping(ctx context.Context, reportID string) (*mapping.Table, error)
	// ListReports summarizes every report with stored mappings.
	ListReports(ctx context.Context) ([]ReportSummary, error)
	// DeleteReport removes every mapping of reportID.
	DeleteReport(ctx context.Context, reportID string) error
	Close() error
}

// ReportSummary describes the stored mappings of one report.
type ReportSummary struct {
	ReportID      string    `json:"report_id"`
	Mappings      int       `json:"mappings"`
	SlaveProjects int       `json:"slave_projects"`
	UpdatedAt     time.Time `json:"updated_at"`
}
