// file: internal/database/store.go
// version: 3.0.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jdfalk/petmatch/internal/models"
	ulid "github.com/oklog/ulid/v2"
)

// ErrReportNotFound is returned by mutating operations on a missing report
var ErrReportNotFound = errors.New("report not found")

// Store defines the interface for our database operations
// This abstraction allows us to support both PebbleDB (default) and SQLite3 (opt-in)
type Store interface {
	// Lifecycle
	Close() error

	// Reports
	CreateReport(report *models.Report) (*models.Report, error) // Generates ULID if ID is empty
	GetReportByID(id string) (*models.Report, error)             // nil, nil when missing
	ListReports(kind models.ReportKind, limit, offset int) ([]models.Report, error)
	CountReports(kind models.ReportKind) (int, error)
	DeleteReport(id string) error

	// Match notifications recorded when a report is submitted
	SaveMatches(reportID string, matches []MatchRecord) error // replaces any previous set
	GetMatches(reportID string) ([]MatchRecord, error)
}

// Snapshotter is implemented by stores that can write a consistent copy of
// themselves while open. dest must not exist yet.
type Snapshotter interface {
	Snapshot(dest string) error
}

// MatchRecord is a persisted potential match for a submitted report
type MatchRecord struct {
	ReportID      string    `json:"report_id"`
	Rank          int       `json:"rank"`
	CandidateID   string    `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	Score         float64   `json:"score"`
	CreatedAt     time.Time `json:"created_at"`
}

// Global store instance
var GlobalStore Store

// InitializeStore initializes the database store based on configuration
func InitializeStore(dbType, path string, enableSQLite bool) error {
	var err error

	switch dbType {
	case "sqlite", "sqlite3":
		if !enableSQLite {
			return fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file. PebbleDB is the recommended database for production use")
		}
		GlobalStore, err = NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
	case "pebble", "":
		// PebbleDB is the default
		GlobalStore, err = NewPebbleStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type: %s (supported: pebble, sqlite)", dbType)
	}

	return nil
}

// CloseStore closes the global store
func CloseStore() error {
	if GlobalStore != nil {
		err := GlobalStore.Close()
		GlobalStore = nil
		return err
	}
	return nil
}

// newULID returns a ULID that sorts after every ULID this process generated before it
func newULID() string {
	return ulid.Make().String()
}

// prepareReport fills the ID and creation time of a report about to be stored
func prepareReport(report *models.Report) error {
	if report == nil {
		return errors.New("report is nil")
	}
	if report.ID == "" {
		report.ID = newULID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	return nil
}

// paginate applies limit/offset to an already ordered slice; limit <= 0 means no limit
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
