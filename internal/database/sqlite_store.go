// file: internal/database/sqlite_store.go
// version: 2.0.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jdfalk/petmatch/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const reportSelectColumns = `
	id, kind, name, species, breed, location, age, description,
	report_date, coordinates, image_url, created_at
`

func scanReport(scanner rowScanner, report *models.Report) error {
	var age sql.NullInt64
	var createdAt string
	if err := scanner.Scan(
		&report.ID, &report.Kind, &report.Name, &report.Species,
		&report.Breed, &report.Location, &age, &report.Description,
		&report.Date, &report.Coordinates, &report.ImageURL, &createdAt,
	); err != nil {
		return err
	}
	if age.Valid {
		report.Age = models.Years(int(age.Int64))
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	report.CreatedAt = t
	return nil
}

// SQLiteStore implements the Store interface using SQLite3
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// createTables creates all required tables
func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		species TEXT NOT NULL,
		breed TEXT NOT NULL,
		location TEXT NOT NULL,
		age INTEGER,
		description TEXT NOT NULL,
		report_date TEXT NOT NULL DEFAULT '',
		coordinates TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind);

	CREATE TABLE IF NOT EXISTS report_matches (
		report_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		candidate_id TEXT NOT NULL,
		candidate_name TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (report_id, rank)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Snapshot writes a compacted copy of the database into the file dest
func (s *SQLiteStore) Snapshot(dest string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("failed to snapshot SQLite database: %w", err)
	}
	return nil
}

// Report operations

func (s *SQLiteStore) CreateReport(report *models.Report) (*models.Report, error) {
	if err := prepareReport(report); err != nil {
		return nil, err
	}

	var age sql.NullInt64
	if report.Age.Valid {
		age = sql.NullInt64{Int64: int64(report.Age.Years), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO reports (`+reportSelectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, string(report.Kind), report.Name, report.Species,
		report.Breed, report.Location, age, report.Description,
		report.Date, report.Coordinates, report.ImageURL,
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return report, nil
}

func (s *SQLiteStore) GetReportByID(id string) (*models.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportSelectColumns+` FROM reports WHERE id = ?`, id)
	var report models.Report
	if err := scanReport(row, &report); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (s *SQLiteStore) ListReports(kind models.ReportKind, limit, offset int) ([]models.Report, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	var rows *sql.Rows
	var err error
	if kind == "" {
		rows, err = s.db.Query(`SELECT `+reportSelectColumns+` FROM reports ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	} else {
		rows, err = s.db.Query(`SELECT `+reportSelectColumns+` FROM reports WHERE kind = ? ORDER BY id LIMIT ? OFFSET ?`, string(kind), limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var report models.Report
		if err := scanReport(rows, &report); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (s *SQLiteStore) CountReports(kind models.ReportKind) (int, error) {
	var count int
	var err error
	if kind == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM reports WHERE kind = ?`, string(kind)).Scan(&count)
	}
	return count, err
}

func (s *SQLiteStore) DeleteReport(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	if _, err := tx.Exec(`DELETE FROM report_matches WHERE report_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Match operations

func (s *SQLiteStore) SaveMatches(reportID string, matches []MatchRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM report_matches WHERE report_id = ?`, reportID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO report_matches (report_id, rank, candidate_id, candidate_name, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range matches {
		createdAt := m.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.Exec(reportID, i+1, m.CandidateID, m.CandidateName, m.Score,
			createdAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to insert match %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetMatches(reportID string) ([]MatchRecord, error) {
	rows, err := s.db.Query(`
		SELECT report_id, rank, candidate_id, candidate_name, score, created_at
		FROM report_matches WHERE report_id = ? ORDER BY rank`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []MatchRecord{}
	for rows.Next() {
		var m MatchRecord
		var createdAt string
		if err := rows.Scan(&m.ReportID, &m.Rank, &m.CandidateID, &m.CandidateName, &m.Score, &createdAt); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
