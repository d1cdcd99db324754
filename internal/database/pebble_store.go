// file: internal/database/pebble_store.go
// version: 2.0.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package database

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cockroachdb/pebble/v2"
	"github.com/jdfalk/petmatch/internal/models"
)

// PebbleStore implements the Store interface using PebbleDB (LSM key-value store)
//
// Key Schema:
// - report:<id>                     -> Report JSON
// - reportkind:<kind>:<id>          -> report_id (for kind filtered listing)
// - match:<report_id>:<rank>        -> MatchRecord JSON
//
// Report IDs are ULIDs so key order is creation order.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore creates a new PebbleDB store
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

// Snapshot writes a checkpoint of the open database into the directory dest
func (p *PebbleStore) Snapshot(dest string) error {
	if err := p.db.Checkpoint(dest); err != nil {
		return fmt.Errorf("failed to checkpoint PebbleDB: %w", err)
	}
	return nil
}

// Helper functions

func reportKey(id string) []byte {
	return []byte("report:" + id)
}

func reportKindKey(kind models.ReportKind, id string) []byte {
	return []byte(fmt.Sprintf("reportkind:%s:%s", kind, id))
}

func matchKey(reportID string, rank int) []byte {
	return []byte(fmt.Sprintf("match:%s:%06d", reportID, rank))
}

// prefixBounds returns iterator bounds covering every key that starts with prefix
func prefixBounds(prefix string) (lower, upper []byte) {
	lower = []byte(prefix)
	upper = []byte(prefix)
	upper[len(upper)-1]++
	return lower, upper
}

// Report operations

func (p *PebbleStore) CreateReport(report *models.Report) (*models.Report, error) {
	if err := prepareReport(report); err != nil {
		return nil, err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	batch := p.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(reportKey(report.ID), data, nil); err != nil {
		return nil, err
	}
	if err := batch.Set(reportKindKey(report.Kind, report.ID), []byte(report.ID), nil); err != nil {
		return nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	return report, nil
}

func (p *PebbleStore) GetReportByID(id string) (*models.Report, error) {
	value, closer, err := p.db.Get(reportKey(id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var report models.Report
	if err := json.Unmarshal(value, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// reportIDs lists report IDs in creation order, optionally filtered by kind
func (p *PebbleStore) reportIDs(kind models.ReportKind) ([]string, error) {
	var prefix string
	if kind == "" {
		prefix = "reportkind:"
	} else {
		prefix = fmt.Sprintf("reportkind:%s:", kind)
	}
	lower, upper := prefixBounds(prefix)
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []string
	for iter.First(); iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	if kind == "" {
		// kind index is grouped by kind; restore global creation order
		slices.Sort(ids)
	}
	return ids, nil
}

func (p *PebbleStore) ListReports(kind models.ReportKind, limit, offset int) ([]models.Report, error) {
	ids, err := p.reportIDs(kind)
	if err != nil {
		return nil, err
	}
	ids = paginate(ids, limit, offset)

	reports := make([]models.Report, 0, len(ids))
	for _, id := range ids {
		report, err := p.GetReportByID(id)
		if err != nil {
			return nil, err
		}
		if report != nil {
			reports = append(reports, *report)
		}
	}
	return reports, nil
}

func (p *PebbleStore) CountReports(kind models.ReportKind) (int, error) {
	ids, err := p.reportIDs(kind)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (p *PebbleStore) DeleteReport(id string) error {
	report, err := p.GetReportByID(id)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrReportNotFound
	}

	batch := p.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(reportKey(id), nil); err != nil {
		return err
	}
	if err := batch.Delete(reportKindKey(report.Kind, id), nil); err != nil {
		return err
	}
	lower, upper := prefixBounds(fmt.Sprintf("match:%s:", id))
	if err := batch.DeleteRange(lower, upper, nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// Match operations

func (p *PebbleStore) SaveMatches(reportID string, matches []MatchRecord) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	lower, upper := prefixBounds(fmt.Sprintf("match:%s:", reportID))
	if err := batch.DeleteRange(lower, upper, nil); err != nil {
		return err
	}
	for i := range matches {
		m := matches[i]
		m.ReportID = reportID
		m.Rank = i + 1
		data, err := json.Marshal(&m)
		if err != nil {
			return err
		}
		if err := batch.Set(matchKey(reportID, m.Rank), data, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (p *PebbleStore) GetMatches(reportID string) ([]MatchRecord, error) {
	lower, upper := prefixBounds(fmt.Sprintf("match:%s:", reportID))
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	matches := []MatchRecord{}
	for iter.First(); iter.Valid(); iter.Next() {
		var m MatchRecord
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, iter.Error()
}
