// file: internal/server/report_service.go
// version: 1.0.0
// guid: 2f6b9d41-8c3e-4a7f-b05d-e19a7c4f2b68

package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jdfalk/petmatch/internal/cache"
	"github.com/jdfalk/petmatch/internal/database"
	"github.com/jdfalk/petmatch/internal/matcher"
	"github.com/jdfalk/petmatch/internal/metrics"
	"github.com/jdfalk/petmatch/internal/models"
	"github.com/jdfalk/petmatch/internal/realtime"
)

// ErrStoreUnavailable is returned when the service has no backing store
var ErrStoreUnavailable = errors.New("database not initialized")

// SearchMinScore is the lowest fuzzy score a search hit needs
const SearchMinScore = 40

// ReportService handles report submission, lookup and matching
type ReportService struct {
	store   database.Store
	hub     *realtime.EventHub
	matches *cache.Cache[[]ReportMatch]
}

// NewReportService creates a new ReportService. hub may be nil.
func NewReportService(store database.Store, hub *realtime.EventHub, matchTTL time.Duration) *ReportService {
	return &ReportService{
		store:   store,
		hub:     hub,
		matches: cache.New[[]ReportMatch](matchTTL),
	}
}

// ReportMatch is a stored report that potentially matches another one
type ReportMatch struct {
	Report    models.Report     `json:"report"`
	Score     float64           `json:"score"`
	Breakdown matcher.Breakdown `json:"breakdown"`
}

// SubmitResult is returned when a new report is stored
type SubmitResult struct {
	Report       *models.Report `json:"report"`
	Matches      []ReportMatch  `json:"matches"`
	Notification string         `json:"notification,omitempty"`
}

// NotificationText renders the message shown to a reporter whose report
// produced matches, e.g. "Found 1 potential match(es):\nLost Pet: Max (Score: 88%)".
// kind is the kind of the newly submitted report.
func NotificationText(kind models.ReportKind, matches []ReportMatch) string {
	if len(matches) == 0 {
		return ""
	}
	label := kind.Opposite().Label()
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d potential match(es):", len(matches))
	for _, m := range matches {
		fmt.Fprintf(&b, "\n%s: %s (Score: %d%%)", label, m.Report.DisplayName(), roundScore(m.Score))
	}
	return b.String()
}

// roundScore rounds half up, the way the notification has always displayed scores
func roundScore(s float64) int {
	return int(math.Floor(s + 0.5))
}

// candidates scores report against every stored report of the opposite kind
func (svc *ReportService) candidates(report *models.Report) ([]ReportMatch, error) {
	start := time.Now()
	refs, err := svc.store.ListReports(report.Kind.Opposite(), 0, 0)
	LogDatabaseOperation("ListReports", "reports", time.Since(start), len(refs), err)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s reports: %w", report.Kind.Opposite(), err)
	}

	animals := make([]models.ReportedAnimal, len(refs))
	for i := range refs {
		animals[i] = refs[i].ReportedAnimal
	}

	scoreStart := time.Now()
	results := matcher.FindMatches(report.ReportedAnimal, animals)

	out := make([]ReportMatch, 0, len(results))
	scores := make([]float64, 0, len(results))
	for _, r := range results {
		out = append(out, ReportMatch{Report: refs[r.Index], Score: r.Score, Breakdown: r.Breakdown})
		scores = append(scores, r.Score)
	}
	metrics.ObserveMatches(time.Since(scoreStart), scores)
	return out, nil
}

// Submit validates and stores a report, then matches it against the stored
// reports of the opposite kind.
func (svc *ReportService) Submit(ctx context.Context, report *models.Report) (*SubmitResult, error) {
	if svc.store == nil {
		return nil, ErrStoreUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if report != nil {
		report.Kind, _ = models.ParseReportKind(string(report.Kind))
	}
	if err := ValidateReport(report); err != nil {
		var ve ValidationError
		if errors.As(err, &ve) {
			metrics.IncReportRejected(ve.Field)
		}
		return nil, err
	}
	report.Name = report.DisplayName()

	start := time.Now()
	created, err := svc.store.CreateReport(report)
	LogDatabaseOperation("CreateReport", "reports", time.Since(start), 1, err)
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	svc.matches.InvalidateAll()
	metrics.IncReportCreated(string(created.Kind))

	matches, err := svc.candidates(created)
	if err != nil {
		return nil, err
	}

	records := make([]database.MatchRecord, len(matches))
	for i, m := range matches {
		records[i] = database.MatchRecord{
			CandidateID:   m.Report.ID,
			CandidateName: m.Report.DisplayName(),
			Score:         m.Score,
		}
	}
	if err := svc.store.SaveMatches(created.ID, records); err != nil {
		// The report is stored; only the history write failed
		NewServiceLogger("ReportService", created.ID).LogError("SaveMatches", err)
	}

	result := &SubmitResult{
		Report:       created,
		Matches:      matches,
		Notification: NotificationText(created.Kind, matches),
	}

	if svc.hub != nil {
		svc.hub.SendReportCreated(created.ID, string(created.Kind), created.Name)
		if len(matches) > 0 {
			svc.hub.SendMatchFound(created.ID, len(matches), result.Notification, matches)
		}
	}
	return result, nil
}

// SubmitBatch submits reports one by one. progress, if set, is called after
// each report. There is always one item per report: once ctx is done the
// remaining reports are reported as failed with the context error.
func (svc *ReportService) SubmitBatch(ctx context.Context, reports []models.Report, progress func(done int)) []BulkItem {
	items := make([]BulkItem, 0, len(reports))
	for i := range reports {
		if err := ctx.Err(); err != nil {
			for range reports[i:] {
				items = append(items, BulkItem{Status: "failed", Error: err.Error()})
			}
			break
		}
		res, err := svc.Submit(ctx, &reports[i])
		if err != nil {
			items = append(items, BulkItem{Status: "failed", Error: err.Error()})
		} else {
			items = append(items, BulkItem{ID: res.Report.ID, Status: "success", Matches: len(res.Matches)})
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	return items
}

// Get returns a stored report or database.ErrReportNotFound
func (svc *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	if svc.store == nil {
		return nil, ErrStoreUnavailable
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	report, err := svc.store.GetReportByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, database.ErrReportNotFound
	}
	return report, nil
}

// List returns one page of reports of a kind ("" for all) and the total count
func (svc *ReportService) List(ctx context.Context, kind models.ReportKind, limit, offset int) ([]models.Report, int, error) {
	if svc.store == nil {
		return nil, 0, ErrStoreUnavailable
	}
	reports, err := svc.store.ListReports(kind, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	total, err := svc.store.CountReports(kind)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, total, nil
}

// Delete removes a report and its stored matches
func (svc *ReportService) Delete(ctx context.Context, id string) error {
	if svc.store == nil {
		return ErrStoreUnavailable
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := svc.store.DeleteReport(id); err != nil {
		return err
	}
	svc.matches.InvalidateAll()
	if svc.hub != nil {
		svc.hub.SendReportDeleted(id)
	}
	return nil
}

// Matches recomputes the matches of a stored report against the current
// opposite-kind reports. Results are cached until the next write.
func (svc *ReportService) Matches(ctx context.Context, id string) ([]ReportMatch, error) {
	report, err := svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, hit, err := svc.matches.GetOrLoad(id, func() ([]ReportMatch, error) {
		return svc.candidates(report)
	})
	if hit {
		LogServiceCacheHit("ReportService.Matches", id)
	} else {
		LogServiceCacheMiss("ReportService.Matches", id)
	}
	return matches, err
}

// History returns the matches recorded when the report was submitted
func (svc *ReportService) History(ctx context.Context, id string) ([]database.MatchRecord, error) {
	if _, err := svc.Get(ctx, id); err != nil {
		return nil, err
	}
	records, err := svc.store.GetMatches(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}
	if records == nil {
		records = []database.MatchRecord{}
	}
	return records, nil
}

// Search ranks stored reports against a free-text query
func (svc *ReportService) Search(ctx context.Context, query string, limit int) ([]models.Report, error) {
	if svc.store == nil {
		return nil, ErrStoreUnavailable
	}
	reports, err := svc.store.ListReports("", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	hits := matcher.SearchReports(query, reports, SearchMinScore)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]models.Report, len(hits))
	for i, h := range hits {
		out[i] = reports[h.Index]
	}
	return out, nil
}

// MatchStateless scores a report against caller-supplied references without
// touching the store.
func MatchStateless(report models.ReportedAnimal, refs []models.ReportedAnimal) []matcher.MatchResult {
	start := time.Now()
	results := matcher.FindMatches(report, refs)
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	metrics.ObserveMatches(time.Since(start), scores)
	return results
}
