// file: internal/database/mock_store.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package database

import (
	"github.com/jdfalk/petmatch/internal/models"
)

// MockStore is a simple mock implementation for testing services.
// Unset functions return zero values.
type MockStore struct {
	CloseFunc         func() error
	CreateReportFunc  func(report *models.Report) (*models.Report, error)
	GetReportByIDFunc func(id string) (*models.Report, error)
	ListReportsFunc   func(kind models.ReportKind, limit, offset int) ([]models.Report, error)
	CountReportsFunc  func(kind models.ReportKind) (int, error)
	DeleteReportFunc  func(id string) error
	SaveMatchesFunc   func(reportID string, matches []MatchRecord) error
	GetMatchesFunc    func(reportID string) ([]MatchRecord, error)
}

func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockStore) CreateReport(report *models.Report) (*models.Report, error) {
	if m.CreateReportFunc != nil {
		return m.CreateReportFunc(report)
	}
	return report, nil
}

func (m *MockStore) GetReportByID(id string) (*models.Report, error) {
	if m.GetReportByIDFunc != nil {
		return m.GetReportByIDFunc(id)
	}
	return nil, nil
}

func (m *MockStore) ListReports(kind models.ReportKind, limit, offset int) ([]models.Report, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(kind, limit, offset)
	}
	return nil, nil
}

func (m *MockStore) CountReports(kind models.ReportKind) (int, error) {
	if m.CountReportsFunc != nil {
		return m.CountReportsFunc(kind)
	}
	return 0, nil
}

func (m *MockStore) DeleteReport(id string) error {
	if m.DeleteReportFunc != nil {
		return m.DeleteReportFunc(id)
	}
	return nil
}

func (m *MockStore) SaveMatches(reportID string, matches []MatchRecord) error {
	if m.SaveMatchesFunc != nil {
		return m.SaveMatchesFunc(reportID, matches)
	}
	return nil
}

func (m *MockStore) GetMatches(reportID string) ([]MatchRecord, error) {
	if m.GetMatchesFunc != nil {
		return m.GetMatchesFunc(reportID)
	}
	return nil, nil
}

var _ Store = (*MockStore)(nil)
