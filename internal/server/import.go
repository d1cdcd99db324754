// file: internal/server/import.go
// version: 1.0.0
// guid: 5a8c3e17-d49b-4f26-9e0a-b7c1f4d82e63

package server

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jdfalk/petmatch/internal/models"
	"github.com/jdfalk/petmatch/internal/watcher"
	"gopkg.in/yaml.v3"
)

// Suffixes appended to drop-folder files once they have been processed
const (
	ImportedSuffix = ".imported"
	FailedSuffix   = ".failed"
)

// LoadReportsFile decodes a YAML or JSON list of reports
func LoadReportsFile(path string) ([]models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var reports []models.Report
	if err := yaml.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return reports, nil
}

// ImportFile submits every report in a YAML or JSON file. progress, if set,
// is called after each report.
func (svc *ReportService) ImportFile(ctx context.Context, path string, progress func(done int)) ([]BulkItem, error) {
	reports, err := LoadReportsFile(path)
	if err != nil {
		return nil, err
	}
	return svc.SubmitBatch(ctx, reports, progress), nil
}

// importDropFiles imports each file and renames it so it is not picked up
// again: *.imported when every report was stored, *.failed otherwise.
func (svc *ReportService) importDropFiles(ctx context.Context, files []string) {
	sl := NewServiceLogger("DropFolder", "")
	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		items, err := svc.ImportFile(ctx, path, nil)
		suffix := ImportedSuffix
		if err != nil {
			sl.LogError("ImportFile", err)
			suffix = FailedSuffix
		} else {
			result := NewBulkResponse(items)
			sl.LogOperation("ImportFile", map[string]any{
				"file":      path,
				"succeeded": result.Succeeded,
				"failed":    result.Failed,
			})
			if result.Failed > 0 {
				suffix = FailedSuffix
			}
		}
		if err := os.Rename(path, path+suffix); err != nil {
			sl.LogError("Rename", err)
		}
	}
}

// startDropFolder watches dir for report files until ctx is done
func (s *Server) startDropFolder(ctx context.Context, dir string) (*watcher.Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}
	w := watcher.New(func(files []string) {
		s.reports.importDropFiles(ctx, files)
	}, 0)
	if err := w.Start(dir); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("[INFO] Watching %s for report files", dir)
	return w, nil
}
