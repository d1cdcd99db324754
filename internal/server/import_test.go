// file: internal/server/import_test.go
// version: 1.0.0
// guid: 6b9d4f28-e5a0-4037-8f1b-c8d2a5e93f74

package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jdfalk/petmatch/internal/database"
	"github.com/jdfalk/petmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dropYAML = `
- kind: lost
  name: Max
  species: Dog
  breed: Beagle
  location: 12 Canal Rd, Lahore, PK
  age: 3
  description: brown and white with a red collar
  date: 2025-05-20
`

const dropJSON = `[
  {"kind": "found", "species": "Dog", "breed": "Beagle", "location": "Mall Road, Lahore, PK",
   "age": "3", "description": "brown and white with a red collar", "date": "2025-05-22"}
]`

func TestLoadReportsFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "lost.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(dropYAML), 0o644))

	reports, err := LoadReportsFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, models.KindLost, reports[0].Kind)
	assert.Equal(t, models.Years(3), reports[0].Age)
	assert.Equal(t, "2025-05-20", reports[0].Date)

	jsonPath := filepath.Join(dir, "found.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(dropJSON), 0o644))
	reports, err = LoadReportsFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Mall Road, Lahore, PK", reports[0].Location)

	_, err = LoadReportsFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("kind: [lost"), 0o644))
	_, err = LoadReportsFile(badPath)
	assert.Error(t, err)
}

func TestImportFile(t *testing.T) {
	svc, _ := newPebbleService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "lost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dropYAML), 0o644))

	var done []int
	items, err := svc.ImportFile(context.Background(), path, func(n int) { done = append(done, n) })
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "success", items[0].Status)
	assert.Equal(t, []int{1}, done)
}

func TestImportDropFiles(t *testing.T) {
	svc, _ := newPebbleService(t)
	dir := t.TempDir()

	lost := filepath.Join(dir, "a-lost.yaml")
	found := filepath.Join(dir, "b-found.json")
	broken := filepath.Join(dir, "c-broken.yaml")
	require.NoError(t, os.WriteFile(lost, []byte(dropYAML), 0o644))
	require.NoError(t, os.WriteFile(found, []byte(dropJSON), 0o644))
	require.NoError(t, os.WriteFile(broken, []byte("- kind: lost\n  species: Dog\n"), 0o644))

	svc.importDropFiles(context.Background(), []string{lost, found, broken})

	assert.FileExists(t, lost+ImportedSuffix)
	assert.FileExists(t, found+ImportedSuffix)
	assert.FileExists(t, broken+FailedSuffix)
	assert.NoFileExists(t, lost)

	// The found report matched the lost one imported just before it
	reports, total, err := svc.List(context.Background(), models.KindFound, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	history, err := svc.History(context.Background(), reports[0].ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

const dropThreeFound = `
- {kind: found, species: Cat, breed: Siamese, location: "Gulberg, Lahore, PK", age: 2, description: cream with dark ears, date: 2025-06-01}
- {kind: found, species: Dog, breed: Pug, location: "DHA, Lahore, PK", age: 4, description: fawn with black mask, date: 2025-06-02}
- {kind: found, species: Dog, breed: Husky, location: "Model Town, Lahore, PK", age: 1, description: grey and white, date: 2025-06-03}
`

func TestImportDropFiles_CancelledMidFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stored := 0
	store := &database.MockStore{
		CreateReportFunc: func(r *models.Report) (*models.Report, error) {
			stored++
			r.ID = "01J0000000000000000000000" + string(rune('0'+stored))
			cancel()
			return r, nil
		},
	}
	svc := NewReportService(store, nil, time.Minute)

	path := filepath.Join(t.TempDir(), "found.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dropThreeFound), 0o644))

	svc.importDropFiles(ctx, []string{path})

	assert.Equal(t, 1, stored)
	assert.NoFileExists(t, path+ImportedSuffix)
	assert.FileExists(t, path+FailedSuffix)
}

func TestImportFile_CancelledReportsEveryItem(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &database.MockStore{
		CreateReportFunc: func(r *models.Report) (*models.Report, error) {
			r.ID = "01J00000000000000000000001"
			cancel()
			return r, nil
		},
	}
	svc := NewReportService(store, nil, time.Minute)

	path := filepath.Join(t.TempDir(), "found.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dropThreeFound), 0o644))

	items, err := svc.ImportFile(ctx, path, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "success", items[0].Status)
	for _, item := range items[1:] {
		assert.Equal(t, "failed", item.Status)
		assert.Equal(t, context.Canceled.Error(), item.Error)
	}
	result := NewBulkResponse(items)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
}

func TestStartDropFolder(t *testing.T) {
	s := setupTestServer(t)
	dir := filepath.Join(t.TempDir(), "drop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := s.startDropFolder(ctx, dir)
	require.NoError(t, err)
	defer w.Stop()

	path := filepath.Join(dir, "lost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dropYAML), 0o644))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path + ImportedSuffix)
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	_, total, err := s.reports.List(context.Background(), "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
