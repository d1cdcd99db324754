// file: internal/backup/backup.go
// version: 2.0.0
// guid: 8f9e0a1b-2c3d-4e5f-6a7b-8c9d0e1f2a3b

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jdfalk/petmatch/internal/database"
)

// checksumSuffix names the sidecar file holding an archive's SHA256
const checksumSuffix = ".sha256"

// BackupInfo contains information about a backup
type BackupInfo struct {
	Filename     string    `json:"filename"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
	DatabaseType string    `json:"database_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// BackupConfig holds backup configuration
type BackupConfig struct {
	BackupDir        string
	MaxBackups       int
	CompressionLevel int
}

// DefaultBackupConfig returns default backup configuration
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{
		BackupDir:        "backups",
		MaxBackups:       10,
		CompressionLevel: gzip.BestCompression,
	}
}

// CreateBackup snapshots an open store and writes it as a compressed archive
// into config.BackupDir, next to a .sha256 sidecar.
func CreateBackup(store database.Snapshotter, databaseType string, config BackupConfig) (*BackupInfo, error) {
	if store == nil {
		return nil, errors.New("database not initialized")
	}
	if err := os.MkdirAll(config.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	staging, err := os.MkdirTemp("", "petmatch-backup-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	snapshotName := "reports.pebble"
	if databaseType == "sqlite" {
		snapshotName = "reports.db"
	}
	snapshotPath := filepath.Join(staging, snapshotName)
	if err := store.Snapshot(snapshotPath); err != nil {
		return nil, err
	}

	now := time.Now()
	backupFilename := fmt.Sprintf("petmatch_%s_%s.tar.gz", databaseType, now.Format("20060102_150405.000"))
	backupPath := filepath.Join(config.BackupDir, backupFilename)

	if err := writeArchive(backupPath, snapshotPath, config.CompressionLevel); err != nil {
		os.Remove(backupPath)
		return nil, err
	}

	fileInfo, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	checksum, err := calculateFileChecksum(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if err := os.WriteFile(backupPath+checksumSuffix, []byte(checksum+"  "+backupFilename+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write checksum file: %w", err)
	}

	info := &BackupInfo{
		Filename:     backupFilename,
		Path:         backupPath,
		Size:         fileInfo.Size(),
		Checksum:     checksum,
		DatabaseType: databaseType,
		CreatedAt:    now,
	}

	if err := cleanupOldBackups(config.BackupDir, config.MaxBackups); err != nil {
		log.Printf("[WARN] failed to clean up old backups: %v", err)
	}

	return info, nil
}

func writeArchive(backupPath, snapshotPath string, level int) error {
	backupFile, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer backupFile.Close()

	gzipWriter, err := gzip.NewWriterLevel(backupFile, level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	if err := addToArchive(tarWriter, snapshotPath); err != nil {
		return fmt.Errorf("failed to add files to archive: %w", err)
	}

	// Close writers to ensure all data is flushed
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	if err := backupFile.Close(); err != nil {
		return fmt.Errorf("failed to close backup file: %w", err)
	}
	return nil
}

// VerifyBackup compares an archive against its .sha256 sidecar
func VerifyBackup(backupPath string) error {
	data, err := os.ReadFile(backupPath + checksumSuffix)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}
	want, _, _ := strings.Cut(strings.TrimSpace(string(data)), " ")
	got, err := calculateFileChecksum(backupPath)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if want != got {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", filepath.Base(backupPath), want, got)
	}
	return nil
}

// RestoreBackup extracts a backup archive into targetDir. The restored
// database keeps the name it had in the archive.
func RestoreBackup(backupPath, targetDir string, verify bool) error {
	if verify {
		if err := VerifyBackup(backupPath); err != nil {
			return err
		}
	}

	backupFile, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer backupFile.Close()

	gzipReader, err := gzip.NewReader(backupFile)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	root, err := filepath.Abs(targetDir)
	if err != nil {
		return err
	}

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		target := filepath.Join(root, header.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the target directory", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
			}
			if err := extractFile(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			log.Printf("[WARN] unsupported file type %d for %s", header.Typeflag, header.Name)
		}
	}

	return nil
}

func extractFile(target string, r io.Reader, mode os.FileMode) error {
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return outFile.Close()
}

// ListBackups lists all available backups, newest first
func ListBackups(backupDir string) ([]BackupInfo, error) {
	var backups []BackupInfo

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil // No backups directory yet
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tar.gz") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backupPath := filepath.Join(backupDir, entry.Name())
		checksum, _ := calculateFileChecksum(backupPath)

		dbType := "unknown"
		if strings.Contains(entry.Name(), "_pebble_") {
			dbType = "pebble"
		} else if strings.Contains(entry.Name(), "_sqlite_") {
			dbType = "sqlite"
		}

		backups = append(backups, BackupInfo{
			Filename:     entry.Name(),
			Path:         backupPath,
			Size:         info.Size(),
			Checksum:     checksum,
			DatabaseType: dbType,
			CreatedAt:    info.ModTime(),
		})
	}

	// File names carry the timestamp, so they order by age
	slices.SortFunc(backups, func(a, b BackupInfo) int {
		return strings.Compare(b.Filename, a.Filename)
	})
	return backups, nil
}

// DeleteBackup deletes a backup and its checksum sidecar
func DeleteBackup(backupPath string) error {
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	if err := os.Remove(backupPath + checksumSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checksum file: %w", err)
	}
	return nil
}

// addToArchive adds a Pebble directory or a SQLite file to a tar archive
func addToArchive(tarWriter *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat database path: %w", err)
	}

	if !info.IsDir() {
		return addFile(tarWriter, path, info, filepath.Base(path))
	}

	return filepath.Walk(path, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(filepath.Dir(path), file)
		if err != nil {
			return err
		}
		if fi.IsDir() {
			header, err := tar.FileInfoHeader(fi, "")
			if err != nil {
				return err
			}
			header.Name = filepath.ToSlash(relPath) + "/"
			return tarWriter.WriteHeader(header)
		}
		return addFile(tarWriter, file, fi, relPath)
	})
}

func addFile(tarWriter *tar.Writer, path string, fi os.FileInfo, name string) error {
	header, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(name)

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tarWriter, f)
	return err
}

// calculateFileChecksum calculates SHA256 checksum of a file
func calculateFileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// cleanupOldBackups removes the oldest backups beyond maxBackups. A
// maxBackups of 0 or less keeps everything.
func cleanupOldBackups(backupDir string, maxBackups int) error {
	if maxBackups <= 0 {
		return nil
	}
	backups, err := ListBackups(backupDir)
	if err != nil {
		return err
	}

	for _, old := range backups[min(maxBackups, len(backups)):] {
		if err := DeleteBackup(old.Path); err != nil {
			log.Printf("[WARN] failed to delete old backup %s: %v", old.Filename, err)
		}
	}

	return nil
}
