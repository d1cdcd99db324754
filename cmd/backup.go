// file: cmd/backup.go
// version: 1.0.0
// guid: 7c2e4a91-5b3f-4d86-a0e7-1f9b6c3d8e25

package cmd

import (
	"fmt"
	"io"

	"github.com/jdfalk/petmatch/internal/backup"
	"github.com/jdfalk/petmatch/internal/config"
	"github.com/jdfalk/petmatch/internal/database"
	"github.com/spf13/cobra"
)

var (
	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore database backups",
	}

	backupCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Snapshot the database into a compressed archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openStore(); err != nil {
				return err
			}
			defer database.CloseStore()
			return runBackupCreate(cmd.OutOrStdout(), database.GlobalStore, backupConfigFromFlags(cmd))
		},
	}

	backupListCmd = &cobra.Command{
		Use:   "list",
		Short: "List available backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupList(cmd.OutOrStdout(), backupConfigFromFlags(cmd).BackupDir)
		},
	}

	backupRestoreCmd = &cobra.Command{
		Use:   "restore <archive> <target-dir>",
		Short: "Extract a backup archive after verifying its checksum",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			skipVerify, _ := cmd.Flags().GetBool("skip-verify")
			if err := backup.RestoreBackup(args[0], args[1], !skipVerify); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s into %s\n", args[0], args[1])
			return nil
		},
	}
)

func init() {
	backupCmd.PersistentFlags().String("dir", "backups", "directory holding backup archives")
	backupCreateCmd.Flags().Int("keep", 10, "number of archives to keep (0 keeps all)")
	backupRestoreCmd.Flags().Bool("skip-verify", false, "restore without checking the .sha256 file")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

func backupConfigFromFlags(cmd *cobra.Command) backup.BackupConfig {
	cfg := backup.DefaultBackupConfig()
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.BackupDir = dir
	}
	if cmd.Flags().Lookup("keep") != nil {
		cfg.MaxBackups, _ = cmd.Flags().GetInt("keep")
	}
	return cfg
}

func runBackupCreate(out io.Writer, store database.Store, cfg backup.BackupConfig) error {
	snap, ok := store.(database.Snapshotter)
	if !ok {
		return fmt.Errorf("database type %s does not support snapshots", config.AppConfig.DatabaseType)
	}
	info, err := backup.CreateBackup(snap, config.AppConfig.DatabaseType, cfg)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Fprintf(out, "Created %s (%d bytes, sha256 %s)\n", info.Path, info.Size, info.Checksum)
	return nil
}

func runBackupList(out io.Writer, dir string) error {
	backups, err := backup.ListBackups(dir)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintf(out, "No backups in %s\n", dir)
		return nil
	}
	for _, b := range backups {
		fmt.Fprintf(out, "%s  %-7s %10d bytes  %s\n",
			b.CreatedAt.Format("2006-01-02 15:04:05"), b.DatabaseType, b.Size, b.Filename)
	}
	return nil
}
