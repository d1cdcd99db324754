// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/pebble/v2"
	"github.com/jdfalk/petmatch/internal/config"
	"github.com/jdfalk/petmatch/internal/database"
	"github.com/jdfalk/petmatch/internal/models"
	"github.com/jdfalk/petmatch/internal/server"
	"github.com/spf13/cobra"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging and cleanup helpers",
		Long:  "Diagnostic utilities for inspecting and repairing the report database.",
	}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup-invalid",
		Short: "Remove stored reports that no longer pass validation",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			closer, err := ensureDiagnosticsStore()
			if err != nil {
				return err
			}
			defer closer()
			return runCleanupInvalidReports(cmd.OutOrStdout(), os.Stdin, database.GlobalStore, force, dryRun)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored report records",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			raw, _ := cmd.Flags().GetBool("raw")
			return runDiagnosticsQuery(cmd.OutOrStdout(), limit, prefix, raw)
		},
	}
)

func init() {
	cleanupCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	cleanupCmd.Flags().Bool("dry-run", false, "List invalid records without deleting")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")
	queryCmd.Flags().String("prefix", "report:", "Key prefix to inspect when --raw is set")
	queryCmd.Flags().Bool("raw", false, "Show raw Pebble key/value data (Pebble only)")

	diagnosticsCmd.AddCommand(cleanupCmd)
	diagnosticsCmd.AddCommand(queryCmd)
}

func ensureDiagnosticsStore() (func(), error) {
	if err := openStore(); err != nil {
		return nil, err
	}

	cleanup := func() {
		database.CloseStore()
	}
	return cleanup, nil
}

// invalidReport pairs a stored report with the reason it fails validation
type invalidReport struct {
	report models.Report
	reason string
}

func findInvalidReports(store database.Store) ([]invalidReport, error) {
	const batchSize = 5000
	offset := 0
	invalid := make([]invalidReport, 0)

	for {
		reports, err := store.ListReports("", batchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reports: %w", err)
		}
		for i := range reports {
			if err := server.ValidateReport(&reports[i]); err != nil {
				invalid = append(invalid, invalidReport{report: reports[i], reason: err.Error()})
			}
		}
		offset += len(reports)
		if len(reports) < batchSize {
			break
		}
	}
	return invalid, nil
}

func runCleanupInvalidReports(out io.Writer, in io.Reader, store database.Store, force, dryRun bool) error {
	fmt.Fprintf(out, "Inspecting reports in %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

	invalid, err := findInvalidReports(store)
	if err != nil {
		return err
	}

	if len(invalid) == 0 {
		fmt.Fprintln(out, "No invalid report records detected.")
		return nil
	}

	fmt.Fprintf(out, "Found %d invalid records:\n", len(invalid))
	for i, bad := range invalid {
		fmt.Fprintf(out, "%2d. ID: %s\n", i+1, bad.report.ID)
		fmt.Fprintf(out, "    Kind:   %s\n", bad.report.Kind)
		fmt.Fprintf(out, "    Name:   %s\n", bad.report.DisplayName())
		fmt.Fprintf(out, "    Reason: %s\n", bad.reason)
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run enabled; no deletions were performed.")
		return nil
	}

	if !force {
		confirmed, err := promptYesNo(out, in, fmt.Sprintf("Delete %d records", len(invalid)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted. No records deleted.")
			return nil
		}
	}

	deleted := 0
	for _, bad := range invalid {
		if err := store.DeleteReport(bad.report.ID); err != nil {
			fmt.Fprintf(out, "Failed to delete %s: %v\n", bad.report.ID, err)
			continue
		}
		deleted++
	}

	fmt.Fprintf(out, "Deleted %d invalid records.\n", deleted)
	return nil
}

func runDiagnosticsQuery(out io.Writer, limit int, prefix string, raw bool) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	if raw {
		if config.AppConfig.DatabaseType != "pebble" {
			return fmt.Errorf("raw inspection is only available for Pebble databases")
		}
		return runRawPebbleQuery(out, config.AppConfig.DatabasePath, limit, prefix)
	}

	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	return printReports(out, database.GlobalStore, limit)
}

func printReports(out io.Writer, store database.Store, limit int) error {
	reports, err := store.ListReports("", limit, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	for i, r := range reports {
		fmt.Fprintf(out, "%2d. ID: %s\n", i+1, r.ID)
		fmt.Fprintf(out, "    Kind: %s\n", r.Kind)
		fmt.Fprintf(out, "    Name: %s\n", r.DisplayName())
		fmt.Fprintf(out, "    Animal: %s / %s, age %s\n", r.Species, r.Breed, r.Age)
		fmt.Fprintf(out, "    Location: %s\n", r.Location)
		history, err := store.GetMatches(r.ID)
		if err == nil && len(history) > 0 {
			fmt.Fprintf(out, "    Matches at submission: %d\n", len(history))
		}
		fmt.Fprintln(out, "---")
	}

	return nil
}

func runRawPebbleQuery(out io.Writer, path string, limit int, prefix string) error {
	db, err := pebble.Open(path, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		fmt.Fprintf(out, "Key: %s\n", string(iter.Key()))
		val := iter.Value()
		fmt.Fprintf(out, "Value length: %d bytes\n", len(val))
		fmt.Fprintf(out, "Value preview: %s\n", truncateString(string(val), 500))
		fmt.Fprintln(out, "---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
	}

	return nil
}

func promptYesNo(out io.Writer, in io.Reader, action string) (bool, error) {
	fmt.Fprintf(out, "%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
