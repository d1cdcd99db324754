// file: cmd/commands.go
// version: 1.0.0
// guid: 4e1b7c2a-9d03-4f58-b6a1-2c8e5d7f0a39

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jdfalk/petmatch/internal/config"
	"github.com/jdfalk/petmatch/internal/database"
	"github.com/jdfalk/petmatch/internal/models"
	"github.com/jdfalk/petmatch/internal/server"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// matchCmd scores one report against a file of references without touching the database
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a report against a list of reference reports",
	Long: `Score a single report against a list of references and print every
reference scoring 60 or more, best first. Both files may be YAML or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reportPath, _ := cmd.Flags().GetString("report")
		refsPath, _ := cmd.Flags().GetString("refs")
		asJSON, _ := cmd.Flags().GetBool("json")
		return runMatch(cmd.OutOrStdout(), reportPath, refsPath, asJSON)
	},
}

// importCmd submits every report in a file through the normal submission flow
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import lost and found reports from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		if err := openStore(); err != nil {
			return err
		}
		defer database.CloseStore()
		return runImport(cmd.Context(), cmd.OutOrStdout(), database.GlobalStore, args[0], quiet)
	},
}

// listCmd prints stored reports
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		kind, err := parseKindFilter(kindFlag)
		if err != nil {
			return err
		}
		if err := openStore(); err != nil {
			return err
		}
		defer database.CloseStore()
		return runList(cmd.OutOrStdout(), database.GlobalStore, kind, limit)
	},
}

func init() {
	matchCmd.Flags().String("report", "", "file holding the report to score")
	matchCmd.Flags().String("refs", "", "file holding the list of reference reports")
	matchCmd.Flags().Bool("json", false, "print results as JSON")
	_ = matchCmd.MarkFlagRequired("report")
	_ = matchCmd.MarkFlagRequired("refs")

	importCmd.Flags().Bool("quiet", false, "do not draw a progress bar")

	listCmd.Flags().String("kind", "all", "report kind: all, lost or found")
	listCmd.Flags().Int("limit", 0, "maximum number of reports to print (0 for all)")
}

// parseKindFilter maps "all" or "" to no filter
func parseKindFilter(s string) (models.ReportKind, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	kind, err := models.ParseReportKind(s)
	if err != nil {
		return "", fmt.Errorf("kind must be one of: all, lost, found")
	}
	return kind, nil
}

// readYAMLFile decodes a YAML or JSON file into out
func readYAMLFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func runMatch(out io.Writer, reportPath, refsPath string, asJSON bool) error {
	var report models.ReportedAnimal
	if err := readYAMLFile(reportPath, &report); err != nil {
		return err
	}
	var refs []models.ReportedAnimal
	if err := readYAMLFile(refsPath, &refs); err != nil {
		return err
	}

	results := server.MatchStateless(report, refs)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintf(out, "No matches among %d references.\n", len(refs))
		return nil
	}
	fmt.Fprintf(out, "Found %d potential match(es) among %d references:\n", len(results), len(refs))
	for i, m := range results {
		fmt.Fprintf(out, "%2d. #%d %s / %s, %s (Score: %.1f%%)\n",
			i+1, m.Index, m.Candidate.Species, m.Candidate.Breed, m.Candidate.Location, m.Score)
	}
	return nil
}

func runImport(ctx context.Context, out io.Writer, store database.Store, path string, quiet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reports, err := server.LoadReportsFile(path)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found in file.")
		return nil
	}

	svc := server.NewReportService(store, nil, config.AppConfig.MatchCacheTTL)

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(len(reports),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("Importing reports"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	items := svc.SubmitBatch(ctx, reports, func(done int) {
		if bar != nil {
			_ = bar.Set(done)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	result := server.NewBulkResponse(items)
	fmt.Fprintf(out, "Imported %d of %d reports (%d failed)\n", result.Succeeded, result.Total, result.Failed)
	for i, item := range items {
		switch {
		case item.Status == "failed":
			fmt.Fprintf(out, "  #%d failed: %s\n", i+1, item.Error)
		case item.Matches > 0:
			fmt.Fprintf(out, "  #%d %s: %d potential match(es)\n", i+1, item.ID, item.Matches)
		}
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d reports failed to import", result.Failed)
	}
	return nil
}

func runList(out io.Writer, store database.Store, kind models.ReportKind, limit int) error {
	reports, err := store.ListReports(kind, limit, 0)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME\tSPECIES\tBREED\tAGE\tLOCATION\tDATE")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.DisplayName(), r.Species, r.Breed, r.Age, r.Location, r.Date)
	}
	return tw.Flush()
}
