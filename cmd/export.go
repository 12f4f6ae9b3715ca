/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The export command writes dashboard reports without starting the server.
//
// Reports:
//   - summary: the Metric/Value status report CSV.
//   - leads: the full lead table CSV, as persisted.
//   - analytics: the analytics snapshot as indented JSON.
//
// Example usage:
//
//	leadtrackd export summary
//	leadtrackd export analytics --out=analytics_summary.json
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export (summary|leads|analytics)",
	Short: "Write a dashboard report to a file or stdout",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(cmd, args[0]); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	},
}

// runExport is the main function for the export command.
func runExport(cmd *cobra.Command, report string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repo, err := openRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open lead repository: %w", err)
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to read --out: %w", err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("failed to close %s: %v", out, err)
			}
		}()
		w = f
	}

	analytics := core.NewAnalytics(repo, cfg.ActivityWindowDays)

	switch report {
	case "summary":
		return core.WriteSummaryCSV(w, analytics.SummaryReport())
	case "leads":
		return store.WriteLeads(w, repo.Leads())
	case "analytics":
		return core.WriteAnalyticsJSON(w, analytics.Snapshot())
	default:
		return fmt.Errorf("unknown report %q (expected summary, leads, or analytics)", report)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("out", "o", "", "Write the report to this file instead of stdout")
}
