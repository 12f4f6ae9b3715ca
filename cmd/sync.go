/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The sync command merges a scraped CSV export into the lead table.
//
// Features:
//   - Import from the file configured as importFile in leadtrackd.yaml.
//   - Import from any CSV with --file.
//   - Statuses and notes already recorded survive re-imports; leads missing
//     from the import are dropped.
//
// Example usage:
//
//	leadtrackd sync
//	leadtrackd sync --file=scraped/leads_2025-03-07.csv
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge a scraped CSV export into the lead table",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSync(cmd); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
	},
}

// runSync is the main function for the sync command.
func runSync(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repo, err := openRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open lead repository: %w", err)
	}

	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to read --file: %w", err)
	}
	if file == "" {
		file = cfg.ImportFile
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close import file: %v", err)
		}
	}()

	if _, err := core.Sync(repo, f); err != nil {
		return err
	}

	log.Println("Sync finished successfully.")
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringP("file", "f", "", "CSV file to import (defaults to importFile from the config)")
}
