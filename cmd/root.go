/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/seckatie/leadtrackd/internal/config"
	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
	"github.com/seckatie/leadtrackd/internal/core/web"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leadtrackd",
	Short: "A local dashboard server for triaging scraped sales leads",
	Long: `leadtrackd serves a local dashboard over a CSV lead table.

Scraped Reddit leads are imported from CSV, merged with the statuses and
notes you have already recorded, and persisted back to a single progress
file. The server exposes the lead table, pipeline analytics, and report
downloads over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		repo, err := openRepository(cfg)
		if err != nil {
			log.Fatalf("Failed to open lead repository: %v", err)
		}

		// Log repository mutations to the server log.
		registerLogListeners(repo)

		// Command line flags win over the config file.
		if cmd.Flags().Changed("host") {
			host, err := cmd.Flags().GetString("host")
			if err != nil {
				log.Fatalf("Failed to get host: %v", err)
			}
			cfg.Server.Host = host
		}
		if cmd.Flags().Changed("port") {
			port, err := cmd.Flags().GetInt("port")
			if err != nil {
				log.Fatalf("Failed to get port: %v", err)
			}
			cfg.Server.Port = port
		}

		analytics := core.NewAnalytics(repo, cfg.ActivityWindowDays)

		// Start the web server
		web.StartServer(cfg.Addr(), repo, analytics, cfg.ImportFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "Path to the leadtrackd config file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Directory holding the progress file (overrides config)")
	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().String("host", "localhost", "Host to listen on")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("data-dir") {
		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			return nil, fmt.Errorf("failed to read --data-dir: %w", err)
		}
		cfg.DataDir = dataDir
	}

	return cfg, nil
}

func openRepository(cfg *config.Config) (*store.Repository, error) {
	repo, err := store.NewRepository(store.NewStore(cfg.DataDir))
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded %d lead(s) from %s", repo.Len(), cfg.DataDir)

	return repo, nil
}

func registerLogListeners(repo *store.Repository) {
	repo.RegisterEventListener(store.OnLeadStatusChangedEvent, func(event store.Event) error {
		ev := event.(store.LeadStatusChangedEvent)
		log.Printf("Lead status changed: %s -> %s for %s", ev.Previous, ev.Lead.Status, ev.Lead.URL)
		return nil
	})

	repo.RegisterEventListener(store.OnBulkStatusAppliedEvent, func(event store.Event) error {
		ev := event.(store.BulkStatusAppliedEvent)
		log.Printf("Bulk status %s applied to %d lead(s)", ev.Status, len(ev.URLs))
		return nil
	})

	repo.RegisterEventListener(store.OnTableReplacedEvent, func(event store.Event) error {
		ev := event.(store.TableReplacedEvent)
		log.Printf("Lead table replaced with %d lead(s)", ev.Count)
		return nil
	})
}
