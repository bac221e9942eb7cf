// Package cli provides the command-line interface for circlemap.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/circlemap/internal/client"
	"github.com/raphaelgruber/circlemap/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	jsonOut    bool
	serverURL  string
	configPath string
	vocabPath  string

	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "circlemap",
	Short: "Map the people in a WhatsApp group chat",
	Long: `Circlemap reads a WhatsApp group export and maps who is in it: member
profiles, the interaction graph, network roles and meetup suggestions.

Overlays (contact notes, manual edits or LLM enrichment) deepen the profiles
so circlemap can score introductions and spot opportunities for you.

Analysis commands run locally on a chat file. Enrichment, overlays and user
contexts live on a circlemap-server (see --server).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadWithFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if vocabPath != "" {
			cfg.VocabularyFile = vocabPath
		}
		if !verbose && cfg.LogLevel < slog.LevelWarn {
			cfg.LogLevel = slog.LevelWarn
		}
		logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// apiClient returns a client for the configured server. --server wins over
// the config file and CIRCLEMAP_SERVER_URL.
func apiClient() *client.Client {
	if serverURL != "" {
		return client.New(serverURL)
	}
	return client.New(cfg.ServerURL)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "circlemap-server URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&vocabPath, "vocab", "", "vocabulary override file")

	// Local analysis
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(opportunitiesCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(normalizeCmd)

	// Server
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(statsCmd)
}
