// Package main provides the pgraph CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/papergraph/internal/config"
	"github.com/matsen/papergraph/internal/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string

	// appLog carries diagnostics to stderr; user-facing output goes to stdout.
	appLog = logger.Nop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	appLog.Sync()
	if err != nil {
		// SilenceErrors is set, so cobra errors (bad flags, wrong arg counts) are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pgraph",
	Short: "Incremental knowledge graph of research papers",
	Long: `pgraph builds a knowledge graph of papers, authors, topics and keywords.

Papers come from hand-written entries, PDFs, arXiv, or Paperpile exports.
Each paper is analyzed for topics and keywords, stored as one line of
.papergraph/papers.jsonl, and replayed into a fresh in-memory graph on every
command. Collaboration and similarity edges are derived as papers arrive.

All commands output JSON by default; use --human for readable text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Diagnostic log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// setup loads .env and builds the diagnostic logger.
// Log mode comes from PGRAPH_LOG_MODE, then the global config, then "prod".
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	mode := os.Getenv(config.EnvLogMode)
	if mode == "" {
		if g, err := config.LoadGlobalConfig(); err == nil && g.LogMode != "" {
			mode = g.LogMode
		}
	}
	if mode == "" {
		mode = config.DefaultLogMode
	}

	log, err := logger.New(mode, logLevel)
	if err != nil {
		return err
	}
	appLog = log.With("cmd", cmd.Name())
	return nil
}

// getStartingDirectory returns the directory to start searching for a repository.
// Checks global config library_path first, then current working directory.
func getStartingDirectory() string {
	if root, err := config.ValidateLibraryPath(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	} else if root != "" {
		return root
	}

	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	return cwd
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	repoRoot, err := config.FindRepository(getStartingDirectory())
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		exitWithError(ExitConfigError, "%v", err)
	}
	return repoRoot
}

// mustLoadConfig loads configuration with environment overrides, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}
