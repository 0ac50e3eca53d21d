package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mykolas-perevicius/edplay/internal/config"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

var (
	logger *zap.Logger
	conf   *config.Config

	flagDB      string
	flagConfig  string
	flagCatalog string
	flagBase    string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "edplay",
	Short: "Progress companion for the Education Playground course",
	Long: `edplay keeps your Education Playground progress in a local store.

It tracks completed lessons and guided learning paths, runs the inline code
exercises from lesson pages, and exports analytics.

Run without arguments to open the progress dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			logger = zap.NewNop()
			return nil
		}

		var err error
		conf, err = loadConfig()
		if err != nil {
			return err
		}

		// The dashboard owns the terminal, so it logs nowhere.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		if conf.Verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDB, "db", "", "Path to SQLite database file (overrides EDPLAY_DB env var)")
	pf.StringVar(&flagConfig, "config", "", "Path to config file (default $XDG_CONFIG_HOME/edplay/config.yaml)")
	pf.StringVar(&flagCatalog, "catalog", "", "Path to a guided path catalog YAML file")
	pf.StringVar(&flagBase, "base", "", "Site base path used to normalize lesson URLs")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(visitCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file and environment, then applies flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagDB != "" {
		cfg.DB = flagDB
	}
	if flagCatalog != "" {
		cfg.Catalog = flagCatalog
	}
	if flagBase != "" {
		cfg.Site.Base = flagBase
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or EDPLAY_DB env var, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
