package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/config"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/store"
)

var (
	configPath string

	// populated by PersistentPreRunE
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crycontext",
	Short: "Context-aware cry cause adjustment",
	Long: `crycontext re-weights a cry classifier's scores using the baby's recent
feeding, sleep, reminder and alert history, and explains every adjustment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, _, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (toml, yaml or json); default ./crycontext.* or ~/.config/babycare/")
	pf.String("db", "", "path to the SQLite database")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
}

// #region helpers
func openStore() (*store.Store, error) {
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", cfg.DBPath, err)
	}
	return st, nil
}

func newEngine() *adjust.Engine {
	return adjust.New(cfg.Engine, adjust.WithLogger(logger))
}

func newHarness() *eval.EvalHarness {
	return eval.NewEvalHarness(cfg.EvalConfig())
}

// #endregion helpers
