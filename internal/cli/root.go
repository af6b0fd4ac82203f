package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hellybrine/terraforms/internal/config"
	"github.com/hellybrine/terraforms/pkg/cloud"
	"github.com/hellybrine/terraforms/pkg/history"
	"github.com/hellybrine/terraforms/pkg/notify"
	"github.com/hellybrine/terraforms/pkg/policy"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Cloud cost sentinel - threshold alerts and emergency resource cleanup",
	Long: `Sentinel watches cloud spend against alert and critical thresholds and
pushes tiered ntfy notifications. At the critical tier it can, behind an
explicit safety gate, pause compute and databases and delete idle gateways.
It also serves the image-resize HTTP endpoint.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.sentinel/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initHistory opens the run-history database.
func initHistory(cfg *config.Config) (history.Store, error) {
	return history.NewSQLite(cfg.Storage.Path)
}

// initNotifier creates the ntfy notifier from config.
func initNotifier(cfg *config.Config) notify.Notifier {
	return notify.NewNtfyNotifier(cfg.Ntfy.Server, cfg.Ntfy.Topic, cfg.Ntfy.Token)
}

// loadPlan returns the configured cleanup plan or the built-in default.
func loadPlan(cfg *config.Config) (policy.Plan, error) {
	if cfg.Nuke.PlanFile == "" {
		return policy.DefaultPlan(), nil
	}
	plan, err := policy.LoadPlan(cfg.Nuke.PlanFile)
	if err != nil {
		return policy.Plan{}, fmt.Errorf("load cleanup plan: %w", err)
	}
	return plan, nil
}

// initEngine wires a fully configured policy engine over the AWS clients.
func initEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*policy.Engine, history.Store, *cloud.Clients, error) {
	clients, err := cloud.NewClients(ctx, cfg.AWS.Region, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := initHistory(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	plan, err := loadPlan(cfg)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	engine := policy.NewEngine(policy.EngineConfig{
		Costs:     clients.Costs,
		Inventory: clients.Inventory,
		Executor:  clients.Actions,
		Notifier:  initNotifier(cfg),
		History:   store,
		Thresholds: policy.Thresholds{
			Alert:    cfg.Thresholds.Alert,
			Critical: cfg.Thresholds.Critical,
		},
		Gate: policy.SafetyGate{
			AutoActionEnabled: cfg.Nuke.Enabled,
			DryRun:            cfg.Nuke.DryRun,
		},
		Plan:             plan,
		NotifyWhenNormal: cfg.NotifyWhenNormal,
		Logger:           logger,
	})

	return engine, store, clients, nil
}
