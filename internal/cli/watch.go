package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run one cost evaluation and print the report",
	Long: `Fetch the current billing-period spend, classify it against the alert and
critical thresholds, send the tier-appropriate notifications, and - when the
safety gate allows - run the cleanup sequence. Prints the invocation report
as JSON.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	engine, store, _, err := initEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := engine.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("evaluate costs: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
