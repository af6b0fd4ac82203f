package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past cost evaluations",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No evaluations recorded yet. Use 'sentinel watch' to run one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIMESTAMP\tTIER\tCOST\tFORECAST\tALERTED\tCLEANUP\n")
	for _, r := range runs {
		forecast := "-"
		if r.Forecast != nil {
			forecast = fmt.Sprintf("$%.2f", *r.Forecast)
		}
		cleanup := "-"
		if r.NukeTriggered {
			cleanup = r.NukeStatus
		}
		fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\t%t\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Tier, r.TotalCost, forecast, r.AlertSent, cleanup,
		)
	}
	w.Flush()

	return nil
}
