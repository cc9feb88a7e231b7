package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aretw0/sceneflow/internal/cli"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished transitions",
	Long:  `Lists the transitions recorded in the configured journal, newest first. Most useful with the file or redis journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		journal, closeJournal, err := cli.OpenJournal(cfg.Journal)
		if err != nil {
			return err
		}
		if closeJournal != nil {
			defer closeJournal()
		}

		limit, _ := cmd.Flags().GetInt("limit")
		jsonMode, _ := cmd.Flags().GetBool("json")

		recs, err := journal.List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("error listing history: %w", err)
		}

		if jsonMode {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}

		if len(recs) == 0 {
			fmt.Println("No transitions recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FINISHED\tID\tTARGET\tOUTCOME\tLOAD TIME\tERROR")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.FinishedAt.Format(time.RFC3339),
				r.ID,
				r.Target.String(),
				r.Outcome,
				r.LoadTime.Round(time.Millisecond),
				r.Error,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of transitions to list (0 for all)")
	historyCmd.Flags().Bool("json", false, "Print records as JSON")
}
