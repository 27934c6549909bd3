package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scans and what they detected",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		db, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListScans(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No scans recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tORIGIN\tFEATURES\t")
		for _, run := range runs {
			names := make([]string, 0, len(run.Matches))
			for _, m := range run.Matches {
				names = append(names, m.FeatureKey)
			}
			detected := strings.Join(names, ", ")
			if detected == "" {
				detected = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", run.RanAt.Format("2006-01-02 15:04"), run.Origin, detected)
		}
		w.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Maximum number of scans to show")
}
