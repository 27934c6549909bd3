package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jscompat/jscompat/internal/utils"
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the features jscompat can detect",
	RunE: func(cmd *cobra.Command, args []string) error {
		live, _ := cmd.Flags().GetBool("live")
		ctx := context.Background()

		db, err := openCache(cmd)
		if err != nil {
			utils.Log.Warn("Cache unavailable: ", err)
			db = nil
		}
		defer db.Close()

		store, err := loadStore(ctx, db, newBus(), live)
		if err != nil {
			return err
		}
		features, err := store.Data()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(features))
		for key := range features {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tTITLE\tPATTERNS\t")
		for _, key := range keys {
			f := features[key]
			fmt.Fprintf(w, "%s\t%s\t%d\t\n", key, f.Title, len(f.Patterns))
		}
		w.Flush()

		fmt.Printf("\n%d detectable features\n", len(keys))
		return nil
	},
}

// agentsCmd represents the agents command
var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the browsers present in the compatibility data",
	RunE: func(cmd *cobra.Command, args []string) error {
		live, _ := cmd.Flags().GetBool("live")
		ctx := context.Background()

		db, err := openCache(cmd)
		if err != nil {
			utils.Log.Warn("Cache unavailable: ", err)
			db = nil
		}
		defer db.Close()

		store, err := loadStore(ctx, db, newBus(), live)
		if err != nil {
			return err
		}
		agents, err := store.Agents()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(agents))
		for key := range agents {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			return strings.ToLower(agents[keys[i]].Title) < strings.ToLower(agents[keys[j]].Title)
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CODE\tBROWSER\tTYPE\tVERSIONS\t")
		for _, key := range keys {
			a := agents[key]
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t\n", key, a.Title, a.Type, len(a.Versions))
		}
		w.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(agentsCmd)
	featuresCmd.Flags().Bool("live", false, "Download fresh compatibility data instead of using the cache")
	agentsCmd.Flags().Bool("live", false, "Download fresh compatibility data instead of using the cache")
}
