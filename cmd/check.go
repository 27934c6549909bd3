package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jscompat/jscompat/internal/utils"
	"github.com/jscompat/jscompat/pkg/analyzer"
	"github.com/jscompat/jscompat/pkg/report"
	"github.com/jscompat/jscompat/pkg/storage"
	"github.com/jscompat/jscompat/pkg/whttp"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Scan JavaScript code and report browser compatibility",
	Long: `Scan JavaScript code for feature usage and report which browser versions
support each detected feature. Reads from a file, from stdin when no file is
given, or from a web page with --url (inline scripts are extracted).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL, _ := cmd.Flags().GetString("url")
		live, _ := cmd.Flags().GetBool("live")
		browsers, _ := cmd.Flags().GetString("browsers")
		support, _ := cmd.Flags().GetString("support")
		noCollate, _ := cmd.Flags().GetBool("no-collate")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := context.Background()

		code, origin, pageTitle, err := readInput(ctx, args, pageURL)
		if err != nil {
			return err
		}
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("no JavaScript code to check")
		}

		db, err := openCache(cmd)
		if err != nil {
			utils.Log.Warn("Cache unavailable: ", err)
			db = nil
		}
		defer db.Close()

		bus := newBus()
		store, err := loadStore(ctx, db, bus, live)
		if err != nil {
			return err
		}

		matches, err := analyzer.New(store, bus).Check(code)
		if err != nil {
			return err
		}

		if db != nil {
			recorded := make([]storage.Match, 0, len(matches))
			for _, m := range matches {
				recorded = append(recorded, storage.Match{FeatureKey: m.Key, Title: m.Title})
			}
			if _, err := db.RecordScan(ctx, origin, recorded); err != nil {
				utils.Log.Warn("Could not record scan history: ", err)
			}
		}

		agents, err := store.Agents()
		if err != nil {
			return err
		}
		builder := report.NewBuilder(agents)
		builder.Collate = !noCollate

		rep := builder.Build(matches, report.ParseFilter(report.FilterBrowsers, browsers))
		rep.PageTitle = pageTitle
		if support != "" {
			report.ParseFilter(report.FilterSupport, support).Apply(rep)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		rep.WriteText(os.Stdout)
		return nil
	},
}

// readInput resolves the code to scan and a short origin label for the
// history record.
func readInput(ctx context.Context, args []string, pageURL string) (code, origin, pageTitle string, err error) {
	if pageURL != "" {
		payload, err := whttp.NewClient(0).Fetch(ctx, pageURL)
		if err != nil {
			return "", "", "", err
		}
		scripts, err := analyzer.ExtractScripts(string(payload.Body))
		if err != nil {
			return "", "", "", err
		}
		if len(scripts) == 0 {
			// Not an HTML page (or no inline scripts): treat the body as
			// JavaScript directly.
			return string(payload.Body), pageURL, payload.Title, nil
		}
		return strings.Join(scripts, "\n;\n"), pageURL, payload.Title, nil
	}

	if len(args) == 1 {
		name := args[0]
		if !analyzer.IsJavaScriptFile(name) {
			utils.Log.Warn(name, " does not look like a JavaScript file, scanning it anyway")
		}
		body, err := os.ReadFile(name)
		if err != nil {
			return "", "", "", err
		}
		return string(body), name, "", nil
	}

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", "", err
	}
	return string(body), "stdin", "", nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("url", "u", "", "Scan the inline scripts of a web page instead of a file")
	checkCmd.Flags().Bool("live", false, "Download fresh compatibility data instead of using the cache")
	checkCmd.Flags().StringP("browsers", "b", "", "Only show these browsers (comma-separated agent codes, e.g. chrome,firefox)")
	checkCmd.Flags().StringP("support", "s", "", "Only show these support classes (comma-separated codes: y,n,a,p,u)")
	checkCmd.Flags().Bool("no-collate", false, "Print one line per browser version instead of collated ranges")
	checkCmd.Flags().Bool("json", false, "Print the report as JSON")
}
