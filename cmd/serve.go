package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jscompat/jscompat/internal/server"
	"github.com/jscompat/jscompat/pkg/analyzer"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jscompat HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		live, _ := cmd.Flags().GetBool("live")

		db, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		bus := newBus()
		store, err := loadStore(context.Background(), db, bus, live)
		if err != nil {
			return err
		}

		srv := server.New(
			store,
			analyzer.New(store, bus),
			db,
			viper.GetString("server.username"),
			viper.GetString("server.password"),
		)
		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Bool("live", false, "Download fresh compatibility data instead of using the cache")
}
