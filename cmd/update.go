package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jscompat/jscompat/pkg/dataset"
	"github.com/jscompat/jscompat/pkg/datastore"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download fresh compatibility data into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		primaryURL := viper.GetString("data.primary_url")
		supplementalURL := viper.GetString("data.supplemental_url")

		db, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		primary, err := dataset.Download(ctx, primaryURL)
		if err != nil {
			return err
		}
		if _, err := dataset.ParsePrimary(primary); err != nil {
			return fmt.Errorf("%s: %w", primaryURL, err)
		}

		supplemental, err := dataset.Download(ctx, supplementalURL)
		if err != nil {
			return err
		}
		if _, err := dataset.ParseSupplemental(supplemental); err != nil {
			return fmt.Errorf("%s: %w", supplementalURL, err)
		}

		if err := db.PutDataset(ctx, datastore.SourcePrimary, primaryURL, primary); err != nil {
			return err
		}
		if err := db.PutDataset(ctx, datastore.SourceSupplemental, supplementalURL, supplemental); err != nil {
			return err
		}

		store := datastore.New(nil, nil, "", "")
		if err := store.LoadFrom(primary, supplemental); err != nil {
			return err
		}
		fmt.Printf("Cache updated: %d detectable features\n", store.FeatureCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
