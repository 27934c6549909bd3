package cmd

import (
	"context"
	"errors"
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jscompat/jscompat/internal/utils"
	"github.com/jscompat/jscompat/pkg/datastore"
	"github.com/jscompat/jscompat/pkg/events"
	"github.com/jscompat/jscompat/pkg/storage"
)

func dbPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("dbpath")
	if path == "" {
		path = viper.GetString("dbpath")
	}
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		path = home + "/.jscompat.sqlite"
	}
	return path, nil
}

func openCache(cmd *cobra.Command) (*storage.DB, error) {
	path, err := dbPath(cmd)
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// newBus returns an event bus whose messages are forwarded to the logger,
// the CLI's stand-in for the notification area.
func newBus() *events.Bus {
	bus := events.NewBus()
	ch := bus.Subscribe()
	go func() {
		for ev := range ch {
			switch ev.Topic {
			case events.TopicError, events.TopicTooManyAttempts:
				utils.Log.Error(ev.Message)
			case events.TopicDownloadFailed:
				utils.Log.Warn(ev.Message)
			default:
				if ev.Message != "" {
					utils.Log.Debug(ev.Message)
				}
			}
		}
	}()
	return bus
}

// loadStore prepares a ready data store, from the local cache when both
// datasets are cached, from the network otherwise (or when live is set).
// Use 'jscompat update' to refresh the cache. db may be nil.
func loadStore(ctx context.Context, db *storage.DB, bus *events.Bus, live bool) (*datastore.Store, error) {
	primaryURL := viper.GetString("data.primary_url")
	supplementalURL := viper.GetString("data.supplemental_url")

	store := datastore.New(nil, bus, primaryURL, supplementalURL)

	if !live && db != nil {
		primary, _, perr := db.GetDataset(ctx, datastore.SourcePrimary)
		supplemental, _, serr := db.GetDataset(ctx, datastore.SourceSupplemental)
		if perr == nil && serr == nil {
			if err := store.LoadFrom(primary, supplemental); err != nil {
				return nil, fmt.Errorf("cached datasets are unusable, run 'jscompat update': %w", err)
			}
			return store, nil
		}
		if !errors.Is(perr, storage.ErrNoDataset) && perr != nil {
			return nil, perr
		}
		if !errors.Is(serr, storage.ErrNoDataset) && serr != nil {
			return nil, serr
		}
		utils.Log.Debug("Dataset cache is empty, loading from the network")
	}

	if err := store.LoadData(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
