// Package loader downloads a fixed set of named sources, retrying failed
// ones in rounds until everything is in or the attempt budget runs out.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jscompat/jscompat/pkg/events"
	"github.com/jscompat/jscompat/pkg/whttp"
)

const (
	// MaxAttempts bounds the number of load rounds. With at least one
	// source still missing after this many rounds the load is terminal.
	MaxAttempts = 5

	defaultConcurrency = 4
)

// ErrTooManyAttempts is returned when the retry budget is exhausted with at
// least one source still missing.
var ErrTooManyAttempts = errors.New("too many download attempts")

// Validate lets the caller reject a fetched payload (wrong shape, not JSON).
// A validation failure empties the slot again and is consumed by the normal
// retry accounting, exactly like a transport failure.
type Validate func(id string, payload *whttp.Payload) error

// Loader drives repeated whttp fetches for a set of named sources.
type Loader struct {
	Client      *whttp.Client
	Bus         *events.Bus
	Concurrency int
	Validate    Validate
}

func New(client *whttp.Client, bus *events.Bus) *Loader {
	if client == nil {
		client = whttp.NewClient(0)
	}
	return &Loader{Client: client, Bus: bus, Concurrency: defaultConcurrency}
}

// LoadData fetches every source (id -> URL) and returns the payloads keyed
// by id. Sources that already succeeded are never re-fetched in later
// rounds. After MaxAttempts rounds with missing sources it publishes
// events.TopicTooManyAttempts and returns ErrTooManyAttempts.
func (l *Loader) LoadData(ctx context.Context, sources map[string]string) (map[string]*whttp.Payload, error) {
	slots := make(map[string]*whttp.Payload, len(sources))

	for attempts := 1; attempts <= MaxAttempts; attempts++ {
		if err := l.loadRound(ctx, sources, slots, attempts); err != nil {
			return nil, err
		}
		if len(slots) == len(sources) {
			return slots, nil
		}
	}

	l.Bus.Publish(events.Event{
		Topic:   events.TopicTooManyAttempts,
		Level:   1,
		Message: fmt.Sprintf("Giving up on downloading compatibility data after %d attempts", MaxAttempts),
	})
	return nil, ErrTooManyAttempts
}

// loadRound fires one concurrent request per still-empty slot and waits for
// all of them to be accounted for.
func (l *Loader) loadRound(ctx context.Context, sources map[string]string, slots map[string]*whttp.Payload, attempt int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var mu sync.Mutex
	g := &errgroup.Group{}
	concurrency := l.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	g.SetLimit(concurrency)

	for id, url := range sources {
		if _, filled := slots[id]; filled {
			continue
		}
		id, url := id, url

		l.Bus.Info(fmt.Sprintf("Downloading compatibility data from %q (attempt %d).", url, attempt))

		g.Go(func() error {
			payload, err := l.Client.Fetch(ctx, url)
			if err == nil && l.Validate != nil {
				err = l.Validate(id, payload)
			}
			if err != nil {
				// The slot stays empty; the next round picks it up.
				l.Bus.Publish(events.Event{
					Topic:   events.TopicDownloadFailed,
					Level:   1,
					Message: fmt.Sprintf("Unable to download compatibility data from (%s)", url),
					Err:     err,
				})
				return nil
			}

			l.Bus.Info(fmt.Sprintf("Compatibility data from %q downloaded.", url))
			mu.Lock()
			slots[id] = payload
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}
