// Package datastore owns the normalized compatibility snapshot: it drives
// the loader, reconciles the two datasets into canonical per-feature,
// per-agent support timelines and exposes ready-gated read accessors.
// Everything it hands out is read-only after the ready transition; a new
// LoadData replaces the whole state wholesale.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/jscompat/jscompat/pkg/dataset"
	"github.com/jscompat/jscompat/pkg/events"
	"github.com/jscompat/jscompat/pkg/loader"
	"github.com/jscompat/jscompat/pkg/rules"
	"github.com/jscompat/jscompat/pkg/whttp"
)

// Source slot names for the two datasets.
const (
	SourcePrimary      = "primary"
	SourceSupplemental = "supplemental"
)

// ErrNotReady is returned by accessors before a load has completed.
var ErrNotReady = errors.New("compatibility data is not loaded yet")

// Store is the process-wide normalized snapshot. Construct one with New and
// share it; all accessors are safe for concurrent use.
type Store struct {
	loader  *loader.Loader
	bus     *events.Bus
	sources map[string]string
	rules   map[string][]*regexp.Regexp

	mu       sync.RWMutex
	agents   map[string]Agent
	features map[string]Feature
	ready    bool
}

// New builds a store that loads the primary dataset from primaryURL and the
// supplemental dataset from supplementalURL. A nil loader gets a default
// one; a nil bus disables notifications.
func New(l *loader.Loader, bus *events.Bus, primaryURL, supplementalURL string) *Store {
	if l == nil {
		l = loader.New(whttp.NewClient(0), bus)
	}
	s := &Store{
		loader: l,
		bus:    bus,
		sources: map[string]string{
			SourcePrimary:      primaryURL,
			SourceSupplemental: supplementalURL,
		},
		rules: rules.Table,
	}
	// Payloads that are valid JSON but the wrong shape count as fetch
	// failures, so the loader's retry accounting covers them too.
	l.Validate = s.validatePayload
	return s
}

// LoadData downloads both datasets and swaps in a freshly normalized
// snapshot. Any previous state is discarded up front; on failure the store
// stays (or becomes) not ready and no partial data is ever visible.
func (s *Store) LoadData(ctx context.Context) error {
	s.mu.Lock()
	s.ready = false
	s.agents = nil
	s.features = nil
	s.mu.Unlock()

	payloads, err := s.loader.LoadData(ctx, s.sources)
	if err != nil {
		return err
	}

	primary, err := dataset.ParsePrimary(payloads[SourcePrimary].Body)
	if err != nil {
		return err
	}
	supplemental, err := dataset.ParseSupplemental(payloads[SourceSupplemental].Body)
	if err != nil {
		return err
	}

	// Raw payloads go out of scope here; only the normalized form is kept.
	s.install(primary, supplemental)
	return nil
}

// LoadFrom normalizes datasets already held in memory (local cache,
// fixtures) without touching the network.
func (s *Store) LoadFrom(primaryBody, supplementalBody []byte) error {
	primary, err := dataset.ParsePrimary(primaryBody)
	if err != nil {
		return err
	}
	supplemental, err := dataset.ParseSupplemental(supplementalBody)
	if err != nil {
		return err
	}
	s.install(primary, supplemental)
	return nil
}

func (s *Store) install(primary *dataset.Primary, supplemental *dataset.Supplemental) {
	agents, features := normalize(primary, supplemental, s.rules)

	s.mu.Lock()
	s.agents = agents
	s.features = features
	s.ready = true
	s.mu.Unlock()

	s.bus.Publish(events.Event{
		Topic:   events.TopicDownloadCompleted,
		Level:   9,
		Message: "Compatibility data successfully downloaded",
	})
}

// IsReady reports whether a snapshot is available.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Data returns the feature map. Callers must treat it as read-only.
func (s *Store) Data() (map[string]Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, ErrNotReady
	}
	return s.features, nil
}

// Agents returns the agent map. Callers must treat it as read-only.
func (s *Store) Agents() (map[string]Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, ErrNotReady
	}
	return s.agents, nil
}

// FeatureCount returns the number of detectable features in the snapshot,
// zero when not ready.
func (s *Store) FeatureCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features)
}

func (s *Store) validatePayload(id string, payload *whttp.Payload) error {
	if !payload.IsJSON {
		return fmt.Errorf("source %s did not return JSON", id)
	}
	switch id {
	case SourcePrimary:
		_, err := dataset.ParsePrimary(payload.Body)
		return err
	case SourceSupplemental:
		_, err := dataset.ParseSupplemental(payload.Body)
		return err
	default:
		return nil
	}
}
