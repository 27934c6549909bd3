package datastore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jscompat/jscompat/pkg/events"
	"github.com/jscompat/jscompat/pkg/loader"
)

func fixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/primary.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(primaryFixture))
	})
	mux.HandleFunc("/supplemental.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(supplementalFixture))
	})
	return httptest.NewServer(mux)
}

func TestLoadDataEndToEnd(t *testing.T) {
	server := fixtureServer()
	defer server.Close()

	bus := events.NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	s := New(loader.New(nil, bus), bus, server.URL+"/primary.json", server.URL+"/supplemental.json")

	if s.IsReady() {
		t.Fatal("store must not be ready before LoadData")
	}
	if _, err := s.Data(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	if err := s.LoadData(context.Background()); err != nil {
		t.Fatalf("LoadData failed: %v", err)
	}
	if !s.IsReady() {
		t.Fatal("store must be ready after a successful load")
	}

	features, err := s.Data()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Keys are the intersection of the two datasets' keys with the rule
	// table, restricted to allowed categories.
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	if s.FeatureCount() != 2 {
		t.Fatalf("expected feature count 2, got %d", s.FeatureCount())
	}

	agents, err := s.Agents()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agents["chrome"].Title != "Chrome" {
		t.Fatalf("unexpected agents: %+v", agents)
	}

	var completed bool
	for len(ch) > 0 {
		if ev := <-ch; ev.Topic == events.TopicDownloadCompleted {
			completed = true
		}
	}
	if !completed {
		t.Fatal("expected a download-completed event")
	}
}

func TestLoadDataTooManyAttempts(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	bus := events.NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	s := New(loader.New(nil, bus), bus, server.URL+"/a.json", server.URL+"/b.json")
	err := s.LoadData(context.Background())
	if !errors.Is(err, loader.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if s.IsReady() {
		t.Fatal("store must stay not-ready after exhausted retries")
	}
	if hits != 2*loader.MaxAttempts {
		t.Fatalf("expected %d requests, got %d", 2*loader.MaxAttempts, hits)
	}

	var terminal bool
	for len(ch) > 0 {
		if ev := <-ch; ev.Topic == events.TopicTooManyAttempts {
			terminal = true
		}
	}
	if !terminal {
		t.Fatal("expected a too-many-attempts event")
	}
}

func TestLoadDataRejectsWrongShape(t *testing.T) {
	// Valid JSON, wrong shape: treated as a fetch failure and retried.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	s := New(nil, nil, server.URL+"/a.json", server.URL+"/b.json")
	err := s.LoadData(context.Background())
	if !errors.Is(err, loader.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if s.IsReady() {
		t.Fatal("store must stay not-ready on shape mismatch")
	}
}

func TestReloadReplacesState(t *testing.T) {
	server := fixtureServer()
	defer server.Close()

	s := New(nil, nil, server.URL+"/primary.json", server.URL+"/supplemental.json")
	if err := s.LoadData(context.Background()); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if err := s.LoadData(context.Background()); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if !s.IsReady() || s.FeatureCount() != 2 {
		t.Fatalf("unexpected state after reload: ready=%v count=%d", s.IsReady(), s.FeatureCount())
	}
}
