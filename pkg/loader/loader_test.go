package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jscompat/jscompat/pkg/events"
	"github.com/jscompat/jscompat/pkg/whttp"
)

func jsonHandler(body string, hits *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestLoadDataAllSourcesSucceed(t *testing.T) {
	var hitsA, hitsB int64
	serverA := httptest.NewServer(jsonHandler(`{"a":1}`, &hitsA))
	defer serverA.Close()
	serverB := httptest.NewServer(jsonHandler(`{"b":2}`, &hitsB))
	defer serverB.Close()

	l := New(nil, nil)
	payloads, err := l.LoadData(context.Background(), map[string]string{
		"primary":      serverA.URL,
		"supplemental": serverB.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	if hitsA != 1 || hitsB != 1 {
		t.Fatalf("expected exactly one request per source, got %d and %d", hitsA, hitsB)
	}
}

func TestLoadDataNoRefetchOfFilledSlots(t *testing.T) {
	var goodHits, flakyHits int64
	good := httptest.NewServer(jsonHandler(`{"ok":true}`, &goodHits))
	defer good.Close()

	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&flakyHits, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer flaky.Close()

	l := New(nil, nil)
	payloads, err := l.LoadData(context.Background(), map[string]string{
		"good":  good.URL,
		"flaky": flaky.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	if goodHits != 1 {
		t.Fatalf("already-succeeded source was re-fetched %d times", goodHits-1)
	}
	if flakyHits != 3 {
		t.Fatalf("expected 3 requests to the flaky source, got %d", flakyHits)
	}
}

func TestLoadDataExhaustsRetries(t *testing.T) {
	var hits int64
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	bus := events.NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	l := New(nil, bus)
	_, err := l.LoadData(context.Background(), map[string]string{"broken": broken.URL})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if hits != MaxAttempts {
		t.Fatalf("expected exactly %d attempts, got %d", MaxAttempts, hits)
	}

	var sawTerminal bool
	for len(ch) > 0 {
		if ev := <-ch; ev.Topic == events.TopicTooManyAttempts {
			sawTerminal = true
		}
	}
	if !sawTerminal {
		t.Fatal("expected a too-many-attempts event")
	}
}

func TestLoadDataValidationFailureCountsAsFetchFailure(t *testing.T) {
	var hits int64
	server := httptest.NewServer(jsonHandler(`{"unexpected":"shape"}`, &hits))
	defer server.Close()

	l := New(nil, nil)
	l.Validate = func(id string, payload *whttp.Payload) error {
		return fmt.Errorf("%s: missing agents key", id)
	}

	_, err := l.LoadData(context.Background(), map[string]string{"primary": server.URL})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if hits != MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", MaxAttempts, hits)
	}
}

func TestLoadDataContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(nil, nil)
	if _, err := l.LoadData(ctx, map[string]string{"x": "http://127.0.0.1:0"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
