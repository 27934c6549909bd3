package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jscompat/jscompat/pkg/analyzer"
	"github.com/jscompat/jscompat/pkg/datastore"
	"github.com/jscompat/jscompat/pkg/report"
)

const primaryFixture = `{
	"agents": {
		"chrome": {
			"browser": "Chrome",
			"type": "desktop",
			"version_list": [
				{"version": "30", "global_usage": 1.0, "era": -1},
				{"version": "31", "global_usage": 2.0, "era": 0}
			]
		}
	},
	"data": {
		"promises": {
			"title": "Promises",
			"categories": ["JS API"],
			"stats": {
				"chrome": [
					{"version": "30", "support": "n"},
					{"version": "31", "support": "y"}
				]
			}
		}
	}
}`

const supplementalFixture = `{"data": {}}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := datastore.New(nil, nil, "", "")
	if err := store.LoadFrom([]byte(primaryFixture), []byte(supplementalFixture)); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	srv := New(store, analyzer.New(store, nil), nil, "", "")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleCheck(t *testing.T) {
	ts := newTestServer(t)

	body := `{"code": "var p = new Promise(function(resolve) { resolve(1); });"}`
	resp, err := http.Post(ts.URL+"/api/check", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rep report.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.Features) != 1 || rep.Features[0].Key != "promises" {
		t.Fatalf("report features = %+v, want promises", rep.Features)
	}
}

func TestHandleCheckRejectsEmptyCode(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/check", "application/json", strings.NewReader(`{"code": "  "}`))
	if err != nil {
		t.Fatalf("POST /api/check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleFeatures(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/features")
	if err != nil {
		t.Fatalf("GET /api/features: %v", err)
	}
	defer resp.Body.Close()

	var features []FeatureSummary
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(features) != 1 || features[0].Key != "promises" {
		t.Fatalf("features = %+v", features)
	}
}

func TestHandleAgents(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/agents")
	if err != nil {
		t.Fatalf("GET /api/agents: %v", err)
	}
	defer resp.Body.Close()

	var agents []AgentSummary
	if err := json.NewDecoder(resp.Body).Decode(&agents); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(agents) != 1 || agents[0].Title != "Chrome" || agents[0].Mobile {
		t.Fatalf("agents = %+v", agents)
	}
}

func TestBasicAuth(t *testing.T) {
	store := datastore.New(nil, nil, "", "")
	if err := store.LoadFrom([]byte(primaryFixture), []byte(supplementalFixture)); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	srv := New(store, analyzer.New(store, nil), nil, "admin", "secret")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/agents")
	if err != nil {
		t.Fatalf("GET without auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without auth = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/agents", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with auth = %d, want 200", resp.StatusCode)
	}
}
