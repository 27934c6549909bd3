package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/jscompat/jscompat/pkg/datastore"
	"github.com/jscompat/jscompat/pkg/report"
	"github.com/jscompat/jscompat/pkg/storage"
)

type CheckRequest struct {
	Code     string `json:"code"`
	Browsers string `json:"browsers,omitempty"`
	Support  string `json:"support,omitempty"`
	Collate  *bool  `json:"collate,omitempty"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		http.Error(w, "no code provided", http.StatusBadRequest)
		return
	}

	matches, err := s.Analyzer.Check(req.Code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	agents, err := s.Store.Agents()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	builder := report.NewBuilder(agents)
	if req.Collate != nil {
		builder.Collate = *req.Collate
	}
	browserFilter := report.ParseFilter(report.FilterBrowsers, req.Browsers)
	rep := builder.Build(matches, browserFilter)
	if req.Support != "" {
		report.ParseFilter(report.FilterSupport, req.Support).Apply(rep)
	}

	if s.DB != nil {
		recorded := make([]storage.Match, 0, len(matches))
		for _, m := range matches {
			recorded = append(recorded, storage.Match{FeatureKey: m.Key, Title: m.Title})
		}
		// History is best effort, a failed insert never fails the check.
		_, _ = s.DB.RecordScan(r.Context(), "api", recorded)
	}

	json.NewEncoder(w).Encode(rep)
}

type FeatureSummary struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Spec        string `json:"spec,omitempty"`
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := s.Store.Data()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	out := make([]FeatureSummary, 0, len(features))
	for _, f := range features {
		out = append(out, FeatureSummary{Key: f.Key, Title: f.Title, Description: f.Description, Spec: f.Spec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	json.NewEncoder(w).Encode(out)
}

type AgentSummary struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Prefix string `json:"prefix,omitempty"`
	Mobile bool   `json:"mobile"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.Store.Agents()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	out := make([]AgentSummary, 0, len(agents))
	for _, a := range agents {
		out = append(out, agentSummary(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	json.NewEncoder(w).Encode(out)
}

func agentSummary(a datastore.Agent) AgentSummary {
	return AgentSummary{Key: a.Key, Title: a.Title, Type: a.Type, Prefix: a.Prefix, Mobile: a.Mobile()}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		json.NewEncoder(w).Encode([]storage.ScanRun{})
		return
	}
	runs, err := s.DB.ListScans(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []storage.ScanRun{}
	}
	json.NewEncoder(w).Encode(runs)
}
