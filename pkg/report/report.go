// Package report turns a set of matched features into a renderable
// compatibility report: features sorted by title, per-agent timelines
// bucketed into support sections, usage shares summed per section.
package report

import (
	"sort"
	"strings"

	"github.com/jscompat/jscompat/pkg/datastore"
)

// supportOrder fixes the visual order of support sections. The two legacy
// codes "x" and "d" never come out of classification but older encodings
// may still carry them.
var supportOrder = []datastore.SupportClass{
	datastore.SupportUnknown,
	datastore.SupportNo,
	datastore.SupportPolyfilled,
	datastore.SupportPartial,
	datastore.SupportLegacyPrefix,
	datastore.SupportLegacyDisabled,
	datastore.SupportYes,
}

// Row is one browser line inside a support section.
type Row struct {
	AgentKey    string   `json:"agent"`
	AgentTitle  string   `json:"agentTitle"`
	FromVersion string   `json:"fromVersion"`
	ToVersion   string   `json:"toVersion"`
	Mobile      bool     `json:"mobile"`
	Disabled    bool     `json:"disabled"`
	NeedsPrefix bool     `json:"needsPrefix"`
	Notes       []string `json:"notes,omitempty"`
	Hidden      bool     `json:"hidden"`
}

// Section groups the rows of one support class for one feature.
type Section struct {
	Class  datastore.SupportClass `json:"class"`
	Title  string                 `json:"title"`
	Usage  float64                `json:"usage"`
	Rows   []Row                  `json:"rows"`
	Hidden bool                   `json:"hidden"`
}

// FeatureReport is the report block for one matched feature.
type FeatureReport struct {
	Key           string           `json:"key"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Spec          string           `json:"spec,omitempty"`
	Sections      []Section        `json:"sections"`
	PolyfillLinks []datastore.Link `json:"polyfillLinks,omitempty"`
	NotesHTML     string           `json:"notes,omitempty"`
}

// Report is the full result of one scan.
type Report struct {
	PageTitle string          `json:"pageTitle,omitempty"`
	Features  []FeatureReport `json:"features"`
}

// Builder builds reports against one agent snapshot.
type Builder struct {
	agents     map[string]datastore.Agent
	agentOrder []string
	// Collate merges a range into a single "30 to 33" row instead of one
	// row per contributing version.
	Collate bool
}

// NewBuilder prepares a builder. Agents render in a stable
// alphabetical-by-title order.
func NewBuilder(agents map[string]datastore.Agent) *Builder {
	order := make([]string, 0, len(agents))
	for key := range agents {
		order = append(order, key)
	}
	sort.Slice(order, func(i, j int) bool {
		a := strings.ToLower(agents[order[i]].Title)
		b := strings.ToLower(agents[order[j]].Title)
		if a == b {
			return order[i] < order[j]
		}
		return a < b
	})
	return &Builder{agents: agents, agentOrder: order, Collate: true}
}

// Build assembles the report for a match set. A browser filter, when given,
// pre-marks rows for agents the user has switched off; the rows are still
// built so toggling the filter later needs no rebuild.
func (b *Builder) Build(features []datastore.Feature, browserFilter *Filter) *Report {
	sorted := append([]datastore.Feature(nil), features...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
	})

	r := &Report{}
	for _, f := range sorted {
		r.Features = append(r.Features, b.buildFeature(f, browserFilter))
	}
	return r
}

func (b *Builder) buildFeature(f datastore.Feature, browserFilter *Filter) FeatureReport {
	fr := FeatureReport{
		Key:         f.Key,
		Title:       f.Title,
		Description: f.Description,
		Spec:        f.Spec,
		NotesHTML:   f.NotesHTML,
	}

	buckets := make(map[datastore.SupportClass]*Section)
	for _, agentKey := range b.agentOrder {
		agent := b.agents[agentKey]
		for _, sr := range f.Support[agentKey] {
			section, ok := buckets[sr.Class]
			if !ok {
				section = &Section{Class: sr.Class, Title: sr.Class.Label()}
				buckets[sr.Class] = section
			}
			section.Usage += sr.TotalUsage
			section.Rows = append(section.Rows, b.buildRows(agentKey, agent.Title, sr, browserFilter)...)
		}
	}

	hasPolyfillSection := false
	for _, class := range supportOrder {
		if section, ok := buckets[class]; ok {
			fr.Sections = append(fr.Sections, *section)
			if class == datastore.SupportPolyfilled {
				hasPolyfillSection = true
			}
		}
	}

	if hasPolyfillSection && len(f.Links) > 0 {
		fr.PolyfillLinks = f.Links
	}
	return fr
}

func (b *Builder) buildRows(agentKey, agentTitle string, sr datastore.SupportRange, browserFilter *Filter) []Row {
	hidden := browserFilter != nil && !browserFilter.Visible(agentKey)

	if b.Collate {
		row := Row{
			AgentKey:    agentKey,
			AgentTitle:  agentTitle,
			FromVersion: sr.FromVersion,
			ToVersion:   sr.ToVersion,
			Mobile:      sr.Mobile,
			Hidden:      hidden,
		}
		seen := make(map[string]bool)
		for _, v := range sr.Versions {
			if v.Disabled {
				row.Disabled = true
			}
			if v.NeedsPrefix {
				row.NeedsPrefix = true
			}
			if v.Note != "" && !seen[v.Note] {
				seen[v.Note] = true
				row.Notes = append(row.Notes, v.Note)
			}
		}
		return []Row{row}
	}

	rows := make([]Row, 0, len(sr.Versions))
	for _, v := range sr.Versions {
		row := Row{
			AgentKey:    agentKey,
			AgentTitle:  agentTitle,
			FromVersion: v.Version,
			ToVersion:   v.Version,
			Mobile:      sr.Mobile,
			Disabled:    v.Disabled,
			NeedsPrefix: v.NeedsPrefix,
			Hidden:      hidden,
		}
		if v.Note != "" {
			row.Notes = []string{v.Note}
		}
		rows = append(rows, row)
	}
	return rows
}
