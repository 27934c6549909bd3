// Package dataset decodes the two compatibility documents into tagged,
// typed values at the ingestion boundary. The primary document is
// caniuse-shaped (agents table plus array-based per-feature stats); the
// supplemental document carries extra features with map-based stats.
// Downstream code dispatches on these types instead of probing JSON shape.
package dataset

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// AgentVersion is one raw entry of an agent's version list.
type AgentVersion struct {
	Version     string
	GlobalUsage float64
	Era         int
	Prefix      string
}

// Agent describes one browser/runtime as shipped in the primary document.
type Agent struct {
	Key         string
	Browser     string
	Type        string // desktop | mobile
	Prefix      string
	VersionList []AgentVersion
}

// Link is a reference link attached to a feature. Type is "poly" for
// polyfill links; legacy entries may leave it empty.
type Link struct {
	URL   string
	Title string
	Type  string
}

// SupportStat pairs a version label with its encoded support code.
type SupportStat struct {
	Version string
	Support string
}

// Feature is one entry of either document. Primary features carry Stats
// (array-shaped per agent); supplemental features carry StatsByVersion
// (version -> code per agent), possibly sparse.
type Feature struct {
	Key            string
	Title          string
	Description    string
	Spec           string
	Categories     []string
	Notes          string
	NotesByNum     map[string]string
	Links          []Link
	Stats          map[string][]SupportStat
	StatsByVersion map[string]map[string]string
}

// Primary is the full caniuse-shaped dataset.
type Primary struct {
	Agents map[string]Agent
	Data   map[string]Feature
}

// Supplemental is the additional-features dataset.
type Supplemental struct {
	Data map[string]Feature
}

// ParsePrimary validates and decodes the primary document. A body that is
// valid JSON but lacks the agents or data objects is an error; callers treat
// that the same as a failed download.
func ParsePrimary(body []byte) (*Primary, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}
	agentsNode := root.Get("agents")
	if !agentsNode.IsObject() {
		return nil, fmt.Errorf("primary dataset: missing agents object")
	}
	dataNode := root.Get("data")
	if !dataNode.IsObject() {
		return nil, fmt.Errorf("primary dataset: missing data object")
	}

	p := &Primary{
		Agents: make(map[string]Agent),
		Data:   make(map[string]Feature),
	}

	agentsNode.ForEach(func(key, value gjson.Result) bool {
		agent := Agent{
			Key:     key.String(),
			Browser: value.Get("browser").String(),
			Type:    value.Get("type").String(),
			Prefix:  value.Get("prefix").String(),
		}
		value.Get("version_list").ForEach(func(_, v gjson.Result) bool {
			agent.VersionList = append(agent.VersionList, AgentVersion{
				Version:     v.Get("version").String(),
				GlobalUsage: v.Get("global_usage").Float(),
				Era:         int(v.Get("era").Int()),
				Prefix:      v.Get("prefix").String(),
			})
			return true
		})
		p.Agents[agent.Key] = agent
		return true
	})

	dataNode.ForEach(func(key, value gjson.Result) bool {
		f := parseFeature(key.String(), value)
		f.Stats = make(map[string][]SupportStat)
		value.Get("stats").ForEach(func(agent, stats gjson.Result) bool {
			var list []SupportStat
			stats.ForEach(func(_, entry gjson.Result) bool {
				list = append(list, SupportStat{
					Version: entry.Get("version").String(),
					Support: entry.Get("support").String(),
				})
				return true
			})
			f.Stats[agent.String()] = list
			return true
		})
		p.Data[f.Key] = f
		return true
	})

	return p, nil
}

// ParseSupplemental validates and decodes the additional-features document.
func ParseSupplemental(body []byte) (*Supplemental, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}
	dataNode := root.Get("data")
	if !dataNode.IsObject() {
		return nil, fmt.Errorf("supplemental dataset: missing data object")
	}

	s := &Supplemental{Data: make(map[string]Feature)}

	dataNode.ForEach(func(key, value gjson.Result) bool {
		f := parseFeature(key.String(), value)
		f.StatsByVersion = make(map[string]map[string]string)
		value.Get("stats").ForEach(func(agent, stats gjson.Result) bool {
			byVersion := make(map[string]string)
			stats.ForEach(func(version, code gjson.Result) bool {
				byVersion[version.String()] = code.String()
				return true
			})
			f.StatsByVersion[agent.String()] = byVersion
			return true
		})
		s.Data[f.Key] = f
		return true
	})

	return s, nil
}

func parseRoot(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("dataset body is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("dataset body is not a JSON object")
	}
	return root, nil
}

func parseFeature(key string, value gjson.Result) Feature {
	f := Feature{
		Key:         key,
		Title:       value.Get("title").String(),
		Description: value.Get("description").String(),
		Spec:        value.Get("spec").String(),
		Notes:       value.Get("notes").String(),
		NotesByNum:  make(map[string]string),
	}
	value.Get("categories").ForEach(func(_, c gjson.Result) bool {
		f.Categories = append(f.Categories, c.String())
		return true
	})
	value.Get("notes_by_num").ForEach(func(num, note gjson.Result) bool {
		f.NotesByNum[num.String()] = note.String()
		return true
	})
	value.Get("links").ForEach(func(_, l gjson.Result) bool {
		f.Links = append(f.Links, Link{
			URL:   l.Get("url").String(),
			Title: l.Get("title").String(),
			Type:  l.Get("type").String(),
		})
		return true
	})
	return f
}
