package datastore

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/jscompat/jscompat/pkg/dataset"
)

// Only these dataset categories describe things detectable in JavaScript
// source.
var allowedCategories = map[string]bool{
	"JS API": true,
	"DOM":    true,
	"Canvas": true,
}

var (
	disabledFlag  = regexp.MustCompile(`(?i)d`)
	prefixFlag    = regexp.MustCompile(`(?i)x`)
	noteReference = regexp.MustCompile(`#(\d+)`)
	leadingNumber = regexp.MustCompile(`^\d+(\.\d+)?`)
)

// featureWork is a feature mid-normalization: its metadata plus the
// provisional per-agent version/support-code table.
type featureWork struct {
	meta  dataset.Feature
	stats map[string][]dataset.SupportStat
}

// normalize runs the full pipeline over the two parsed datasets and returns
// the canonical agent and feature maps. Features without a rule-table entry
// are dropped: they are not detectable, so exclusion is expected rather than
// exceptional.
func normalize(primary *dataset.Primary, supplemental *dataset.Supplemental, rules map[string][]*regexp.Regexp) (map[string]Agent, map[string]Feature) {
	agents := buildAgents(primary.Agents)

	work := make(map[string]*featureWork)
	ingestPrimary(primary, rules, work)
	mergeSupplemental(supplemental, rules, agents, work)

	features := make(map[string]Feature, len(work))
	for key, w := range work {
		features[key] = Feature{
			Key:         key,
			Title:       w.meta.Title,
			Description: w.meta.Description,
			Spec:        w.meta.Spec,
			NotesHTML:   renderNotes(key, w.meta.Notes, w.meta.NotesByNum),
			Links:       filterPolyfillLinks(w.meta.Links),
			Patterns:    rules[key],
			Support:     compressSupport(w.stats, agents),
		}
	}
	return agents, features
}

// buildAgents reshapes each agent's ordered version list into a
// version-label-indexed map, back-filling the agent-level vendor prefix on
// versions that don't specify their own.
func buildAgents(raw map[string]dataset.Agent) map[string]Agent {
	agents := make(map[string]Agent, len(raw))
	for key, a := range raw {
		versions := make(map[string]dataset.AgentVersion, len(a.VersionList))
		for _, v := range a.VersionList {
			if v.Prefix == "" {
				v.Prefix = a.Prefix
			}
			versions[v.Version] = v
		}
		agents[key] = Agent{
			Key:      key,
			Title:    a.Browser,
			Type:     a.Type,
			Prefix:   a.Prefix,
			Versions: versions,
		}
	}
	return agents
}

// ingestPrimary keeps the primary entries that are both in an allowed
// category and detectable, attaching their provisional stats tables.
func ingestPrimary(primary *dataset.Primary, rules map[string][]*regexp.Regexp, work map[string]*featureWork) {
	for key, f := range primary.Data {
		if !hasAllowedCategory(f.Categories) {
			continue
		}
		if _, ok := rules[key]; !ok {
			continue
		}
		stats := make(map[string][]dataset.SupportStat, len(f.Stats))
		for agent, list := range f.Stats {
			sorted := append([]dataset.SupportStat(nil), list...)
			sortStats(sorted)
			stats[agent] = sorted
		}
		work[key] = &featureWork{meta: f, stats: stats}
	}
}

// mergeSupplemental folds the additional dataset in. Keys the primary
// already produced only contribute polyfill links (primary support data
// wins); new keys are adopted wholesale, with every agent version the
// supplemental stats table misses defaulting to full support.
func mergeSupplemental(supplemental *dataset.Supplemental, rules map[string][]*regexp.Regexp, agents map[string]Agent, work map[string]*featureWork) {
	for key, f := range supplemental.Data {
		if _, ok := rules[key]; !ok {
			continue
		}
		if len(f.Categories) > 0 && !hasAllowedCategory(f.Categories) {
			continue
		}
		if existing, ok := work[key]; ok {
			existing.meta.Links = mergePolyfillLinks(existing.meta.Links, f.Links)
			continue
		}
		work[key] = &featureWork{meta: f, stats: fillFromAgents(f.StatsByVersion, agents)}
	}
}

// fillFromAgents expands a sparse version->code table to cover every version
// every agent ships, assuming supported unless stated otherwise.
func fillFromAgents(byVersion map[string]map[string]string, agents map[string]Agent) map[string][]dataset.SupportStat {
	stats := make(map[string][]dataset.SupportStat, len(agents))
	for key, agent := range agents {
		list := make([]dataset.SupportStat, 0, len(agent.Versions))
		for version := range agent.Versions {
			code := "y"
			if c, ok := byVersion[key][version]; ok && c != "" {
				code = c
			}
			list = append(list, dataset.SupportStat{Version: version, Support: code})
		}
		sortStats(list)
		stats[key] = list
	}
	return stats
}

// compressSupport turns each agent's version/code list into maximal runs of
// equal support class.
func compressSupport(stats map[string][]dataset.SupportStat, agents map[string]Agent) map[string][]SupportRange {
	support := make(map[string][]SupportRange, len(stats))
	for agentKey, list := range stats {
		agent, ok := agents[agentKey]
		if !ok {
			continue
		}
		if ranges := compressAgent(list, agent); len(ranges) > 0 {
			support[agentKey] = ranges
		}
	}
	return support
}

func compressAgent(list []dataset.SupportStat, agent Agent) []SupportRange {
	var (
		ranges      []SupportRange
		current     *SupportRange
		lastVersion string
	)

	for _, st := range list {
		av, known := agent.Versions[st.Version]
		if !known {
			// A version missing from the agent table simply produces no
			// entry; it is not an error.
			continue
		}

		class := ClassifySupport(st.Support)
		detail := newVersionDetail(st, av)

		switch {
		case current == nil:
			current = &SupportRange{
				FromVersion: st.Version,
				Class:       class,
				Versions:    []VersionDetail{detail},
				Mobile:      agent.Mobile(),
			}
		case class != current.Class:
			closeRange(current, lastVersion)
			ranges = append(ranges, *current)
			current = &SupportRange{
				FromVersion: st.Version,
				Class:       class,
				Versions:    []VersionDetail{detail},
				Mobile:      agent.Mobile(),
			}
		default:
			current.Versions = append(current.Versions, detail)
		}
		lastVersion = st.Version
	}

	if current != nil {
		closeRange(current, lastVersion)
		ranges = append(ranges, *current)
	}
	return ranges
}

func closeRange(r *SupportRange, toVersion string) {
	r.ToVersion = toVersion
	r.TotalUsage = 0
	for _, v := range r.Versions {
		r.TotalUsage += v.GlobalUsage
	}
}

func newVersionDetail(st dataset.SupportStat, av dataset.AgentVersion) VersionDetail {
	detail := VersionDetail{
		Version:     st.Version,
		Disabled:    disabledFlag.MatchString(st.Support),
		NeedsPrefix: prefixFlag.MatchString(st.Support),
		Prefix:      av.Prefix,
		Era:         av.Era,
		GlobalUsage: av.GlobalUsage,
	}
	if m := noteReference.FindStringSubmatch(st.Support); m != nil {
		detail.Note = m[1]
	}
	return detail
}

func hasAllowedCategory(categories []string) bool {
	for _, c := range categories {
		if allowedCategories[c] {
			return true
		}
	}
	return false
}

// sortStats orders version labels ascending by their numeric value. Labels
// parse as the leading float of the label ("4.4.3" sorts as 4.4); a label
// with no numeric prefix (such as "TP") sorts after every parsable label,
// and two unparsable labels keep their input order. The sort is stable, so
// numeric ties also keep input order.
func sortStats(list []dataset.SupportStat) {
	sort.SliceStable(list, func(i, j int) bool {
		a, aok := parseVersion(list[i].Version)
		b, bok := parseVersion(list[j].Version)
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		default:
			return false
		}
	})
}

func parseVersion(label string) (float64, bool) {
	m := leadingNumber.FindString(label)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
