package report

import "strings"

// FilterKind selects what a Filter hides: browser rows or whole support
// sections.
type FilterKind int

const (
	FilterBrowsers FilterKind = iota
	FilterSupport
)

// Filter is a visibility filter over an already-built report. One
// configurable type covers both concrete filters; only the kind and the key
// set differ.
type Filter struct {
	Kind    FilterKind
	visible map[string]bool
}

// NewBrowserFilter builds a filter keyed by agent code.
func NewBrowserFilter(visible map[string]bool) *Filter {
	return &Filter{Kind: FilterBrowsers, visible: visible}
}

// NewSupportFilter builds a filter keyed by support-class code.
func NewSupportFilter(visible map[string]bool) *Filter {
	return &Filter{Kind: FilterSupport, visible: visible}
}

// ParseFilter builds a filter from a comma-separated allow list of keys,
// as given on the command line. An empty spec means everything visible.
func ParseFilter(kind FilterKind, spec string) *Filter {
	f := &Filter{Kind: kind}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return f
	}
	f.visible = make(map[string]bool)
	for _, key := range strings.Split(spec, ",") {
		if key = strings.TrimSpace(key); key != "" {
			f.visible[key] = true
		}
	}
	return f
}

// Visible reports whether a key passes the filter. A filter with no
// explicit key set shows everything.
func (f *Filter) Visible(key string) bool {
	if f == nil || f.visible == nil {
		return true
	}
	return f.visible[key]
}

// Apply toggles the hidden markers across an already-built report without
// rebuilding it.
func (f *Filter) Apply(r *Report) {
	for fi := range r.Features {
		feature := &r.Features[fi]
		for si := range feature.Sections {
			section := &feature.Sections[si]
			switch f.Kind {
			case FilterSupport:
				section.Hidden = !f.Visible(string(section.Class))
			case FilterBrowsers:
				for ri := range section.Rows {
					row := &section.Rows[ri]
					row.Hidden = !f.Visible(row.AgentKey)
				}
			}
		}
	}
}
