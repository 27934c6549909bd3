package datastore

import (
	"regexp"

	"github.com/jscompat/jscompat/pkg/dataset"
)

// SupportClass is the canonical one-letter support classification.
type SupportClass string

const (
	SupportUnknown    SupportClass = "u"
	SupportNo         SupportClass = "n"
	SupportPartial    SupportClass = "a"
	SupportPolyfilled SupportClass = "p"
	SupportYes        SupportClass = "y"

	// Legacy codes that still appear in older encodings. They are never
	// produced by classification but reports keep a slot for them.
	SupportLegacyPrefix   SupportClass = "x"
	SupportLegacyDisabled SupportClass = "d"
)

// ClassifySupport maps an encoded support code to its class: the first
// character, lowercased. Anything unrecognized is unknown rather than an
// error.
func ClassifySupport(code string) SupportClass {
	if code == "" {
		return SupportUnknown
	}
	c := code[0]
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	switch SupportClass(c) {
	case SupportNo, SupportPartial, SupportPolyfilled, SupportYes:
		return SupportClass(c)
	default:
		return SupportUnknown
	}
}

// Label returns the human description for a support class.
func (s SupportClass) Label() string {
	switch s {
	case SupportNo:
		return "No support"
	case SupportYes:
		return "Full support"
	case SupportPolyfilled:
		return "Support through polyfill"
	case SupportPartial:
		return "Partial support"
	case SupportUnknown:
		return "Unknown support"
	default:
		return "Support value: " + string(s)
	}
}

// Agent is a browser/runtime identity with a version-indexed support table.
// Immutable once the store is ready.
type Agent struct {
	Key      string
	Title    string
	Type     string // desktop | mobile
	Prefix   string
	Versions map[string]dataset.AgentVersion
}

// Mobile reports whether the agent is a mobile browser.
func (a Agent) Mobile() bool {
	return a.Type == "mobile"
}

// VersionDetail is one contributing version inside a SupportRange, carrying
// the flags decoded from the support code.
type VersionDetail struct {
	Version     string
	Disabled    bool   // feature present but off by default
	NeedsPrefix bool
	Prefix      string
	Note        string // numbered-note reference, "" if none
	Era         int
	GlobalUsage float64
}

// SupportRange is a maximal run of consecutive versions sharing one support
// class for one agent. Adjacent ranges in an agent's timeline never share a
// class, and ranges are listed in ascending version order.
type SupportRange struct {
	FromVersion string
	ToVersion   string
	Class       SupportClass
	Versions    []VersionDetail
	TotalUsage  float64
	Mobile      bool
}

// Link is a reference link kept on a feature after polyfill filtering.
type Link = dataset.Link

// Feature is one detectable capability with its per-agent support timeline.
type Feature struct {
	Key         string
	Title       string
	Description string
	Spec        string
	NotesHTML   string
	Links       []Link
	Patterns    []*regexp.Regexp
	Support     map[string][]SupportRange
}
