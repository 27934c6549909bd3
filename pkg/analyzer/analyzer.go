// Package analyzer runs the detection rules against submitted JavaScript
// source and returns the matching features from the data store.
package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jscompat/jscompat/pkg/datastore"
	"github.com/jscompat/jscompat/pkg/events"
)

// Comment stripping is a heuristic, not a lexer: comment-like tokens inside
// string literals may be mis-stripped. Known limitation, matches what a
// regex can reasonably do. Via http://stackoverflow.com/a/15123777/1244780
var commentPattern = regexp.MustCompile(`(?m)(?:/\*(?:[\s\S]*?)\*/)|(?:([\s;])+//(?:.*)$)`)

// StripComments removes block and line comments from JavaScript source.
func StripComments(code string) string {
	return commentPattern.ReplaceAllString(code, "")
}

// Analyzer matches source code against the ready data store.
type Analyzer struct {
	store *datastore.Store
	bus   *events.Bus
}

func New(store *datastore.Store, bus *events.Bus) *Analyzer {
	return &Analyzer{store: store, bus: bus}
}

// Check scans code and returns every feature whose detection patterns all
// match the comment-stripped source, sorted by feature key. The store must
// be ready.
func (a *Analyzer) Check(code string) ([]datastore.Feature, error) {
	features, err := a.store.Data()
	if err != nil {
		a.bus.Error("Make sure compatibility data is loaded before running the analyzer")
		return nil, err
	}

	a.bus.Info(fmt.Sprintf("Testing %d features", len(features)))

	clean := StripComments(code)

	keys := make([]string, 0, len(features))
	for key := range features {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var matches []datastore.Feature
	for _, key := range keys {
		feature := features[key]
		if matchesAll(feature.Patterns, clean) {
			matches = append(matches, feature)
			a.bus.Info(fmt.Sprintf("Detected the usage of %s (%s)", feature.Title, key))
		}
	}

	a.bus.Publish(events.Event{Topic: events.TopicCodeAnalyzed, Level: 9})
	return matches, nil
}

// matchesAll requires every pattern of a feature to match (logical AND);
// most features have exactly one pattern.
func matchesAll(patterns []*regexp.Regexp, code string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if !p.MatchString(code) {
			return false
		}
	}
	return true
}

// TitlesOf is a convenience for logging and history records.
func TitlesOf(features []datastore.Feature) []string {
	titles := make([]string, 0, len(features))
	for _, f := range features {
		titles = append(titles, f.Title)
	}
	return titles
}

// KeysOf returns the feature keys of a match set.
func KeysOf(features []datastore.Feature) []string {
	keys := make([]string, 0, len(features))
	for _, f := range features {
		keys = append(keys, f.Key)
	}
	return keys
}

// IsJavaScriptFile is a cheap filename check used by the CLI to warn about
// unlikely inputs.
func IsJavaScriptFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".js") || strings.HasSuffix(lower, ".mjs") || strings.HasSuffix(lower, ".cjs")
}
