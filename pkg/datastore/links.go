package datastore

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

var polyfillTitle = regexp.MustCompile(`(?i)poly(fill)?`)

// Registrable domains known to host polyfill scripts. Legacy untyped links
// pointing at one of these are kept during link filtering.
var polyfillHosts = map[string]bool{
	"polyfill.io":           true,
	"github.com":            true,
	"github.io":             true,
	"githubusercontent.com": true,
	"modernizr.com":         true,
	"cdnjs.com":             true,
}

// isPolyfillTyped reports whether a link is explicitly tagged as a polyfill
// ("poly" in the datasets).
func isPolyfillTyped(l Link) bool {
	return strings.HasPrefix(strings.ToLower(l.Type), "poly")
}

// isPolyfillLink decides whether a link survives the polyfill filter:
// explicitly tagged links always do; untyped legacy links only when their
// title or hosting domain looks like a polyfill.
func isPolyfillLink(l Link) bool {
	if l.Type != "" {
		return isPolyfillTyped(l)
	}
	if polyfillTitle.MatchString(l.Title) {
		return true
	}
	return isPolyfillHost(l.URL)
}

func isPolyfillHost(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if polyfillHosts[host] {
		return true
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return false
	}
	return polyfillHosts[domain]
}

// filterPolyfillLinks applies the link-filtering normalization step: only
// polyfill links are worth showing in a report.
func filterPolyfillLinks(links []Link) []Link {
	var kept []Link
	for _, l := range links {
		if isPolyfillLink(l) {
			kept = append(kept, l)
		}
	}
	return kept
}

// mergePolyfillLinks unions supplemental polyfill-typed links into existing,
// deduplicating by URL. Existing links always win; order is stable, so
// merging twice yields the same list.
func mergePolyfillLinks(existing, supplemental []Link) []Link {
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l.URL] = true
	}
	merged := existing
	for _, l := range supplemental {
		if !isPolyfillTyped(l) || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		merged = append(merged, l)
	}
	return merged
}
