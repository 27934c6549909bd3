package report

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
)

// WriteText renders the report for a terminal, skipping hidden rows and
// sections.
func (r *Report) WriteText(w io.Writer) {
	if r.PageTitle != "" {
		fmt.Fprintf(w, "Page: %s\n\n", r.PageTitle)
	}

	if len(r.Features) == 0 {
		fmt.Fprintln(w, "Congrats! The code you provided did not contain anything that might give compatibility problems.")
		return
	}

	for _, f := range r.Features {
		fmt.Fprintf(w, "%s\n%s\n", f.Title, strings.Repeat("=", len(f.Title)))
		if f.Description != "" {
			fmt.Fprintln(w, f.Description)
		}
		if f.Spec != "" {
			fmt.Fprintf(w, "Specification: %s\n", f.Spec)
		}
		fmt.Fprintln(w)

		for _, section := range f.Sections {
			if section.Hidden {
				continue
			}
			fmt.Fprintf(w, "  %s (%.1f%% global browser share)\n", section.Title, section.Usage)
			for _, row := range section.Rows {
				if row.Hidden {
					continue
				}
				fmt.Fprintf(w, "    - %s\n", formatRow(row))
			}
		}

		if f.NotesHTML != "" {
			fmt.Fprintf(w, "  Notes:\n    %s\n", stripTags(f.NotesHTML))
		}

		if len(f.PolyfillLinks) > 0 {
			label := "Polyfill script:"
			if len(f.PolyfillLinks) > 1 {
				label = "Polyfill scripts:"
			}
			fmt.Fprintf(w, "  %s\n", label)
			for _, link := range f.PolyfillLinks {
				fmt.Fprintf(w, "    - %s [%s]\n", link.Title, hostOf(link.URL))
			}
		}
		fmt.Fprintln(w)
	}
}

func formatRow(row Row) string {
	var b strings.Builder
	b.WriteString(row.AgentTitle)
	b.WriteByte(' ')
	b.WriteString(row.FromVersion)
	if row.ToVersion != row.FromVersion {
		b.WriteString(" to ")
		b.WriteString(row.ToVersion)
	}
	var flags []string
	if row.Disabled {
		flags = append(flags, "disabled by default")
	}
	if row.NeedsPrefix {
		flags = append(flags, "needs prefix")
	}
	if len(row.Notes) > 0 {
		flags = append(flags, "see note "+strings.Join(row.Notes, ", "))
	}
	if len(flags) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(flags, "; "))
		b.WriteByte(')')
	}
	return b.String()
}

var tagPattern = regexp.MustCompile(`</li>|</p>|<[^>]*>`)

// stripTags flattens the rendered notes HTML for terminal output. Closing
// list items and paragraphs become line breaks so numbered notes stay
// readable.
func stripTags(html string) string {
	out := tagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		if tag == "</li>" || tag == "</p>" {
			return "\n    "
		}
		return ""
	})
	return strings.TrimSpace(out)
}

func hostOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
