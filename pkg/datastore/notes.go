package datastore

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	mdLink = regexp.MustCompile(`\[(.*?)]\((.*?)\)`)
	mdCode = regexp.MustCompile("`(.*?)`")
)

// renderMarkdown converts the restricted markdown subset used by the
// datasets ([text](url) links and backtick code spans) to HTML. Anything
// else passes through untouched.
func renderMarkdown(markdown string) string {
	out := mdLink.ReplaceAllString(markdown, `<a href="$2">$1</a>`)
	out = mdCode.ReplaceAllString(out, `<code class="inline-code">$1</code>`)
	return out
}

// renderNotes builds the HTML notes block for a feature: free-form note
// paragraphs followed by the numbered-notes list. Returns "" when there is
// nothing to show.
func renderNotes(featureKey, notes string, notesByNum map[string]string) string {
	if strings.TrimSpace(notes) == "" && len(notesByNum) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<h4>Notes</h4>")

	for _, paragraph := range strings.FieldsFunc(notes, func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(renderMarkdown(paragraph))
		b.WriteString("</p>")
	}

	if len(notesByNum) > 0 {
		// Map order is random; numbered notes render in numeric order.
		nums := make([]string, 0, len(notesByNum))
		for num := range notesByNum {
			nums = append(nums, num)
		}
		sort.Slice(nums, func(i, j int) bool {
			a, aerr := strconv.Atoi(nums[i])
			b, berr := strconv.Atoi(nums[j])
			if aerr != nil || berr != nil {
				return nums[i] < nums[j]
			}
			return a < b
		})

		b.WriteString("<ol>")
		for _, num := range nums {
			b.WriteString(fmt.Sprintf(`<li id="note_%s_%s">%s</li>`, featureKey, num, renderMarkdown(notesByNum[num])))
		}
		b.WriteString("</ol>")
	}

	return b.String()
}
