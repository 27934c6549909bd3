package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractScripts pulls the inline <script> bodies out of an HTML document so
// a whole page can be scanned. External scripts (src attribute) and
// non-JavaScript script types (JSON templates and the like) are skipped.
func ExtractScripts(htmlBody string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	var scripts []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		if typ, ok := sel.Attr("type"); ok && !isJavaScriptType(typ) {
			return
		}
		if body := strings.TrimSpace(sel.Text()); body != "" {
			scripts = append(scripts, body)
		}
	})
	return scripts, nil
}

func isJavaScriptType(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	default:
		return false
	}
}
