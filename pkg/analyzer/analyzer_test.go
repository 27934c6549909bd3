package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/jscompat/jscompat/pkg/datastore"
)

const primaryFixture = `{
	"agents": {
		"chrome": {
			"browser": "Chrome",
			"type": "desktop",
			"version_list": [
				{"version": "30", "global_usage": 1.0},
				{"version": "31", "global_usage": 2.0}
			]
		}
	},
	"data": {
		"promises": {
			"title": "Promises",
			"categories": ["JS API"],
			"stats": {"chrome": [{"version": "30", "support": "n"}, {"version": "31", "support": "y"}]}
		},
		"geolocation": {
			"title": "Geolocation",
			"categories": ["JS API"],
			"stats": {"chrome": [{"version": "30", "support": "y"}, {"version": "31", "support": "y"}]}
		}
	}
}`

const supplementalFixture = `{"data": {}}`

func readyStore(t *testing.T) *datastore.Store {
	t.Helper()
	s := datastore.New(nil, nil, "", "")
	if err := s.LoadFrom([]byte(primaryFixture), []byte(supplementalFixture)); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	return s
}

func TestCheckFindsFeatures(t *testing.T) {
	a := New(readyStore(t), nil)

	code := `
		var p = new Promise(function(resolve) { resolve(1); });
		navigator.geolocation.getCurrentPosition(done);
	`
	matches, err := a.Check(code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := KeysOf(matches)
	if len(keys) != 2 || keys[0] != "geolocation" || keys[1] != "promises" {
		t.Fatalf("unexpected matches: %v", keys)
	}
}

func TestCheckIgnoresCommentedCode(t *testing.T) {
	a := New(readyStore(t), nil)

	code := `
		/* var p = new Promise(function() {}); */
		var x = 1; // navigator.geolocation is great
	`
	matches, err := a.Check(code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", KeysOf(matches))
	}
}

func TestCheckNotReady(t *testing.T) {
	a := New(datastore.New(nil, nil, "", ""), nil)
	if _, err := a.Check("var x;"); !errors.Is(err, datastore.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestStripComments(t *testing.T) {
	code := "var a = 1; // trailing\n/* block\ncomment */var b = 2;"
	clean := StripComments(code)
	if strings.Contains(clean, "trailing") || strings.Contains(clean, "comment") {
		t.Fatalf("comments survived: %q", clean)
	}
	if !strings.Contains(clean, "var a = 1;") || !strings.Contains(clean, "var b = 2;") {
		t.Fatalf("code was mangled: %q", clean)
	}
}

func TestExtractScripts(t *testing.T) {
	html := `<html><head>
		<script src="https://cdn.example/lib.js"></script>
		<script type="application/json">{"not": "js"}</script>
	</head><body>
		<script>var p = new Promise(function() {});</script>
		<script type="module">import x from 'y';</script>
	</body></html>`

	scripts, err := ExtractScripts(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("expected 2 inline scripts, got %d: %v", len(scripts), scripts)
	}
	if !strings.Contains(scripts[0], "new Promise") {
		t.Fatalf("unexpected first script: %q", scripts[0])
	}
}

func TestIsJavaScriptFile(t *testing.T) {
	if !IsJavaScriptFile("app.js") || !IsJavaScriptFile("APP.MJS") {
		t.Fatal("expected js filenames to be recognized")
	}
	if IsJavaScriptFile("style.css") {
		t.Fatal("css is not javascript")
	}
}
