package dataset

import "testing"

const primaryFixture = `{
	"agents": {
		"chrome": {
			"browser": "Chrome",
			"type": "desktop",
			"prefix": "webkit",
			"version_list": [
				{"version": "30", "global_usage": 1.5, "era": -2},
				{"version": "31", "global_usage": 2.5, "era": -1, "prefix": "moz"}
			]
		}
	},
	"data": {
		"promises": {
			"title": "Promises",
			"description": "Promise objects",
			"spec": "https://example.org/promises",
			"categories": ["JS API"],
			"notes": "",
			"notes_by_num": {"1": "See [MDN](https://mdn.example) for details"},
			"links": [{"url": "https://x/poly.js", "title": "Polyfill", "type": "poly"}],
			"stats": {
				"chrome": [
					{"version": "30", "support": "n"},
					{"version": "31", "support": "y #1"}
				]
			}
		}
	}
}`

const supplementalFixture = `{
	"data": {
		"obj-create": {
			"title": "Object.create",
			"description": "",
			"notes": "",
			"stats": {
				"chrome": {"30": "n"}
			}
		}
	}
}`

func TestParsePrimary(t *testing.T) {
	p, err := ParsePrimary([]byte(primaryFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agent, ok := p.Agents["chrome"]
	if !ok {
		t.Fatal("missing chrome agent")
	}
	if agent.Browser != "Chrome" || agent.Prefix != "webkit" || agent.Type != "desktop" {
		t.Fatalf("unexpected agent: %+v", agent)
	}
	if len(agent.VersionList) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(agent.VersionList))
	}
	if agent.VersionList[1].Prefix != "moz" {
		t.Fatalf("expected per-version prefix override, got %q", agent.VersionList[1].Prefix)
	}

	f, ok := p.Data["promises"]
	if !ok {
		t.Fatal("missing promises feature")
	}
	if f.NotesByNum["1"] == "" {
		t.Fatal("missing numbered note")
	}
	stats := f.Stats["chrome"]
	if len(stats) != 2 || stats[1].Support != "y #1" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestParseSupplemental(t *testing.T) {
	s, err := ParseSupplemental([]byte(supplementalFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := s.Data["obj-create"]
	if !ok {
		t.Fatal("missing obj-create feature")
	}
	if f.StatsByVersion["chrome"]["30"] != "n" {
		t.Fatalf("unexpected stats: %+v", f.StatsByVersion)
	}
}

func TestParsePrimaryShapeMismatch(t *testing.T) {
	cases := []string{
		`"a string"`,
		`{"data": {}}`,
		`{"agents": {}}`,
		`not json at all`,
	}
	for _, body := range cases {
		if _, err := ParsePrimary([]byte(body)); err == nil {
			t.Errorf("expected error for body %q", body)
		}
	}
}

func TestParseSupplementalShapeMismatch(t *testing.T) {
	if _, err := ParseSupplemental([]byte(`{"agents": {}}`)); err == nil {
		t.Fatal("expected error for missing data object")
	}
}
