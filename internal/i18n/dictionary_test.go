package i18n

import "testing"

func TestResolveWalksNestedPath(t *testing.T) {
	dict := Dictionary{
		"channels": map[string]any{
			"no_channels": "No channels found.",
		},
		"nav": map[string]any{
			"status": map[string]any{"running": "System Running"},
		},
	}

	if got := Resolve(dict, "channels.no_channels"); got != "No channels found." {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := Resolve(dict, "nav.status.running"); got != "System Running" {
		t.Fatalf("unexpected translation %q", got)
	}
}

func TestResolveReturnsPathOnMiss(t *testing.T) {
	dict := Dictionary{
		"nav": map[string]any{
			"status": map[string]any{"running": "System Running"},
		},
		"title": "Panel",
	}

	for _, path := range []string{
		"nav.missing",
		"nav.status",  // subtree, not a leaf
		"title.extra", // walks through a leaf
		"nav.status.running.x",
		"",
	} {
		if got := Resolve(dict, path); got != path {
			t.Fatalf("Resolve(%q) = %q, want the raw path", path, got)
		}
	}
}

func TestResolveNilDictionary(t *testing.T) {
	if got := Resolve(nil, "channels.live"); got != "channels.live" {
		t.Fatalf("expected raw path from nil dictionary, got %q", got)
	}
}

func TestDictionaryPaths(t *testing.T) {
	dict := Dictionary{
		"b": "B",
		"a": map[string]any{"y": "Y", "x": "X"},
	}
	paths := dict.Paths()
	want := []string{"a.x", "a.y", "b"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, paths)
		}
	}
}
