package tools

import "testing"

func TestShortenURLDeterministic(t *testing.T) {
	a, err := shortenURL("https://example.com/some/long/path?x=1")
	if err != nil {
		t.Fatalf("shortenURL: %v", err)
	}
	b, err := shortenURL("https://example.com/some/long/path?x=1")
	if err != nil {
		t.Fatalf("shortenURL: %v", err)
	}
	if a != b {
		t.Errorf("same url gave different codes: %q vs %q", a, b)
	}
	if len(a) != shortCodeLength {
		t.Errorf("code length = %d, want %d", len(a), shortCodeLength)
	}
}

func TestShortenURLDistinct(t *testing.T) {
	a, _ := shortenURL("https://example.com/a")
	b, _ := shortenURL("https://example.com/b")
	if a == b {
		t.Errorf("different urls gave the same code %q", a)
	}
}

func TestShortenURLRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url", "example.com/no-scheme"} {
		if _, err := shortenURL(raw); err == nil {
			t.Errorf("shortenURL(%q): expected error", raw)
		}
	}
}
