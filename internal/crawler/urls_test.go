package crawler

import (
	"net/url"
	"testing"
)

func TestValidURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want bool
	}{
		{"https://example.com", true},
		{"https://example.com/path?q=1#frag", true},
		{"http://example.com:8080", true},
		{"ftp://example.com", true},
		{"//example.com", false},
		{"not-a-url", false},
		{"", false},
		{"mailto:someone@example.com", false},
		{"/relative/path", false},
		{"https://", false},
	}

	for _, tc := range cases {
		parsed, err := url.Parse(tc.raw)
		if err != nil {
			if tc.want {
				t.Fatalf("url.Parse(%q) failed: %v", tc.raw, err)
			}
			continue
		}
		if got := validURL(parsed); got != tc.want {
			t.Errorf("validURL(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseSeed(t *testing.T) {
	t.Parallel()

	if _, err := parseSeed("https://example.com"); err != nil {
		t.Fatalf("expected valid seed to parse, got %v", err)
	}
	if _, err := parseSeed("  https://example.com  "); err != nil {
		t.Fatalf("expected whitespace-padded seed to parse, got %v", err)
	}
	if _, err := parseSeed(""); err == nil {
		t.Fatal("expected empty seed to be rejected")
	}
	if _, err := parseSeed("example.com/no-scheme"); err == nil {
		t.Fatal("expected schemeless seed to be rejected")
	}
	if _, err := parseSeed("//example.com"); err == nil {
		t.Fatal("expected protocol-relative seed to be rejected")
	}
}

func TestValidateSeed(t *testing.T) {
	t.Parallel()

	if err := ValidateSeed("https://example.com"); err != nil {
		t.Fatalf("expected valid seed to pass: %v", err)
	}
	if err := ValidateSeed("not-a-url"); err == nil {
		t.Fatal("expected invalid seed to fail")
	}
}
