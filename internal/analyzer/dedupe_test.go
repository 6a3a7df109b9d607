package analyzer

import (
	"reflect"
	"testing"
)

func TestDedupe(t *testing.T) {
	in := []string{
		"https://example.com/page#section1",
		"https://example.com/other",
		"https://example.com/page#section2",
		"https://example.com/page?b=2&a=1",
		"https://EXAMPLE.com/page?a=1&b=2",
		"https://example.com/other/",
	}
	got, dropped := Dedupe(in)
	want := []string{
		"https://example.com/page#section1",
		"https://example.com/other",
		"https://example.com/page?b=2&a=1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("kept = %q, want %q", got, want)
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/page/", "https://example.com/page"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/page?b=2&a=1", "https://example.com/page?a=1&b=2"},
		{"https://Example.COM/a", "https://example.com/a"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CanonicalURL(tt.input); got != tt.expected {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
