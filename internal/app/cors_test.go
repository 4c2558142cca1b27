package app

import "testing"

func TestExtractOriginHost(t *testing.T) {
	cases := map[string]string{
		"https://app.postcraft.io":      "app.postcraft.io",
		"http://localhost:3000":         "localhost:3000",
		"app.postcraft.io":              "app.postcraft.io",
		"https://app.postcraft.io/path": "app.postcraft.io",
	}
	for in, want := range cases {
		if got := extractOriginHost(in); got != want {
			t.Errorf("extractOriginHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"app.postcraft.io", "app.postcraft.io", true},
		{"app.postcraft.io", "evil.io", false},
		{"*.postcraft.io", "staging.postcraft.io", true},
		{"*.postcraft.io", "postcraft.io.evil.com", false},
		{"localhost:*", "localhost:3000", true},
		{"localhost:*", "example.com:3000", false},
	}
	for _, tc := range cases {
		if got := matchOriginPattern(tc.pattern, tc.host); got != tc.want {
			t.Errorf("matchOriginPattern(%q, %q) = %v, want %v", tc.pattern, tc.host, got, tc.want)
		}
	}
}
