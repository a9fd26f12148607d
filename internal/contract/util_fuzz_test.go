package contract

import (
	"strings"
	"testing"
	"time"
)

// FuzzParseRelativeTime ensures arbitrary input never panics and any
// accepted value is strictly in the past.
func FuzzParseRelativeTime(f *testing.F) {
	seeds := []string{
		"2 weeks ago",
		"1 day ago",
		"3 months ago",
		"yesterday",
		"",
		"999999 years ago",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, input string) {
		got, err := ParseRelativeTime(input, now)
		if err != nil {
			return
		}
		if got.After(now) {
			t.Fatalf("accepted %q but result %v is in the future", input, got)
		}
		if !strings.Contains(strings.ToLower(input), "ago") {
			t.Fatalf("accepted %q without 'ago' suffix", input)
		}
	})
}

// FuzzTruncateTitle ensures truncation never panics or grows the string.
func FuzzTruncateTitle(f *testing.F) {
	f.Add("renegotiate vendor contracts", 10)
	f.Add("", 0)
	f.Add("héllo wörld", 5)
	f.Add("x", -3)

	f.Fuzz(func(t *testing.T, title string, maxWidth int) {
		got := TruncateTitle(title, maxWidth)
		if len([]rune(got)) > len([]rune(title)) && len([]rune(title)) > maxWidth {
			t.Fatalf("truncation grew %q to %q", title, got)
		}
	})
}
