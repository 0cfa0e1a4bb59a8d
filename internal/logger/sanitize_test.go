package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		max    int
		expect string
	}{
		{name: "empty", input: "", max: 10, expect: ""},
		{name: "control characters", input: "a\x00b\x1bc", max: 10, expect: "abc"},
		{name: "keeps whitespace", input: "a b\tc\n", max: 10, expect: "a b\tc\n"},
		{name: "truncates", input: "abcdefghij", max: 4, expect: "abcd..."},
		{name: "does not split runes", input: "ääää", max: 3, expect: "ä..."},
		{name: "invalid utf8", input: "ok\xff", max: 10, expect: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.input, tt.max); got != tt.expect {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expect)
			}
		})
	}
}

func TestSanitizeHelpers(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}
	if got := SanitizeError(errors.New("boom\x00")); got != "boom" {
		t.Errorf("Expected 'boom', got %q", got)
	}
	long := strings.Repeat("a", MaxPathLength+10)
	if got := SanitizePath(long); len(got) != MaxPathLength+3 {
		t.Errorf("Expected path truncated to %d bytes plus ellipsis, got %d", MaxPathLength, len(got))
	}
	if fields := Session("abc", "movie"); len(fields) != 2 || fields[0].Key != "session_id" {
		t.Errorf("Unexpected session fields %v", fields)
	}
}

func TestSessionFields(t *testing.T) {
	t.Parallel()

	fields := Session("abc\x00123", "movie")
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != "session_id" || fields[1].Key != "domain" {
		t.Errorf("Expected keys session_id and domain, got %s and %s", fields[0].Key, fields[1].Key)
	}
	if fields[0].String != "abc123" {
		t.Errorf("Expected control character to be stripped from session id, got %q", fields[0].String)
	}
	if fields[1].String != "movie" {
		t.Errorf("Expected domain 'movie', got '%s'", fields[1].String)
	}
}
