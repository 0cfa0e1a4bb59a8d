package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength caps URL paths in log entries
	MaxPathLength = 500
	// MaxIDLength caps session IDs and domain names (UUIDs are 36 chars)
	MaxIDLength = 128
	// MaxErrorMessageLength caps error messages
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the default cap for SanitizeString
	MaxGeneralStringLength = 2000
	// MaxDebugContentLength caps prompts and model responses logged in debug mode
	MaxDebugContentLength = 10000
)

// SanitizeString makes s safe to log: valid UTF-8, no control characters
// other than whitespace, at most maxLength bytes. maxLength <= 0 selects
// MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return truncate(builder.String(), maxLength)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// SanitizePath sanitizes a URL path
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeID sanitizes a session ID
func SanitizeID(id string) string {
	return SanitizeString(id, MaxIDLength)
}

// SanitizeError sanitizes an error message
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeDebugContent sanitizes prompts and responses logged in debug mode
func SanitizeDebugContent(content string) string {
	return SanitizeString(content, MaxDebugContentLength)
}
