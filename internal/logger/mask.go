package logger

import (
	"regexp"
	"strings"
)

// Patterns for sensitive values that must never reach a log sink:
// LLM API keys, Discord bot tokens, and per-recording access keys in URLs.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?:Bot\s+)?[A-Za-z0-9_-]{24,}\.[A-Za-z0-9_-]{6,7}\.[A-Za-z0-9_-]{27,}`),
	regexp.MustCompile(`\?key=[a-zA-Z0-9]{6,}`),
}

// Mask redacts sensitive substrings from a log message.
func Mask(s string) string {
	for _, p := range sensitivePatterns {
		s = p.ReplaceAllStringFunc(s, maskMatch)
	}
	return s
}

func maskMatch(val string) string {
	if strings.HasPrefix(val, "?key=") {
		return "?key=***"
	}
	if len(val) > 8 {
		return val[:8] + "***"
	}
	return "***"
}
