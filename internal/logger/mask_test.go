package logger

import (
	"strings"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		leaked   string
		expected string
	}{
		{
			name:   "llm api key",
			input:  "using key sk-abcdefghijklmnopqrstuvwxyz123456",
			leaked: "sk-abcdefghijklmnopqrstuvwxyz123456",
		},
		{
			name:   "bot token",
			input:  "auth Bot MTIzNDU2Nzg5MDEyMzQ1Njc4OTA.GabcDe.abcdefghijklmnopqrstuvwxyz12345",
			leaked: "MTIzNDU2Nzg5MDEyMzQ1Njc4OTA.GabcDe.abcdefghijklmnopqrstuvwxyz12345",
		},
		{
			name:     "access key in url",
			input:    "downloading https://craig.chat/rec/abc123?key=secretkey99",
			leaked:   "?key=secretkey99",
			expected: "?key=***",
		},
		{
			name:     "plain message untouched",
			input:    "pipeline complete in 42s",
			expected: "pipeline complete in 42s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Mask(tt.input)
			if tt.leaked != "" && strings.Contains(out, tt.leaked) {
				t.Errorf("Mask() leaked %q in %q", tt.leaked, out)
			}
			if tt.expected != "" && !strings.Contains(out, tt.expected) {
				t.Errorf("Mask() = %q, want it to contain %q", out, tt.expected)
			}
		})
	}
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log, err := New(Options{Level: level})
		if err != nil {
			t.Errorf("New(%q) error = %v", level, err)
		}
		if log == nil {
			t.Errorf("New(%q) returned nil", level)
		}
	}
}
