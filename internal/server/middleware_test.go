package server

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"multibyte boundary", "ab€€", 7, "ab..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
		})
	}
}

func TestTruncate_KeepsValidUTF8(t *testing.T) {
	s := strings.Repeat("🥊", 100)
	got := truncate(s, maxArgLogLen)
	assert.LessOrEqual(t, len(got), maxArgLogLen)
	assert.True(t, utf8.ValidString(got))
}
