package models

import (
	"strings"
	"testing"
)

func TestProfileID(t *testing.T) {
	if got := ProfileID("Mike Chen"); got != "mike-chen" {
		t.Errorf("ProfileID(Mike Chen) = %q", got)
	}

	flower := ProfileID("🌸")
	if !strings.HasPrefix(flower, "m-") || len(flower) != 10 {
		t.Errorf("ProfileID(🌸) = %q, want m-<8 hex>", flower)
	}
	if flower != ProfileID("🌸") {
		t.Error("ProfileID is not stable")
	}
	if flower == ProfileID("🌻") {
		t.Error("different emoji names share an ID")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "mike", "mike"},
		{"full name", "Mike Chen", "mike-chen"},
		{"underscores", "sarah_kim", "sarah-kim"},
		{"punctuation stripped", "Dr. J. Smith!", "dr-j-smith"},
		{"empty string", "", ""},
		{"only special chars", "!@#$%", ""},
		{"consecutive spaces", "Ana  Lee", "ana--lee"},
		{"accents kept", "José Núñez", "josé-núñez"},
		{"cjk", "王伟", "王伟"},
		{"thai", "สมชาย", "สมชาย"},
		{"emoji dropped", "Ana 🌸", "ana-"},
		{"emoji only", "🌸", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in        string
		hour, min int
		ok        bool
	}{
		{"14:05", 14, 5, true},
		{"2:05 PM", 14, 5, true},
		{"12:30 am", 0, 30, true},
		{"12:30 PM", 12, 30, true},
		{"9:41:07 AM", 9, 41, true},
		{"23:59", 23, 59, true},
		{"25:00", 0, 0, false},
		{"13:00 PM", 0, 0, false},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, ok := ParseClock(tt.in)
			if ok != tt.ok || h != tt.hour || m != tt.min {
				t.Errorf("ParseClock(%q) = %d, %d, %v; want %d, %d, %v", tt.in, h, m, ok, tt.hour, tt.min, tt.ok)
			}
		})
	}
}
