package provider

import "testing"

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT5M30S", 330},
		{"PT1H30M", 5400},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT1H2M3S", 3723},
		{"PT0M0S", 0},
		{"", 0},
		{"PT", 0},
		{"5M30S", 0},
		{"PT5X", 0},
		{"PT5", 0},
	}
	for _, tt := range tests {
		if got := ParseISO8601Duration(tt.in); got != tt.want {
			t.Errorf("ParseISO8601Duration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
