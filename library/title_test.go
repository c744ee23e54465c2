package library

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name   string
		folder string
		want   string
	}{
		{"year in parens", "Best of the Brave and the Bold (1988)", "Best of the Brave and the Bold"},
		{"sort ordinal", "1. A New Hope", "A New Hope"},
		{"parenthesized ordinal then numeric dash", "(2) 03 - Spawn", "Spawn"},
		{"brackets", "Marvel Team-Up [Complete]", "Marvel Team-Up"},
		{"issue range", "Spider-Man 1 - 10", "Spider-Man"},
		{"volume marker", "Nexus v2 (1985)", "Nexus"},
		{"volume marker uppercase", "Nexus V3", "Nexus"},
		{"lonely apostrophe", "Hellblazer '", "Hellblazer"},
		{"high ascii", "Café Comics", "Caf Comics"},
		{"annuals", "Hellboy Annuals", "Hellboy"},
		{"annuals with dash", "Hellboy - annuals 1-3", "Hellboy"},
		{"hash removed, underscores kept", "Green_Lantern #1", "Green_Lantern 1"},
		{"leading year eaten", "2000 AD", "AD"},
		{"empty result falls back", "(1999)", "(1999)"},
		{"empty input", "", ""},
		{"plain", "Nexus", "Nexus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.folder); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.folder, got, tt.want)
			}
		})
	}
}
