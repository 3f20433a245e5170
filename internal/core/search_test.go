package core

import "testing"

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantText  string
		wantYear  int
		wantMonth int
	}{
		{"plain text", "auth module", "auth module", 0, 0},
		{"bare year", "2024", "", 2024, 0},
		{"bare month number", "3", "", 0, 3},
		{"month name", "march", "", 0, 3},
		{"month abbreviation", "Dec", "", 0, 12},
		{"text and year", "auth 2024", "auth", 2024, 0},
		{"text year month", "auth 2024 march", "auth", 2024, 3},
		{"month number out of range", "13", "13", 0, 0},
		{"zero month", "0", "0", 0, 0},
		{"four digit non year keeps first", "2024 2025", "2025", 2024, 0},
		{"empty", "", "", 0, 0},
		{"whitespace", "   ", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSearchQuery(tt.in)
			if got.Text != tt.wantText || got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("ParseSearchQuery(%q) = %+v, want {Text:%q Year:%d Month:%d}",
					tt.in, got, tt.wantText, tt.wantYear, tt.wantMonth)
			}
		})
	}
}
