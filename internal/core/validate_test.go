package core

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestValidateRecord_Valid(t *testing.T) {
	scheme := SchemeByName("standard")

	raw := RawRecord{
		Name:          " Patient Portal Login ",
		Tower:         " Security ",
		AppGroup:      "CoreBanking",
		ComponentType: "Auth Module",
		Complexity:    "low",
		Status:        "live",
		Year:          "2024",
		Month:         "3",
		ChangeType:    "Enhancement",
		Description:   "Token refresh",
	}

	rec, verr := ValidateRecord(raw, 1, scheme, testNow)
	if verr != nil {
		t.Fatalf("ValidateRecord() error = %v", verr)
	}

	if rec.Name != "Patient Portal Login" {
		t.Errorf("Name = %q, want %q", rec.Name, "Patient Portal Login")
	}
	if rec.Tower != "Security" {
		t.Errorf("Tower = %q, want %q", rec.Tower, "Security")
	}
	if rec.Owner != "CoreBanking" {
		t.Errorf("Owner = %q, want %q", rec.Owner, "CoreBanking")
	}
	if rec.Complexity != ComplexitySimple {
		t.Errorf("Complexity = %q, want %q", rec.Complexity, ComplexitySimple)
	}
	if rec.Status != StatusReleased {
		t.Errorf("Status = %q, want %q", rec.Status, StatusReleased)
	}
	if rec.ReleaseYear != 2024 || rec.ReleaseMonth != 3 {
		t.Errorf("Release = %d/%d, want 2024/3", rec.ReleaseYear, rec.ReleaseMonth)
	}
}

func TestValidateRecord_MissingRequired(t *testing.T) {
	scheme := SchemeByName("standard")

	tests := []struct {
		name string
		raw  RawRecord
	}{
		{"missing tower", RawRecord{AppGroup: "g", ComponentType: "t"}},
		{"missing app group", RawRecord{Tower: "T", ComponentType: "t"}},
		{"missing component type", RawRecord{Tower: "T", AppGroup: "g"}},
		{"whitespace only", RawRecord{Tower: "  ", AppGroup: "g", ComponentType: "t"}},
		{"all empty", RawRecord{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, verr := ValidateRecord(tt.raw, 7, scheme, testNow)
			if verr == nil {
				t.Fatal("ValidateRecord() expected error")
			}
			if verr.Error() != "Row 7: Missing required fields" {
				t.Errorf("error = %q, want %q", verr.Error(), "Row 7: Missing required fields")
			}
		})
	}
}

func TestValidateRecord_DateDefaults(t *testing.T) {
	scheme := SchemeByName("standard")

	tests := []struct {
		name      string
		year      string
		month     string
		wantYear  int
		wantMonth int
	}{
		{"both valid", "2023", "11", 2023, 11},
		{"month name", "2023", "March", 2023, 3},
		{"month abbreviation", "2023", "dec", 2023, 12},
		{"empty dates", "", "", 2025, 6},
		{"garbage dates", "soon", "later", 2025, 6},
		{"out of range year", "1492", "5", 2025, 5},
		{"out of range month", "2023", "13", 2023, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawRecord{
				Tower: "T", AppGroup: "g", ComponentType: "t",
				Year: tt.year, Month: tt.month,
			}
			rec, verr := ValidateRecord(raw, 1, scheme, testNow)
			if verr != nil {
				t.Fatalf("ValidateRecord() error = %v", verr)
			}
			if rec.ReleaseYear != tt.wantYear || rec.ReleaseMonth != tt.wantMonth {
				t.Errorf("Release = %d/%d, want %d/%d",
					rec.ReleaseYear, rec.ReleaseMonth, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestMonthByName(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"January", 1, true},
		{"jan", 1, true},
		{"SEPTEMBER", 9, true},
		{"sep", 9, true},
		{" dec ", 12, true},
		{"ja", 0, false},
		{"sept", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := MonthByName(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MonthByName(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
