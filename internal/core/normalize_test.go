package core

import "testing"

func TestNormalizeComplexity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Simple", ComplexitySimple},
		{"simple", ComplexitySimple},
		{"LOW", ComplexitySimple},
		{"easy", ComplexitySimple},
		{"1", ComplexitySimple},
		{"Medium", ComplexityMedium},
		{"moderate", ComplexityMedium},
		{"med", ComplexityMedium},
		{"2", ComplexityMedium},
		{"Complex", ComplexityComplex},
		{"high", ComplexityComplex},
		{"HARD", ComplexityComplex},
		{"3", ComplexityComplex},
		{"  high  ", ComplexityComplex},
		// Unrecognized and empty input fall back to Medium
		{"", ComplexityMedium},
		{"banana", ComplexityMedium},
		{"42", ComplexityMedium},
	}

	for _, tt := range tests {
		if got := NormalizeComplexity(tt.in); got != tt.want {
			t.Errorf("NormalizeComplexity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeComplexity_Idempotent(t *testing.T) {
	for _, v := range []string{ComplexitySimple, ComplexityMedium, ComplexityComplex} {
		if got := NormalizeComplexity(v); got != v {
			t.Errorf("NormalizeComplexity(%q) = %q, want unchanged", v, got)
		}
	}
}

func TestStandardScheme_Normalize(t *testing.T) {
	scheme := SchemeByName("standard")

	tests := []struct {
		in   string
		want string
	}{
		{"Planned", StatusPlanned},
		{"planning", StatusPlanned},
		{"backlog", StatusPlanned},
		{"In Development", StatusInDevelopment},
		{"in-progress", StatusInDevelopment},
		{"WIP", StatusInDevelopment},
		{"Released", StatusReleased},
		{"live", StatusReleased},
		{"production", StatusReleased},
		{"done", StatusReleased},
		// Unknown and empty map to the scheme default
		{"", StatusPlanned},
		{"nonsense", StatusPlanned},
	}

	for _, tt := range tests {
		if got := scheme.Normalize(tt.in); got != tt.want {
			t.Errorf("standard.Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeliveryScheme_Normalize(t *testing.T) {
	scheme := SchemeByName("delivery")

	tests := []struct {
		in   string
		want string
	}{
		{"In Development", StatusInDevelopment},
		{"In Progress", StatusInProgress},
		{"Testing", StatusTesting},
		{"Completed", StatusCompleted},
		{"Deployed", StatusDeployed},
		{"live", StatusDeployed},
		{"released", StatusDeployed},
		{"", StatusInDevelopment},
		{"nonsense", StatusInDevelopment},
	}

	for _, tt := range tests {
		if got := scheme.Normalize(tt.in); got != tt.want {
			t.Errorf("delivery.Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScheme_NormalizeIdempotent(t *testing.T) {
	for _, name := range []string{"standard", "delivery"} {
		scheme := SchemeByName(name)
		for _, member := range scheme.Members {
			if got := scheme.Normalize(member); got != member {
				t.Errorf("%s.Normalize(%q) = %q, want unchanged", name, member, got)
			}
		}
	}
}

func TestSchemeByName(t *testing.T) {
	if got := SchemeByName("delivery").Name; got != "delivery" {
		t.Errorf("SchemeByName(delivery).Name = %q", got)
	}
	if got := SchemeByName("DELIVERY").Name; got != "delivery" {
		t.Errorf("SchemeByName(DELIVERY).Name = %q", got)
	}
	// Unknown names fall back to standard
	if got := SchemeByName("whatever").Name; got != "standard" {
		t.Errorf("SchemeByName(whatever).Name = %q, want standard", got)
	}
}

func TestScheme_Contains(t *testing.T) {
	scheme := SchemeByName("standard")
	if !scheme.Contains(StatusReleased) {
		t.Errorf("standard.Contains(%q) = false", StatusReleased)
	}
	if scheme.Contains(StatusDeployed) {
		t.Errorf("standard.Contains(%q) = true", StatusDeployed)
	}
}
