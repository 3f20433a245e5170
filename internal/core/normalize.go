package core

import "strings"

// Canonical complexity values.
const (
	ComplexitySimple  = "Simple"
	ComplexityMedium  = "Medium"
	ComplexityComplex = "Complex"
)

// Canonical status values across both schemes.
const (
	StatusPlanned       = "Planned"
	StatusInDevelopment = "In Development"
	StatusReleased      = "Released"
	StatusInProgress    = "In Progress"
	StatusTesting       = "Testing"
	StatusCompleted     = "Completed"
	StatusDeployed      = "Deployed"
)

// complexityAliases maps lower-cased free-text values onto the closed
// complexity enumeration. Anything not in the table falls back to Medium.
var complexityAliases = map[string]string{
	"simple":    ComplexitySimple,
	"low":       ComplexitySimple,
	"easy":      ComplexitySimple,
	"basic":     ComplexitySimple,
	"small":     ComplexitySimple,
	"1":         ComplexitySimple,
	"medium":    ComplexityMedium,
	"moderate":  ComplexityMedium,
	"med":       ComplexityMedium,
	"2":         ComplexityMedium,
	"complex":   ComplexityComplex,
	"high":      ComplexityComplex,
	"hard":      ComplexityComplex,
	"difficult": ComplexityComplex,
	"advanced":  ComplexityComplex,
	"3":         ComplexityComplex,
}

// NormalizeComplexity maps an arbitrary string onto Simple/Medium/Complex.
// It is total: unrecognized input (including empty) maps to Medium rather
// than failing. The mapping is idempotent for canonical values.
func NormalizeComplexity(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := complexityAliases[key]; ok {
		return v
	}
	return ComplexityMedium
}

// StatusScheme is the status enumeration for one deployment. Which scheme is
// active is configuration, not a universal constant.
type StatusScheme struct {
	Name    string
	Members []string
	Default string
	aliases map[string]string
}

// standardScheme is the three-state lifecycle used by most deployments.
var standardScheme = StatusScheme{
	Name:    "standard",
	Members: []string{StatusPlanned, StatusInDevelopment, StatusReleased},
	Default: StatusPlanned,
	aliases: map[string]string{
		"planned":        StatusPlanned,
		"planning":       StatusPlanned,
		"plan":           StatusPlanned,
		"backlog":        StatusPlanned,
		"proposed":       StatusPlanned,
		"in development": StatusInDevelopment,
		"in-development": StatusInDevelopment,
		"indevelopment":  StatusInDevelopment,
		"development":    StatusInDevelopment,
		"dev":            StatusInDevelopment,
		"in progress":    StatusInDevelopment,
		"in-progress":    StatusInDevelopment,
		"inprogress":     StatusInDevelopment,
		"wip":            StatusInDevelopment,
		"released":       StatusReleased,
		"release":        StatusReleased,
		"live":           StatusReleased,
		"production":     StatusReleased,
		"prod":           StatusReleased,
		"deployed":       StatusReleased,
		"deploy":         StatusReleased,
		"shipped":        StatusReleased,
		"done":           StatusReleased,
		"complete":       StatusReleased,
		"completed":      StatusReleased,
		"finished":       StatusReleased,
		"ga":             StatusReleased,
	},
}

// deliveryScheme is the five-state variant used by delivery-pipeline
// deployments.
var deliveryScheme = StatusScheme{
	Name:    "delivery",
	Members: []string{StatusInDevelopment, StatusInProgress, StatusTesting, StatusCompleted, StatusDeployed},
	Default: StatusInDevelopment,
	aliases: map[string]string{
		"in development": StatusInDevelopment,
		"in-development": StatusInDevelopment,
		"indevelopment":  StatusInDevelopment,
		"development":    StatusInDevelopment,
		"dev":            StatusInDevelopment,
		"planned":        StatusInDevelopment,
		"planning":       StatusInDevelopment,
		"in progress":    StatusInProgress,
		"in-progress":    StatusInProgress,
		"inprogress":     StatusInProgress,
		"progress":       StatusInProgress,
		"wip":            StatusInProgress,
		"testing":        StatusTesting,
		"test":           StatusTesting,
		"qa":             StatusTesting,
		"completed":      StatusCompleted,
		"complete":       StatusCompleted,
		"done":           StatusCompleted,
		"finished":       StatusCompleted,
		"deployed":       StatusDeployed,
		"deploy":         StatusDeployed,
		"production":     StatusDeployed,
		"prod":           StatusDeployed,
		"live":           StatusDeployed,
		"released":       StatusDeployed,
	},
}

// SchemeByName returns the status scheme for a configured name.
// Unknown names fall back to the standard scheme.
func SchemeByName(name string) StatusScheme {
	if strings.EqualFold(strings.TrimSpace(name), deliveryScheme.Name) {
		return deliveryScheme
	}
	return standardScheme
}

// Normalize maps an arbitrary string onto a member of the scheme.
// Like NormalizeComplexity it is total and never fails: unmatched input
// (including empty) maps to the scheme default. This permissive policy is
// deliberate; ambiguous values are categorized conservatively, not rejected.
func (s StatusScheme) Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := s.aliases[key]; ok {
		return v
	}
	return s.Default
}

// Contains reports whether v is a member of the scheme.
func (s StatusScheme) Contains(v string) bool {
	for _, m := range s.Members {
		if m == v {
			return true
		}
	}
	return false
}
