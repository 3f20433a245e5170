package core

import (
	"strconv"
	"strings"
	"time"
)

// ValidateRecord checks one raw record and produces either a normalized
// record or a per-row error. rowIdx is 1-based so messages match what the
// user sees in their file.
//
// Required fields: tower, app/owner group, component type. Everything else
// is optional and defaulted: complexity and status through the normalizer,
// year and month to the current calendar year/month when missing or
// unparsable.
func ValidateRecord(raw RawRecord, rowIdx int, scheme StatusScheme, now time.Time) (Record, *ValidationError) {
	tower := strings.TrimSpace(raw.Tower)
	owner := strings.TrimSpace(raw.AppGroup)
	compType := strings.TrimSpace(raw.ComponentType)

	if tower == "" || owner == "" || compType == "" {
		return Record{}, &ValidationError{Row: rowIdx, Message: "Missing required fields"}
	}

	return Record{
		ComponentID:   strings.TrimSpace(raw.ComponentID),
		Name:          strings.TrimSpace(raw.Name),
		Tower:         tower,
		Owner:         owner,
		ComponentType: compType,
		Complexity:    NormalizeComplexity(raw.Complexity),
		Status:        scheme.Normalize(raw.Status),
		ReleaseYear:   parseYear(raw.Year, now),
		ReleaseMonth:  parseMonth(raw.Month, now),
		ChangeType:    strings.TrimSpace(raw.ChangeType),
		Description:   strings.TrimSpace(raw.Description),
	}, nil
}

// parseYear accepts a 4-digit calendar year; anything else defaults to the
// current year.
func parseYear(s string, now time.Time) int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1900 || y > 2999 {
		return now.Year()
	}
	return y
}

// parseMonth accepts 1-12 or a month name/abbreviation; anything else
// defaults to the current month.
func parseMonth(s string, now time.Time) int {
	s = strings.TrimSpace(s)
	if m, err := strconv.Atoi(s); err == nil && m >= 1 && m <= 12 {
		return m
	}
	if m, ok := MonthByName(s); ok {
		return m
	}
	return int(now.Month())
}

// MonthByName resolves a month name or three-letter abbreviation,
// case-insensitively. Returns false for anything unrecognized.
func MonthByName(s string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if len(key) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if key == name || key == name[:3] {
			return int(m), true
		}
	}
	return 0, false
}
