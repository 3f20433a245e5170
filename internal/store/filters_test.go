package store

import (
	"strings"
	"testing"

	"github.com/caretower/component-tracker/internal/core"
)

func TestBuildListQuery_NoFilter(t *testing.T) {
	query, args := buildListQuery(core.Filter{})

	if strings.Contains(query, "WHERE") {
		t.Errorf("unfiltered query should have no WHERE clause: %s", query)
	}
	if !strings.Contains(query, "ORDER BY updated_at DESC, id DESC") {
		t.Errorf("query missing stable ordering: %s", query)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildListQuery_SearchGroup(t *testing.T) {
	query, args := buildListQuery(core.Filter{
		Search:     "auth",
		SearchYear: 2024,
	})

	if !strings.Contains(query, "name ILIKE $1 OR description ILIKE $1 OR release_year = $2") {
		t.Errorf("search OR group malformed: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want 2", args)
	}
	if args[0] != "%auth%" {
		t.Errorf("args[0] = %v, want %%auth%%", args[0])
	}
	if args[1] != 2024 {
		t.Errorf("args[1] = %v, want 2024", args[1])
	}
}

func TestBuildListQuery_DateOnlySearch(t *testing.T) {
	query, args := buildListQuery(core.Filter{SearchMonth: 3})

	if !strings.Contains(query, "(release_month = $1)") {
		t.Errorf("month-only search malformed: %s", query)
	}
	if len(args) != 1 || args[0] != 3 {
		t.Errorf("args = %v, want [3]", args)
	}
}

func TestBuildListQuery_CombinedFilters(t *testing.T) {
	query, args := buildListQuery(core.Filter{
		Search:     "auth",
		Tower:      "Security",
		Status:     "Released",
		Complexity: "Simple",
		Year:       2024,
		Month:      3,
	})

	for _, clause := range []string{
		"tower = $2",
		"status = $3",
		"complexity = $4",
		"release_year = $5",
		"release_month = $6",
	} {
		if !strings.Contains(query, clause) {
			t.Errorf("query missing %q: %s", clause, query)
		}
	}
	// The search group and the classification filters combine with AND.
	if !strings.Contains(query, ") AND tower") {
		t.Errorf("search group not ANDed with filters: %s", query)
	}
	if len(args) != 6 {
		t.Errorf("args = %v, want 6", args)
	}
}
