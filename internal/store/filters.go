package store

import (
	"fmt"
	"strings"

	"github.com/caretower/component-tracker/internal/core"
)

// buildListQuery renders the filter as SQL. Classification filters combine
// with AND; the free-text search is one OR group matching name/description
// case-insensitively plus any release year/month tokens parsed out of the
// search string.
func buildListQuery(f core.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" || f.SearchYear > 0 || f.SearchMonth > 0 {
		var ors []string
		if f.Search != "" {
			p := arg("%" + f.Search + "%")
			ors = append(ors, fmt.Sprintf("name ILIKE %s", p), fmt.Sprintf("description ILIKE %s", p))
		}
		if f.SearchYear > 0 {
			ors = append(ors, fmt.Sprintf("release_year = %s", arg(f.SearchYear)))
		}
		if f.SearchMonth > 0 {
			ors = append(ors, fmt.Sprintf("release_month = %s", arg(f.SearchMonth)))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	if f.Tower != "" {
		where = append(where, fmt.Sprintf("tower = %s", arg(f.Tower)))
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = %s", arg(f.Status)))
	}
	if f.Complexity != "" {
		where = append(where, fmt.Sprintf("complexity = %s", arg(f.Complexity)))
	}
	if f.Year > 0 {
		where = append(where, fmt.Sprintf("release_year = %s", arg(f.Year)))
	}
	if f.Month > 0 {
		where = append(where, fmt.Sprintf("release_month = %s", arg(f.Month)))
	}

	query := `SELECT ` + componentColumns + ` FROM components`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id DESC"

	return query, args
}
