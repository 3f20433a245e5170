package core

import (
	"strconv"
	"strings"
)

// SearchQuery is a parsed free-text search: the remaining text tokens plus
// any release year/month tokens recognized in the input.
type SearchQuery struct {
	Text  string
	Year  int
	Month int
}

// ParseSearchQuery splits a free-text search into tokens and picks out the
// ones with date meaning: a bare 4-digit token matches the release year, a
// bare 1-2 digit token in 1-12 or a month name/abbreviation matches the
// release month. Everything else is rejoined as the text match, which the
// store applies case-insensitively against name and description.
//
// The date tokens widen the match (OR), they do not narrow it; "auth 2024"
// finds components whose name/description contains "auth" as well as
// components released in 2024.
func ParseSearchQuery(q string) SearchQuery {
	var sq SearchQuery
	var textTokens []string

	for _, tok := range strings.Fields(q) {
		if sq.Year == 0 && len(tok) == 4 {
			if y, err := strconv.Atoi(tok); err == nil {
				sq.Year = y
				continue
			}
		}
		if sq.Month == 0 && len(tok) <= 2 {
			if m, err := strconv.Atoi(tok); err == nil && m >= 1 && m <= 12 {
				sq.Month = m
				continue
			}
		}
		if sq.Month == 0 {
			if m, ok := MonthByName(tok); ok {
				sq.Month = m
				continue
			}
		}
		textTokens = append(textTokens, tok)
	}

	sq.Text = strings.Join(textTokens, " ")
	return sq
}
