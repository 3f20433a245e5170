package store

import (
	"context"
	"fmt"

	"github.com/caretower/component-tracker/internal/core"
)

const recentLimit = 10

// Analytics computes the dashboard aggregations in a handful of queries.
// The counts can be marginally inconsistent with each other under concurrent
// writes; the dashboard refreshes often enough that this does not matter.
func (s *Store) Analytics(ctx context.Context) (*core.Analytics, error) {
	a := &core.Analytics{
		StatusDistribution:     map[string]int{},
		ComplexityDistribution: map[string]int{},
		TowerDistribution:      map[string]int{},
		MonthlyReleases:        []core.MonthlyCount{},
		RecentComponents:       []core.Component{},
	}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM components`).Scan(&a.TotalComponents); err != nil {
		return nil, fmt.Errorf("analytics total: %w", err)
	}

	if err := s.countBy(ctx, "status", a.StatusDistribution); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "complexity", a.ComplexityDistribution); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "tower", a.TowerDistribution); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT release_year, release_month, COUNT(*)
		FROM components
		WHERE release_year > 0 AND release_month > 0
		GROUP BY release_year, release_month
		ORDER BY release_year, release_month`)
	if err != nil {
		return nil, fmt.Errorf("analytics monthly: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mc core.MonthlyCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("analytics monthly scan: %w", err)
		}
		a.MonthlyReleases = append(a.MonthlyReleases, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics monthly rows: %w", err)
	}

	recent, err := s.List(ctx, core.Filter{})
	if err != nil {
		return nil, fmt.Errorf("analytics recent: %w", err)
	}
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	a.RecentComponents = recent

	return a, nil
}

// countBy fills dist with a GROUP BY over the given column. The column name
// is always one of our own fixed identifiers, never caller input.
func (s *Store) countBy(ctx context.Context, column string, dist map[string]int) error {
	q := fmt.Sprintf(`SELECT %s, COUNT(*) FROM components GROUP BY %s`, column, column)
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("analytics %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("analytics %s scan: %w", column, err)
		}
		dist[key] = n
	}
	return rows.Err()
}
