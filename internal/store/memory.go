package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/caretower/component-tracker/internal/core"
)

// Memory is an in-process core.ComponentStore. It backs the test suite and
// the DATABASE_URL=memory development mode; its filtering and ordering match
// the SQL implementation.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*core.Component
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1, byID: make(map[int64]*core.Component)}
}

func (m *Memory) Create(ctx context.Context, c *core.Component) (*core.Component, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if existing.ComponentID == c.ComponentID {
			return nil, fmt.Errorf("component %q already exists", c.ComponentID)
		}
	}

	now := time.Now().UTC()
	stored := *c
	stored.ID = m.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.nextID++
	m.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *Memory) Get(ctx context.Context, id int64) (*core.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *Memory) GetByComponentID(ctx context.Context, componentID string) (*core.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.byID {
		if c.ComponentID == componentID {
			out := *c
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *Memory) Update(ctx context.Context, id int64, upd core.ComponentUpdate) (*core.Component, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.ComponentType != nil {
		c.ComponentType = *upd.ComponentType
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Tower != nil {
		c.Tower = *upd.Tower
	}
	if upd.Owner != nil {
		c.Owner = *upd.Owner
	}
	if upd.Complexity != nil {
		c.Complexity = *upd.Complexity
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.ChangeType != nil {
		c.ChangeType = *upd.ChangeType
	}
	if upd.ReleaseYear != nil {
		c.ReleaseYear = *upd.ReleaseYear
	}
	if upd.ReleaseMonth != nil {
		c.ReleaseMonth = *upd.ReleaseMonth
	}
	c.UpdatedAt = time.Now().UTC()

	out := *c
	return &out, nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *Memory) BatchDelete(ctx context.Context, ids []int64) (core.BatchDeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := core.BatchDeleteResult{DeletedIDs: []int64{}}
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			delete(m.byID, id)
			res.DeletedIDs = append(res.DeletedIDs, id)
		}
	}
	res.DeletedCount = len(res.DeletedIDs)
	return res, nil
}

func (m *Memory) List(ctx context.Context, f core.Filter) ([]core.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Component, 0, len(m.byID))
	for _, c := range m.byID {
		if matches(c, f) {
			out = append(out, *c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) Analytics(ctx context.Context) (*core.Analytics, error) {
	all, err := m.List(ctx, core.Filter{})
	if err != nil {
		return nil, err
	}

	a := &core.Analytics{
		TotalComponents:        len(all),
		StatusDistribution:     map[string]int{},
		ComplexityDistribution: map[string]int{},
		TowerDistribution:      map[string]int{},
		MonthlyReleases:        []core.MonthlyCount{},
		RecentComponents:       []core.Component{},
	}

	monthly := map[[2]int]int{}
	for _, c := range all {
		a.StatusDistribution[c.Status]++
		a.ComplexityDistribution[c.Complexity]++
		a.TowerDistribution[c.Tower]++
		if c.ReleaseYear > 0 && c.ReleaseMonth > 0 {
			monthly[[2]int{c.ReleaseYear, c.ReleaseMonth}]++
		}
	}

	keys := make([][2]int, 0, len(monthly))
	for k := range monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		a.MonthlyReleases = append(a.MonthlyReleases, core.MonthlyCount{Year: k[0], Month: k[1], Count: monthly[k]})
	}

	if len(all) > recentLimit {
		all = all[:recentLimit]
	}
	a.RecentComponents = all

	return a, nil
}

// Seed inserts the sample components when the store is empty.
func (m *Memory) Seed(ctx context.Context) error {
	m.mu.RLock()
	empty := len(m.byID) == 0
	m.mu.RUnlock()
	if !empty {
		return nil
	}

	for i := range sampleComponents {
		if _, err := m.Create(ctx, &sampleComponents[i]); err != nil {
			return err
		}
	}
	return nil
}

// matches mirrors the WHERE clause built by buildListQuery.
func matches(c *core.Component, f core.Filter) bool {
	if f.Search != "" || f.SearchYear > 0 || f.SearchMonth > 0 {
		hit := false
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if strings.Contains(strings.ToLower(c.Name), needle) ||
				strings.Contains(strings.ToLower(c.Description), needle) {
				hit = true
			}
		}
		if f.SearchYear > 0 && c.ReleaseYear == f.SearchYear {
			hit = true
		}
		if f.SearchMonth > 0 && c.ReleaseMonth == f.SearchMonth {
			hit = true
		}
		if !hit {
			return false
		}
	}
	if f.Tower != "" && c.Tower != f.Tower {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Complexity != "" && c.Complexity != f.Complexity {
		return false
	}
	if f.Year > 0 && c.ReleaseYear != f.Year {
		return false
	}
	if f.Month > 0 && c.ReleaseMonth != f.Month {
		return false
	}
	return true
}
