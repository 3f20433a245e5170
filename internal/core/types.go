// Package core provides the business logic for the component tracker:
// the field normalizer, file parsers, record validator, ingestion pipeline,
// and the service that ties them to the store and the change broadcaster.
// This package has no HTTP dependencies and can be driven by any frontend.
package core

import (
	"context"
	"time"

	"github.com/caretower/component-tracker/internal/broadcast"
)

// Component is the central entity: one tracked software component.
type Component struct {
	ID            int64     `json:"id"`
	ComponentID   string    `json:"componentId"`
	Name          string    `json:"name"`
	ComponentType string    `json:"componentType"`
	Description   string    `json:"description"`
	Tower         string    `json:"tower"`
	Owner         string    `json:"owner"`
	Complexity    string    `json:"complexity"`
	Status        string    `json:"status"`
	ChangeType    string    `json:"changeType,omitempty"`
	ReleaseYear   int       `json:"releaseYear"`
	ReleaseMonth  int       `json:"releaseMonth"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ComponentUpdate is a partial update: nil fields are left unchanged.
type ComponentUpdate struct {
	Name          *string `json:"name"`
	ComponentType *string `json:"componentType"`
	Description   *string `json:"description"`
	Tower         *string `json:"tower"`
	Owner         *string `json:"owner"`
	Complexity    *string `json:"complexity"`
	Status        *string `json:"status"`
	ChangeType    *string `json:"changeType"`
	ReleaseYear   *int    `json:"releaseYear"`
	ReleaseMonth  *int    `json:"releaseMonth"`
}

// Filter narrows a component listing. All set fields combine with AND.
// SearchYear and SearchMonth are derived from Search by ParseSearchQuery and
// widen the free-text match, not the overall filter.
type Filter struct {
	Search      string
	SearchYear  int
	SearchMonth int
	Tower       string
	Status      string
	Complexity  string
	Year        int
	Month       int
}

// BatchDeleteResult reports which of the requested identifiers were deleted.
// Identifiers that did not exist are simply absent from DeletedIDs.
type BatchDeleteResult struct {
	DeletedCount int     `json:"deletedCount"`
	DeletedIDs   []int64 `json:"deletedIds"`
}

// RawRecord is one unvalidated row as extracted by a file parser.
// All values are raw strings; normalization and defaulting happen in the
// validator.
type RawRecord struct {
	ComponentID   string
	Name          string
	Tower         string
	AppGroup      string
	ComponentType string
	Complexity    string
	Status        string
	Year          string
	Month         string
	ChangeType    string
	Description   string
}

// Record is a validated, normalized record ready for upsert.
type Record struct {
	ComponentID   string
	Name          string
	Tower         string
	Owner         string
	ComponentType string
	Complexity    string
	Status        string
	ReleaseYear   int
	ReleaseMonth  int
	ChangeType    string
	Description   string
}

// UploadResult summarizes one ingestion batch. It exists only for the
// duration of the upload request/response cycle and is never persisted.
type UploadResult struct {
	Success   bool          `json:"success"`
	FileName  string        `json:"fileName"`
	TotalRows int           `json:"totalRows"`
	Created   int           `json:"createdCount"`
	Updated   int           `json:"updatedCount"`
	Errors    []string      `json:"errors"`
	Duration  time.Duration `json:"-"`
}

// MonthlyCount is one bucket of the monthly release trend.
type MonthlyCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// Analytics aggregates the current store contents for the dashboard.
type Analytics struct {
	TotalComponents        int            `json:"totalComponents"`
	StatusDistribution     map[string]int `json:"statusDistribution"`
	ComplexityDistribution map[string]int `json:"complexityDistribution"`
	TowerDistribution      map[string]int `json:"towerDistribution"`
	MonthlyReleases        []MonthlyCount `json:"monthlyReleases"`
	RecentComponents       []Component    `json:"recentComponents"`
}

// ComponentStore is the persistence boundary. The pgx implementation lives
// in internal/store; tests use the in-memory implementation.
//
// Each call is individually atomic; callers get no cross-call transaction.
type ComponentStore interface {
	Create(ctx context.Context, c *Component) (*Component, error)
	Get(ctx context.Context, id int64) (*Component, error)
	GetByComponentID(ctx context.Context, componentID string) (*Component, error)
	Update(ctx context.Context, id int64, upd ComponentUpdate) (*Component, error)
	Delete(ctx context.Context, id int64) error
	BatchDelete(ctx context.Context, ids []int64) (BatchDeleteResult, error)
	List(ctx context.Context, f Filter) ([]Component, error)
	Analytics(ctx context.Context) (*Analytics, error)
}

// Broadcaster publishes change events to connected subscribers.
// Satisfied by *broadcast.Hub.
type Broadcaster interface {
	Broadcast(ev broadcast.Event)
}
