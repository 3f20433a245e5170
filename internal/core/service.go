package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/caretower/component-tracker/internal/broadcast"
	"github.com/google/uuid"
)

// Service provides the component tracker's business logic: CRUD with change
// broadcasting, listing/search, CSV export, analytics, and the ingestion
// pipeline (ingest.go).
type Service struct {
	store  ComponentStore
	hub    Broadcaster
	scheme StatusScheme
}

// NewService creates a Service over the given store and broadcaster.
func NewService(store ComponentStore, hub Broadcaster, scheme StatusScheme) *Service {
	return &Service{
		store:  store,
		hub:    hub,
		scheme: scheme,
	}
}

// StatusScheme returns the status enumeration active for this deployment.
func (s *Service) StatusScheme() StatusScheme {
	return s.scheme
}

// ComponentInput carries the client-supplied fields for create and the
// full-record shape for upsert-by-identifier.
type ComponentInput struct {
	ComponentID   string `json:"componentId"`
	Name          string `json:"name"`
	ComponentType string `json:"componentType"`
	Description   string `json:"description"`
	Tower         string `json:"tower"`
	Owner         string `json:"owner"`
	Complexity    string `json:"complexity"`
	Status        string `json:"status"`
	ChangeType    string `json:"changeType"`
	ReleaseYear   int    `json:"releaseYear"`
	ReleaseMonth  int    `json:"releaseMonth"`
}

// CreateComponent normalizes and persists a new component, then broadcasts
// a create event. The component identifier is minted when absent.
func (s *Service) CreateComponent(ctx context.Context, in ComponentInput) (*Component, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	c := &Component{
		ComponentID:   strings.TrimSpace(in.ComponentID),
		Name:          name,
		ComponentType: defaultIfEmpty(in.ComponentType, name),
		Description:   strings.TrimSpace(in.Description),
		Tower:         defaultIfEmpty(in.Tower, "General"),
		Owner:         defaultIfEmpty(in.Owner, "Unknown"),
		Complexity:    NormalizeComplexity(in.Complexity),
		Status:        s.scheme.Normalize(in.Status),
		ChangeType:    strings.TrimSpace(in.ChangeType),
		ReleaseYear:   in.ReleaseYear,
		ReleaseMonth:  in.ReleaseMonth,
	}
	if c.ComponentID == "" {
		c.ComponentID = NewComponentID()
	}

	created, err := s.store.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	ev := broadcast.NewEvent(broadcast.ActionCreate, created.ID)
	ev.Payload = created
	s.hub.Broadcast(ev)

	return created, nil
}

// GetComponent returns a single component by its server-assigned id.
func (s *Service) GetComponent(ctx context.Context, id int64) (*Component, error) {
	return s.store.Get(ctx, id)
}

// UpdateComponent applies a partial update and broadcasts an update event.
// Status and complexity values are normalized before persisting so the
// stored values are always enumeration members.
func (s *Service) UpdateComponent(ctx context.Context, id int64, upd ComponentUpdate) (*Component, error) {
	if upd.Complexity != nil {
		v := NormalizeComplexity(*upd.Complexity)
		upd.Complexity = &v
	}
	if upd.Status != nil {
		v := s.scheme.Normalize(*upd.Status)
		upd.Status = &v
	}

	updated, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	ev := broadcast.NewEvent(broadcast.ActionUpdate, updated.ID)
	ev.Payload = updated
	s.hub.Broadcast(ev)

	return updated, nil
}

// DeleteComponent removes a component and broadcasts a delete event.
// Deletion is final; there is no soft-delete.
func (s *Service) DeleteComponent(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.Broadcast(broadcast.NewEvent(broadcast.ActionDelete, id))
	return nil
}

// BatchDeleteComponents removes a set of components by id. Identifiers that
// do not exist are skipped silently: they are simply absent from the result.
// One delete event covering the whole set is broadcast.
func (s *Service) BatchDeleteComponents(ctx context.Context, ids []int64) (BatchDeleteResult, error) {
	res, err := s.store.BatchDelete(ctx, ids)
	if err != nil {
		return BatchDeleteResult{}, err
	}

	if res.DeletedCount > 0 {
		ev := broadcast.Event{
			Action:     broadcast.ActionDelete,
			SubjectIDs: res.DeletedIDs,
			Timestamp:  time.Now().UTC(),
		}
		s.hub.Broadcast(ev)
	}

	return res, nil
}

// ListComponents returns components matching the filter. Free-text search is
// parsed for year/month tokens before the store query runs.
func (s *Service) ListComponents(ctx context.Context, f Filter) ([]Component, error) {
	f = resolveSearch(f)
	return s.store.List(ctx, f)
}

// Analytics returns dashboard aggregations over the current store contents.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	return s.store.Analytics(ctx)
}

// ExportCSV writes the filtered component set as delimited text. The header
// leads with component_id and name so a re-upload of the export updates the
// same records, display names included, instead of duplicating them.
func (s *Service) ExportCSV(ctx context.Context, f Filter, w io.Writer) error {
	components, err := s.ListComponents(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := append([]string{"component_id", "name"}, baseColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range components {
		row := []string{
			c.ComponentID,
			c.Name,
			c.Tower,
			c.Owner,
			c.ComponentType,
			c.Complexity,
			c.Status,
			itoaOrEmpty(c.ReleaseYear),
			itoaOrEmpty(c.ReleaseMonth),
			c.ChangeType,
			c.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// NewComponentID mints a stable business identifier: CMP- followed by the
// first 8 hex digits of a random UUID, uppercased.
func NewComponentID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "CMP-" + strings.ToUpper(hex[:8])
}

// resolveSearch splits the raw search string into its text and date parts.
func resolveSearch(f Filter) Filter {
	if strings.TrimSpace(f.Search) == "" {
		f.Search = ""
		return f
	}
	sq := ParseSearchQuery(f.Search)
	f.Search = sq.Text
	f.SearchYear = sq.Year
	f.SearchMonth = sq.Month
	return f
}

func defaultIfEmpty(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func itoaOrEmpty(i int) string {
	if i == 0 {
		return ""
	}
	return strconv.Itoa(i)
}
