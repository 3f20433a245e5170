// Package store implements the component persistence boundary on
// PostgreSQL via pgx, plus an in-memory implementation used by tests and
// database-less development.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caretower/component-tracker/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// componentColumns is the select list shared by every query that scans a
// full component row.
const componentColumns = `id, component_id, name, component_type, description,
	tower, owner_group, complexity, status, change_type,
	release_year, release_month, created_at, updated_at`

// Store is the PostgreSQL-backed core.ComponentStore.
type Store struct {
	db DBTX
}

// New creates a Store over a pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Create inserts a component and returns it with its server-assigned id and
// timestamps.
func (s *Store) Create(ctx context.Context, c *core.Component) (*core.Component, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO components
			(component_id, name, component_type, description, tower, owner_group,
			 complexity, status, change_type, release_year, release_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+componentColumns,
		c.ComponentID, c.Name, c.ComponentType, toPgText(c.Description),
		c.Tower, c.Owner, c.Complexity, c.Status, toPgText(c.ChangeType),
		c.ReleaseYear, c.ReleaseMonth,
	)

	created, err := scanComponent(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("component %q already exists: %w", c.ComponentID, err)
		}
		return nil, fmt.Errorf("create component: %w", err)
	}
	return created, nil
}

// Get returns a component by its server-assigned id.
func (s *Store) Get(ctx context.Context, id int64) (*core.Component, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+componentColumns+` FROM components WHERE id = $1`, id)

	c, err := scanComponent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get component %d: %w", id, err)
	}
	return c, nil
}

// GetByComponentID returns a component by its stable business identifier.
func (s *Store) GetByComponentID(ctx context.Context, componentID string) (*core.Component, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+componentColumns+` FROM components WHERE component_id = $1`, componentID)

	c, err := scanComponent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get component %q: %w", componentID, err)
	}
	return c, nil
}

// Update applies the non-nil fields of upd and returns the updated row.
// Returns core.ErrNotFound when the id does not exist.
func (s *Store) Update(ctx context.Context, id int64, upd core.ComponentUpdate) (*core.Component, error) {
	sets := []string{"updated_at = now()"}
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.ComponentType != nil {
		add("component_type", *upd.ComponentType)
	}
	if upd.Description != nil {
		add("description", toPgText(*upd.Description))
	}
	if upd.Tower != nil {
		add("tower", *upd.Tower)
	}
	if upd.Owner != nil {
		add("owner_group", *upd.Owner)
	}
	if upd.Complexity != nil {
		add("complexity", *upd.Complexity)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.ChangeType != nil {
		add("change_type", toPgText(*upd.ChangeType))
	}
	if upd.ReleaseYear != nil {
		add("release_year", *upd.ReleaseYear)
	}
	if upd.ReleaseMonth != nil {
		add("release_month", *upd.ReleaseMonth)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE components SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), componentColumns,
	)

	c, err := scanComponent(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("update component %d: %w", id, err)
	}
	return c, nil
}

// Delete removes a component. Returns core.ErrNotFound when the id does not
// exist; deletion is final.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM components WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete component %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// BatchDelete removes every existing component in ids and reports which ones
// were deleted. Nonexistent ids are not errors; they are simply absent from
// the result.
func (s *Store) BatchDelete(ctx context.Context, ids []int64) (core.BatchDeleteResult, error) {
	if len(ids) == 0 {
		return core.BatchDeleteResult{DeletedIDs: []int64{}}, nil
	}

	rows, err := s.db.Query(ctx,
		`DELETE FROM components WHERE id = ANY($1) RETURNING id`, ids)
	if err != nil {
		return core.BatchDeleteResult{}, fmt.Errorf("batch delete: %w", err)
	}
	defer rows.Close()

	deleted := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return core.BatchDeleteResult{}, fmt.Errorf("batch delete scan: %w", err)
		}
		deleted = append(deleted, id)
	}
	if err := rows.Err(); err != nil {
		return core.BatchDeleteResult{}, fmt.Errorf("batch delete rows: %w", err)
	}

	return core.BatchDeleteResult{
		DeletedCount: len(deleted),
		DeletedIDs:   deleted,
	}, nil
}

// List returns components matching the filter, most recently updated first.
func (s *Store) List(ctx context.Context, f core.Filter) ([]core.Component, error) {
	query, args := buildListQuery(f)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var components []core.Component
	for rows.Next() {
		c, err := scanComponentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		components = append(components, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	return components, nil
}

// scanComponent reads one component from a single-row query.
func scanComponent(row pgx.Row) (*core.Component, error) {
	var c core.Component
	var description, changeType pgtype.Text

	err := row.Scan(
		&c.ID, &c.ComponentID, &c.Name, &c.ComponentType, &description,
		&c.Tower, &c.Owner, &c.Complexity, &c.Status, &changeType,
		&c.ReleaseYear, &c.ReleaseMonth, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.ChangeType = changeType.String
	return &c, nil
}

// scanComponentRow reads one component from a multi-row result set.
func scanComponentRow(rows pgx.Rows) (*core.Component, error) {
	return scanComponent(rows)
}

// toPgText maps empty strings to NULL.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
