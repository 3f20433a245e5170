package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caretower/component-tracker/internal/broadcast"
	"github.com/caretower/component-tracker/internal/logging"
)

// Ingest runs the upload pipeline over one file: parse, validate/normalize
// each row, and upsert row by row against the store. Rows are processed in
// file order; validation and store failures are collected per row and never
// abort the batch.
//
// Upserts are not wrapped in one transaction. A batch that fails halfway
// intentionally leaves earlier rows committed: the point of an upload is to
// extract as much usable data from an imperfect file as possible, and a
// partial result plus row-addressable errors lets the user re-submit only
// the failing rows.
//
// The batch is successful when at least one record was persisted. Exactly
// one bulk_complete event is broadcast per successful batch; broadcasting
// per row would flood subscribers.
func (s *Service) Ingest(ctx context.Context, fileName string, data []byte) *UploadResult {
	start := time.Now()
	logger := logging.WithFields(ctx, "file", fileName, "bytes", len(data))

	result := &UploadResult{
		FileName: fileName,
		Errors:   []string{},
	}

	records, err := Parse(fileName, data)
	if err != nil {
		// Format-level failure: the whole call aborts with zero records.
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		logger.Warn("upload rejected", "error", err)
		return result
	}

	result.TotalRows = len(records)

	var subjectIDs []int64
	for i, raw := range records {
		rowIdx := i + 1

		rec, verr := ValidateRecord(raw, rowIdx, s.scheme, time.Now())
		if verr != nil {
			result.Errors = append(result.Errors, verr.Error())
			continue
		}

		id, created, err := s.upsertRecord(ctx, rec)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowIdx, err))
			continue
		}

		subjectIDs = append(subjectIDs, id)
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	result.Success = result.Created+result.Updated > 0
	result.Duration = time.Since(start)

	if result.Success {
		ev := broadcast.Event{
			Action:     broadcast.ActionBulkComplete,
			SubjectIDs: subjectIDs,
			Timestamp:  time.Now().UTC(),
			Payload:    result,
		}
		s.hub.Broadcast(ev)
	}

	logger.Info("upload processed",
		"rows", result.TotalRows,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result
}

// upsertRecord persists one normalized record. A record carrying a known
// component identifier updates that component in place; everything else
// creates. Rows without an identifier always create, even when an identical
// component already exists; de-duplicating on tower/owner/type is an
// unresolved question and create-always is the documented policy.
func (s *Service) upsertRecord(ctx context.Context, rec Record) (int64, bool, error) {
	if rec.ComponentID != "" {
		existing, err := s.store.GetByComponentID(ctx, rec.ComponentID)
		switch {
		case err == nil:
			updated, err := s.store.Update(ctx, existing.ID, recordToUpdate(rec))
			if err != nil {
				return 0, false, err
			}
			return updated.ID, false, nil
		case errors.Is(err, ErrNotFound):
			// Fall through to create, preserving the supplied identifier.
		default:
			return 0, false, err
		}
	}

	c := recordToComponent(rec)
	if c.ComponentID == "" {
		c.ComponentID = NewComponentID()
	}

	created, err := s.store.Create(ctx, c)
	if err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}

// recordToComponent builds a new component from an ingested record. When the
// file carries no name column the component type doubles as the display name.
func recordToComponent(rec Record) *Component {
	name := rec.Name
	if name == "" {
		name = rec.ComponentType
	}
	return &Component{
		ComponentID:   rec.ComponentID,
		Name:          name,
		ComponentType: rec.ComponentType,
		Description:   rec.Description,
		Tower:         rec.Tower,
		Owner:         rec.Owner,
		Complexity:    rec.Complexity,
		Status:        rec.Status,
		ChangeType:    rec.ChangeType,
		ReleaseYear:   rec.ReleaseYear,
		ReleaseMonth:  rec.ReleaseMonth,
	}
}

// recordToUpdate maps an ingested record onto a full-record update.
func recordToUpdate(rec Record) ComponentUpdate {
	name := rec.Name
	if name == "" {
		name = rec.ComponentType
	}
	return ComponentUpdate{
		Name:          &name,
		ComponentType: &rec.ComponentType,
		Description:   &rec.Description,
		Tower:         &rec.Tower,
		Owner:         &rec.Owner,
		Complexity:    &rec.Complexity,
		Status:        &rec.Status,
		ChangeType:    &rec.ChangeType,
		ReleaseYear:   &rec.ReleaseYear,
		ReleaseMonth:  &rec.ReleaseMonth,
	}
}
