package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caretower/component-tracker/internal/core"
)

// schemaDDL creates the components table and its query indexes. Idempotent
// so it can run on every startup when auto-migration is enabled.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS components (
	id             BIGSERIAL PRIMARY KEY,
	component_id   TEXT        NOT NULL UNIQUE,
	name           TEXT        NOT NULL,
	component_type TEXT        NOT NULL DEFAULT '',
	description    TEXT,
	tower          TEXT        NOT NULL DEFAULT 'General',
	owner_group    TEXT        NOT NULL DEFAULT 'Unknown',
	complexity     TEXT        NOT NULL DEFAULT 'Medium',
	status         TEXT        NOT NULL,
	change_type    TEXT,
	release_year   INT         NOT NULL DEFAULT 0,
	release_month  INT         NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_components_tower      ON components (tower);
CREATE INDEX IF NOT EXISTS idx_components_status     ON components (status);
CREATE INDEX IF NOT EXISTS idx_components_complexity ON components (complexity);
CREATE INDEX IF NOT EXISTS idx_components_release    ON components (release_year, release_month);
CREATE INDEX IF NOT EXISTS idx_components_updated    ON components (updated_at DESC);
`

// EnsureSchema creates the components table and indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// sampleComponents seeds an empty deployment with recognizable data.
var sampleComponents = []core.Component{
	{
		ComponentID:   "CMP-AUTH0001",
		Name:          "Patient Authentication Service",
		ComponentType: "Auth Module",
		Description:   "Secure authentication service for patient portal access",
		Tower:         "Security",
		Owner:         "Security Team",
		Complexity:    core.ComplexityComplex,
		Status:        core.StatusReleased,
		ReleaseYear:   2024,
		ReleaseMonth:  3,
	},
	{
		ComponentID:   "CMP-EHRA0002",
		Name:          "Electronic Health Records API",
		ComponentType: "Core API",
		Description:   "Core API for managing electronic health records",
		Tower:         "Healthcare",
		Owner:         "EHR Team",
		Complexity:    core.ComplexityComplex,
		Status:        core.StatusInDevelopment,
		ReleaseYear:   2024,
		ReleaseMonth:  4,
	},
	{
		ComponentID:   "CMP-NTFY0003",
		Name:          "Patient Notification System",
		ComponentType: "Messaging",
		Description:   "Automated notification system for patient communications",
		Tower:         "Communication",
		Owner:         "Communication Team",
		Complexity:    core.ComplexityMedium,
		Status:        core.StatusReleased,
		ReleaseYear:   2024,
		ReleaseMonth:  2,
	},
	{
		ComponentID:   "CMP-BILL0004",
		Name:          "Billing Integration Module",
		ComponentType: "Integration",
		Description:   "Integration module for third-party billing systems",
		Tower:         "Finance",
		Owner:         "Finance Team",
		Complexity:    core.ComplexityComplex,
		Status:        core.StatusInDevelopment,
		ReleaseYear:   2024,
		ReleaseMonth:  5,
	},
	{
		ComponentID:   "CMP-DASH0005",
		Name:          "Provider Dashboard",
		ComponentType: "Frontend",
		Description:   "Healthcare provider dashboard for patient management",
		Tower:         "Frontend",
		Owner:         "UI/UX Team",
		Complexity:    core.ComplexityMedium,
		Status:        core.StatusPlanned,
		ReleaseYear:   2024,
		ReleaseMonth:  6,
	},
}

// Seed inserts sample components when the table is empty. No-op otherwise.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM components`).Scan(&count); err != nil {
		return fmt.Errorf("seed count: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range sampleComponents {
		if _, err := s.Create(ctx, &sampleComponents[i]); err != nil {
			return fmt.Errorf("seed insert: %w", err)
		}
	}

	slog.Info("seeded sample components", "count", len(sampleComponents))
	return nil
}
