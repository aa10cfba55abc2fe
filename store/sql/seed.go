package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leads/core"
)

const defaultSeedTimezone = "America/New_York"

// SeedDemoData populates the default tenant, two demo tenants, and their
// account mappings. It is a no-op when any tenant row already exists, so a
// restart never duplicates or rewrites seeded rows.
func SeedDemoData(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("sqlstore: bun db is required")
	}

	count, err := db.NewSelect().Model((*tenantRecord)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: count tenants: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	bobID := uuid.NewString()
	aliceID := uuid.NewString()

	tenantRows := []*tenantRecord{
		{
			ID:        core.DefaultTenantID,
			Name:      core.DefaultTenantID,
			FromEmail: "noreply@knockknock.example.com",
			Timezone:  defaultSeedTimezone,
			CreatedAt: now,
		},
		{
			ID:        bobID,
			Name:      "tenant_bob_plumbing",
			FromEmail: "bob@example.com",
			Timezone:  defaultSeedTimezone,
			CreatedAt: now,
		},
		{
			ID:        aliceID,
			Name:      "tenant_alice_hvac",
			FromEmail: "alice@example.com",
			Timezone:  defaultSeedTimezone,
			CreatedAt: now,
		},
	}
	if _, err := db.NewInsert().Model(&tenantRows).Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: seed tenants: %w", err)
	}

	mappingRows := []*accountMappingRecord{
		{
			ID:        uuid.NewString(),
			AccountID: "123456",
			TenantID:  bobID,
			Active:    true,
			CreatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			AccountID: "999999",
			TenantID:  aliceID,
			Active:    true,
			CreatedAt: now,
		},
	}
	if _, err := db.NewInsert().Model(&mappingRows).Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: seed account mappings: %w", err)
	}
	return nil
}
