package tenants

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-leads/core"
)

// Store is the persistence surface the directory reads from. Implemented by
// the sql store; read-only after startup seeding.
type Store interface {
	FindActiveMapping(ctx context.Context, accountID string) (core.AccountMapping, bool, error)
	GetTenant(ctx context.Context, tenantID string) (core.Tenant, error)
	GetDefaultTenant(ctx context.Context) (core.Tenant, error)
}

// Directory resolves external account ids to tenants. An unmapped, empty, or
// otherwise unusable account id resolves to the default tenant and flags
// Fallback so the caller can record the mapping-fallback event; that path is
// normal operation, not an error.
type Directory struct {
	store Store
}

func NewDirectory(store Store) (*Directory, error) {
	if store == nil {
		return nil, fmt.Errorf("tenants: store is required")
	}
	return &Directory{store: store}, nil
}

func (d *Directory) Resolve(ctx context.Context, accountID string) (core.TenantResolution, error) {
	if d == nil || d.store == nil {
		return core.TenantResolution{}, fmt.Errorf("tenants: directory is not configured")
	}

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return d.fallback(ctx)
	}

	mapping, found, err := d.store.FindActiveMapping(ctx, accountID)
	if err != nil {
		return core.TenantResolution{}, err
	}
	if !found {
		return d.fallback(ctx)
	}

	tenant, err := d.store.GetTenant(ctx, mapping.TenantID)
	if err != nil {
		// A mapping pointing at a missing tenant is treated like an
		// unmapped account rather than a hard failure.
		return d.fallback(ctx)
	}
	return core.TenantResolution{Tenant: tenant}, nil
}

func (d *Directory) fallback(ctx context.Context) (core.TenantResolution, error) {
	tenant, err := d.store.GetDefaultTenant(ctx)
	if err != nil {
		return core.TenantResolution{}, fmt.Errorf("tenants: default tenant lookup: %w", err)
	}
	return core.TenantResolution{Tenant: tenant, Fallback: true}, nil
}

var _ core.TenantDirectory = (*Directory)(nil)
