package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/tenants"
)

// TenantStore reads tenants and account mappings. The tables are seeded at
// startup and read-only afterwards.
type TenantStore struct {
	db          *bun.DB
	tenantRepo  repository.Repository[*tenantRecord]
	mappingRepo repository.Repository[*accountMappingRecord]
}

func NewTenantStore(db *bun.DB) (*TenantStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	tenantRepo := repository.NewRepository[*tenantRecord](db, tenantHandlers())
	if validator, ok := tenantRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid tenant repository wiring: %w", err)
		}
	}
	mappingRepo := repository.NewRepository[*accountMappingRecord](db, accountMappingHandlers())
	if validator, ok := mappingRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account mapping repository wiring: %w", err)
		}
	}
	return &TenantStore{
		db:          db,
		tenantRepo:  tenantRepo,
		mappingRepo: mappingRepo,
	}, nil
}

func (s *TenantStore) FindActiveMapping(ctx context.Context, accountID string) (core.AccountMapping, bool, error) {
	if s == nil || s.db == nil {
		return core.AccountMapping{}, false, fmt.Errorf("sqlstore: tenant store is not configured")
	}
	record := &accountMappingRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.account_id = ?", strings.TrimSpace(accountID)).
		Where("?TableAlias.active = ?", true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.AccountMapping{}, false, nil
		}
		return core.AccountMapping{}, false, err
	}
	return core.AccountMapping{
		ID:        record.ID,
		AccountID: record.AccountID,
		TenantID:  record.TenantID,
		Active:    record.Active,
	}, true, nil
}

func (s *TenantStore) GetTenant(ctx context.Context, tenantID string) (core.Tenant, error) {
	if s == nil || s.db == nil {
		return core.Tenant{}, fmt.Errorf("sqlstore: tenant store is not configured")
	}
	record := &tenantRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(tenantID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Tenant{}, fmt.Errorf("sqlstore: tenant %q not found", tenantID)
		}
		return core.Tenant{}, err
	}
	return tenantToDomain(record), nil
}

func (s *TenantStore) GetDefaultTenant(ctx context.Context) (core.Tenant, error) {
	return s.GetTenant(ctx, core.DefaultTenantID)
}

func tenantToDomain(record *tenantRecord) core.Tenant {
	if record == nil {
		return core.Tenant{}
	}
	return core.Tenant{
		ID:        record.ID,
		Name:      record.Name,
		FromEmail: record.FromEmail,
		Timezone:  record.Timezone,
		CreatedAt: record.CreatedAt,
	}
}

var _ tenants.Store = (*TenantStore)(nil)
