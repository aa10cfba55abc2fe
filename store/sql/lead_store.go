package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leads/core"
)

// LeadStore persists leads keyed by correlation id. The unique index on
// correlation_id is the idempotency boundary: Register relies on the insert
// failing for duplicates instead of a read-then-write check, so it holds
// across processes sharing one database.
type LeadStore struct {
	db   *bun.DB
	repo repository.Repository[*leadRecord]
}

func NewLeadStore(db *bun.DB) (*LeadStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*leadRecord](db, leadHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid lead repository wiring: %w", err)
		}
	}
	return &LeadStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *LeadStore) Register(ctx context.Context, in core.NewLeadInput) (core.Lead, bool, error) {
	if s == nil || s.db == nil {
		return core.Lead{}, false, fmt.Errorf("sqlstore: lead store is not configured")
	}
	correlationID := strings.TrimSpace(in.Payload.CorrelationID)
	if correlationID == "" {
		return core.Lead{}, false, fmt.Errorf("sqlstore: lead correlation id is required")
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	record := &leadRecord{
		ID:                uuid.NewString(),
		Source:            strings.TrimSpace(in.Source),
		CorrelationID:     correlationID,
		AccountID:         strings.TrimSpace(in.Payload.AccountID),
		FirstName:         in.Payload.FirstName,
		LastName:          in.Payload.LastName,
		Email:             strings.TrimSpace(in.Payload.Email),
		Phone:             strings.TrimSpace(in.Payload.Phone),
		Category:          in.Payload.Category,
		Urgency:           in.Payload.Urgency,
		Description:       in.Payload.Description,
		AddressFirstLine:  in.Payload.Address.FirstLine,
		AddressSecondLine: in.Payload.Address.SecondLine,
		City:              in.Payload.Address.City,
		State:             in.Payload.Address.State,
		PostalCode:        in.Payload.Address.PostalCode,
		RawPayload:        string(in.RawPayload),
		ReceivedAt:        receivedAt.UTC(),
		CreatedAt:         time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			existing, getErr := s.GetByCorrelationID(ctx, correlationID)
			if getErr != nil {
				return core.Lead{}, false, getErr
			}
			return existing, false, nil
		}
		return core.Lead{}, false, err
	}
	return leadToDomain(record), true, nil
}

func (s *LeadStore) AttachTenant(ctx context.Context, leadID string, tenantID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: lead store is not configured")
	}
	leadID = strings.TrimSpace(leadID)
	tenantID = strings.TrimSpace(tenantID)
	if leadID == "" || tenantID == "" {
		return fmt.Errorf("sqlstore: lead id and tenant id are required")
	}
	result, err := s.db.NewUpdate().
		Model((*leadRecord)(nil)).
		Set("tenant_id = ?", tenantID).
		Where("id = ?", leadID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, affErr := result.RowsAffected(); affErr == nil && affected == 0 {
		return fmt.Errorf("sqlstore: lead %q not found", leadID)
	}
	return nil
}

func (s *LeadStore) GetByCorrelationID(ctx context.Context, correlationID string) (core.Lead, error) {
	if s == nil || s.db == nil {
		return core.Lead{}, fmt.Errorf("sqlstore: lead store is not configured")
	}
	record := &leadRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.correlation_id = ?", strings.TrimSpace(correlationID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Lead{}, fmt.Errorf("sqlstore: lead not found for correlation id %q", correlationID)
		}
		return core.Lead{}, err
	}
	return leadToDomain(record), nil
}

func leadToDomain(record *leadRecord) core.Lead {
	if record == nil {
		return core.Lead{}
	}
	lead := core.Lead{
		ID:                record.ID,
		Source:            record.Source,
		CorrelationID:     record.CorrelationID,
		AccountID:         record.AccountID,
		FirstName:         record.FirstName,
		LastName:          record.LastName,
		Email:             record.Email,
		Phone:             record.Phone,
		Category:          record.Category,
		Urgency:           record.Urgency,
		Description:       record.Description,
		AddressFirstLine:  record.AddressFirstLine,
		AddressSecondLine: record.AddressSecondLine,
		City:              record.City,
		State:             record.State,
		PostalCode:        record.PostalCode,
		RawPayload:        record.RawPayload,
		ReceivedAt:        record.ReceivedAt,
		CreatedAt:         record.CreatedAt,
	}
	if record.TenantID != nil {
		lead.TenantID = *record.TenantID
	}
	return lead
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

var _ core.LeadStore = (*LeadStore)(nil)
