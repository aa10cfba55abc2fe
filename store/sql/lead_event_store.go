package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leads/core"
)

// LeadEventStore is the per-lead audit trail. Appends are best-effort from
// the pipeline's point of view but durable once written.
type LeadEventStore struct {
	db   *bun.DB
	repo repository.Repository[*leadEventRecord]
}

func NewLeadEventStore(db *bun.DB) (*LeadEventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*leadEventRecord](db, leadEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid lead event repository wiring: %w", err)
		}
	}
	return &LeadEventStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *LeadEventStore) Append(ctx context.Context, in core.AppendLeadEventInput) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: lead event store is not configured")
	}
	leadID := strings.TrimSpace(in.LeadID)
	eventType := strings.TrimSpace(in.EventType)
	if leadID == "" || eventType == "" {
		return fmt.Errorf("sqlstore: lead id and event type are required")
	}

	record := &leadEventRecord{
		ID:        uuid.NewString(),
		LeadID:    leadID,
		TenantID:  strings.TrimSpace(in.TenantID),
		EventType: eventType,
		Metadata:  in.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().Model(record).Exec(ctx)
	return err
}

func (s *LeadEventStore) CountSince(ctx context.Context, eventType string, since time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead event store is not configured")
	}
	count, err := s.db.NewSelect().
		Model((*leadEventRecord)(nil)).
		Where("?TableAlias.event_type = ?", strings.TrimSpace(eventType)).
		Where("?TableAlias.created_at >= ?", since.UTC()).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

// ListByLead returns the audit trail for one lead in append order.
func (s *LeadEventStore) ListByLead(ctx context.Context, leadID string) ([]core.LeadEvent, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: lead event store is not configured")
	}
	var records []*leadEventRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.lead_id = ?", strings.TrimSpace(leadID)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]core.LeadEvent, 0, len(records))
	for _, record := range records {
		events = append(events, core.LeadEvent{
			ID:        record.ID,
			LeadID:    record.LeadID,
			TenantID:  record.TenantID,
			EventType: record.EventType,
			Metadata:  record.Metadata,
			CreatedAt: record.CreatedAt,
		})
	}
	return events, nil
}

var _ core.LeadEventLog = (*LeadEventStore)(nil)
