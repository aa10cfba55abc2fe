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

// OutreachStore is the append-only dispatch log. The unique index on lead_id
// backs the one-send-per-lead guarantee: a second Record for the same lead
// fails even if two processes race past the orchestrator's sequencing.
type OutreachStore struct {
	db   *bun.DB
	repo repository.Repository[*outreachEventRecord]
}

func NewOutreachStore(db *bun.DB) (*OutreachStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*outreachEventRecord](db, outreachEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid outreach repository wiring: %w", err)
		}
	}
	return &OutreachStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *OutreachStore) Record(ctx context.Context, in core.RecordOutreachInput) (core.OutreachEvent, error) {
	if s == nil || s.db == nil {
		return core.OutreachEvent{}, fmt.Errorf("sqlstore: outreach store is not configured")
	}
	leadID := strings.TrimSpace(in.LeadID)
	if leadID == "" {
		return core.OutreachEvent{}, fmt.Errorf("sqlstore: lead id is required")
	}

	record := &outreachEventRecord{
		ID:                uuid.NewString(),
		LeadID:            leadID,
		TenantID:          strings.TrimSpace(in.TenantID),
		Channel:           in.Channel,
		ToAddress:         in.ToAddress,
		FromAddress:       in.FromAddress,
		Subject:           in.Subject,
		Body:              in.Body,
		Status:            in.Status,
		ProviderMessageID: in.ProviderMessageID,
		CreatedAt:         time.Now().UTC(),
	}
	if in.SentAt != nil {
		sentAt := in.SentAt.UTC()
		record.SentAt = &sentAt
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return core.OutreachEvent{}, fmt.Errorf("sqlstore: outreach already recorded for lead %q", leadID)
		}
		return core.OutreachEvent{}, err
	}
	return outreachEventToDomain(record), nil
}

func outreachEventToDomain(record *outreachEventRecord) core.OutreachEvent {
	if record == nil {
		return core.OutreachEvent{}
	}
	event := core.OutreachEvent{
		ID:                record.ID,
		LeadID:            record.LeadID,
		TenantID:          record.TenantID,
		Channel:           record.Channel,
		ToAddress:         record.ToAddress,
		FromAddress:       record.FromAddress,
		Subject:           record.Subject,
		Body:              record.Body,
		Status:            record.Status,
		ProviderMessageID: record.ProviderMessageID,
		CreatedAt:         record.CreatedAt,
	}
	if record.SentAt != nil {
		value := *record.SentAt
		event.SentAt = &value
	}
	return event
}

var _ core.OutreachLog = (*OutreachStore)(nil)
