package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const unknownRecipient = "unknown@example.com"

type IngestLeadRequest struct {
	Payload    LeadPayload
	Source     string
	RawPayload []byte
	ReceivedAt time.Time
}

type IngestLeadResult struct {
	LeadID         string
	TenantID       string
	Duplicate      bool
	DispatchStatus string
}

// IngestLead runs the full ingestion sequence for one inbound payload:
// register (dedup), resolve tenant, draft, dispatch, log. Only payload
// validation and lead-store faults escape as errors; a duplicate registration
// short-circuits to success with no further side effects, and everything past
// registration is best-effort because the lead is already durable and an
// upstream retry must never re-run it.
func (s *Service) IngestLead(ctx context.Context, req IngestLeadRequest) (IngestLeadResult, error) {
	startedAt := s.now()
	result, err := s.ingestLead(ctx, req)
	s.observeIngest(ctx, startedAt, req, result, err)
	return result, err
}

func (s *Service) ingestLead(ctx context.Context, req IngestLeadRequest) (IngestLeadResult, error) {
	if s == nil || s.leadStore == nil {
		return IngestLeadResult{}, mapBuildError(s.mapper(), fmt.Errorf("core: lead store is not configured"))
	}

	if err := req.Payload.Validate(); err != nil {
		return IngestLeadResult{}, newLeadsError(err.Error(), goerrors.CategoryValidation, LeadsErrorBadInput)
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = LeadSourceAngi
	}
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}

	lead, created, err := s.leadStore.Register(ctx, NewLeadInput{
		Payload:    req.Payload,
		Source:     source,
		RawPayload: req.RawPayload,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		return IngestLeadResult{}, mapBuildError(s.mapper(), err)
	}
	if !created {
		return IngestLeadResult{
			LeadID:    lead.ID,
			TenantID:  lead.TenantID,
			Duplicate: true,
		}, nil
	}

	tenant, fallback := s.resolveTenant(ctx, req.Payload.AccountID)
	if attachErr := s.leadStore.AttachTenant(ctx, lead.ID, tenant.ID); attachErr != nil {
		s.logError(ctx, "attach tenant failed",
			"lead_id", lead.ID,
			"tenant_id", tenant.ID,
			"error", attachErr.Error(),
		)
	}
	lead.TenantID = tenant.ID

	s.appendEvent(ctx, lead.ID, tenant.ID, LeadEventReceived, nil)
	s.appendEvent(ctx, lead.ID, tenant.ID, LeadEventMapped, nil)
	if fallback {
		s.appendEvent(ctx, lead.ID, tenant.ID, LeadEventMappedToDefault, map[string]any{
			"account_id": req.Payload.AccountID,
		})
	}

	draft := s.draftOutreach(ctx, lead, tenant)
	message := s.buildMessage(lead, tenant, draft)

	s.appendEvent(ctx, lead.ID, tenant.ID, LeadEventOutreachQueued, nil)
	dispatch := s.dispatch(ctx, message)

	s.recordOutreach(ctx, message, dispatch)

	if dispatch.Status == OutreachStatusFailed {
		s.appendEvent(ctx, lead.ID, tenant.ID, LeadEventOutreachFailed, map[string]any{
			"error": dispatch.Error,
		})
	} else {
		s.appendEvent(ctx, lead.ID, tenant.ID, LeadEventOutreachSent, map[string]any{
			"provider_message_id": dispatch.ProviderMessageID,
		})
	}

	return IngestLeadResult{
		LeadID:         lead.ID,
		TenantID:       tenant.ID,
		DispatchStatus: dispatch.Status,
	}, nil
}

// resolveTenant never aborts the pipeline: a directory fault degrades to the
// default tenant the same way an unmapped account does, because the lead is
// already stored and the caller must still see success.
func (s *Service) resolveTenant(ctx context.Context, accountID string) (Tenant, bool) {
	if s.tenantDirectory == nil {
		return defaultTenant(), true
	}
	resolution, err := s.tenantDirectory.Resolve(ctx, accountID)
	if err != nil {
		s.logError(ctx, "tenant resolution failed",
			"account_id", accountID,
			"error", err.Error(),
		)
		return defaultTenant(), true
	}
	return resolution.Tenant, resolution.Fallback
}

func (s *Service) draftOutreach(ctx context.Context, lead Lead, tenant Tenant) Draft {
	if s.drafter != nil {
		draft, err := s.drafter.Draft(ctx, lead, tenant)
		if err == nil && strings.TrimSpace(draft.Body) != "" {
			return draft
		}
		if err != nil {
			s.logError(ctx, "drafter failed, using built-in fallback",
				"lead_id", lead.ID,
				"error", err.Error(),
			)
		}
	}
	return TemplateDraft(lead, tenant)
}

func (s *Service) buildMessage(lead Lead, tenant Tenant, draft Draft) OutreachMessage {
	to := strings.TrimSpace(lead.Email)
	if to == "" {
		to = unknownRecipient
	}
	from := strings.TrimSpace(tenant.FromEmail)
	if from == "" {
		from = strings.TrimSpace(s.config.Mailer.DefaultFrom)
	}
	return OutreachMessage{
		LeadID:      lead.ID,
		TenantID:    tenant.ID,
		ToAddress:   to,
		FromAddress: from,
		Subject:     draft.Subject,
		Body:        draft.Body,
	}
}

func (s *Service) dispatch(ctx context.Context, msg OutreachMessage) DispatchResult {
	if s.sender == nil {
		return DispatchResult{
			Status: OutreachStatusFailed,
			Error:  "core: sender is not configured",
		}
	}
	result, err := s.sender.Send(ctx, msg)
	if err != nil {
		return DispatchResult{
			Status: OutreachStatusFailed,
			Error:  err.Error(),
		}
	}
	switch result.Status {
	case OutreachStatusSent, OutreachStatusMockSent, OutreachStatusFailed:
		return result
	default:
		result.Status = OutreachStatusFailed
		if result.Error == "" {
			result.Error = "core: sender returned an unknown status"
		}
		return result
	}
}

func (s *Service) recordOutreach(ctx context.Context, msg OutreachMessage, dispatch DispatchResult) {
	if s.outreachLog == nil {
		return
	}
	var sentAt *time.Time
	if dispatch.Status != OutreachStatusFailed {
		now := s.now()
		sentAt = &now
	}
	if _, err := s.outreachLog.Record(ctx, RecordOutreachInput{
		LeadID:            msg.LeadID,
		TenantID:          msg.TenantID,
		Channel:           OutreachChannelEmail,
		ToAddress:         msg.ToAddress,
		FromAddress:       msg.FromAddress,
		Subject:           msg.Subject,
		Body:              msg.Body,
		Status:            dispatch.Status,
		ProviderMessageID: dispatch.ProviderMessageID,
		SentAt:            sentAt,
	}); err != nil {
		s.logError(ctx, "record outreach failed",
			"lead_id", msg.LeadID,
			"status", dispatch.Status,
			"error", err.Error(),
		)
	}
}

func (s *Service) appendEvent(ctx context.Context, leadID string, tenantID string, eventType string, metadata map[string]any) {
	if s.leadEventLog == nil {
		return
	}
	if err := s.leadEventLog.Append(ctx, AppendLeadEventInput{
		LeadID:    leadID,
		TenantID:  tenantID,
		EventType: eventType,
		Metadata:  metadata,
	}); err != nil {
		s.logError(ctx, "append lead event failed",
			"lead_id", leadID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (s *Service) mapper() ErrorMapper {
	if s != nil && s.errorMapper != nil {
		return s.errorMapper
	}
	return defaultErrorMapper
}

func defaultTenant() Tenant {
	return Tenant{
		ID:   DefaultTenantID,
		Name: DefaultTenantID,
	}
}
