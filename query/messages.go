package query

import (
	"strings"
	"time"
)

const (
	TypeGetLead        = "leads.query.lead.get"
	TypeGetTenant      = "leads.query.tenant.get"
	TypeListLeadEvents = "leads.query.lead_events.list"
	TypeCountFallback  = "leads.query.fallback.count"
)

type GetLeadMessage struct {
	CorrelationID string
}

func (GetLeadMessage) Type() string { return TypeGetLead }

func (m GetLeadMessage) Validate() error {
	if strings.TrimSpace(m.CorrelationID) == "" {
		return queryValidationError("correlation_id", "correlation id is required")
	}
	return nil
}

type GetTenantMessage struct {
	TenantID string
}

func (GetTenantMessage) Type() string { return TypeGetTenant }

func (m GetTenantMessage) Validate() error {
	if strings.TrimSpace(m.TenantID) == "" {
		return queryValidationError("tenant_id", "tenant id is required")
	}
	return nil
}

type ListLeadEventsMessage struct {
	LeadID string
}

func (ListLeadEventsMessage) Type() string { return TypeListLeadEvents }

func (m ListLeadEventsMessage) Validate() error {
	if strings.TrimSpace(m.LeadID) == "" {
		return queryValidationError("lead_id", "lead id is required")
	}
	return nil
}

type CountFallbackMessage struct {
	Since time.Time
}

func (CountFallbackMessage) Type() string { return TypeCountFallback }

func (m CountFallbackMessage) Validate() error {
	if m.Since.IsZero() {
		return queryValidationError("since", "window start is required")
	}
	return nil
}
