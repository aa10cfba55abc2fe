package core

import (
	"fmt"
	"strings"
	"time"
)

const LeadSourceAngi = "angi"

// DefaultTenantID is the well-known tenant every unmapped account id routes
// to. The seed guarantees the row exists before the pipeline accepts traffic.
const DefaultTenantID = "tenant_default"

const (
	OutreachStatusSent     = "sent"
	OutreachStatusMockSent = "mock_sent"
	OutreachStatusFailed   = "failed"
)

const OutreachChannelEmail = "email"

const (
	LeadEventReceived        = "received"
	LeadEventMapped          = "mapped"
	LeadEventMappedToDefault = "mapped_to_default"
	LeadEventOutreachQueued  = "outreach_queued"
	LeadEventOutreachSent    = "outreach_sent"
	LeadEventOutreachFailed  = "outreach_failed"
)

type PostalAddress struct {
	FirstLine  string
	SecondLine string
	City       string
	State      string
	PostalCode string
}

// LeadPayload is the normalized shape of one inbound lead notification.
// CorrelationID is the only required field; everything else is best-effort
// data from the upstream marketplace.
type LeadPayload struct {
	CorrelationID string
	AccountID     string
	Email         string
	Phone         string
	FirstName     string
	LastName      string
	Description   string
	Category      string
	Urgency       string
	Address       PostalAddress
}

func (p LeadPayload) Validate() error {
	if strings.TrimSpace(p.CorrelationID) == "" {
		return fmt.Errorf("core: lead correlation id is required")
	}
	return nil
}

// ContactName joins the name fields for salutations, falling back to a
// neutral greeting when the payload carried no name.
func (p LeadPayload) ContactName() string {
	parts := make([]string, 0, 2)
	for _, part := range []string{p.FirstName, p.LastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "there"
	}
	return strings.Join(parts, " ")
}

type Lead struct {
	ID                string
	Source            string
	CorrelationID     string
	AccountID         string
	TenantID          string
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Category          string
	Urgency           string
	Description       string
	AddressFirstLine  string
	AddressSecondLine string
	City              string
	State             string
	PostalCode        string
	RawPayload        string
	ReceivedAt        time.Time
	CreatedAt         time.Time
}

func (l Lead) ContactName() string {
	return LeadPayload{FirstName: l.FirstName, LastName: l.LastName}.ContactName()
}

type Tenant struct {
	ID        string
	Name      string
	FromEmail string
	Timezone  string
	CreatedAt time.Time
}

type AccountMapping struct {
	ID        string
	AccountID string
	TenantID  string
	Active    bool
}

// TenantResolution carries the resolved tenant plus whether the lookup fell
// through to the default tenant. Fallback is an observable signal, not an
// error; the caller records the mapping-fallback event.
type TenantResolution struct {
	Tenant   Tenant
	Fallback bool
}

type Draft struct {
	Subject string
	Body    string
}

// TemplateDraft is the single source of the deterministic outreach text. It
// is a pure function of the lead and tenant, never returns empty copy, and
// backs both the template drafter and the pipeline's last-resort fallback.
func TemplateDraft(lead Lead, tenant Tenant) Draft {
	name := lead.ContactName()
	tenantName := strings.TrimSpace(tenant.Name)
	if tenantName == "" {
		tenantName = tenant.ID
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\nThanks for your interest. We received your request", name)
	if category := strings.TrimSpace(lead.Category); category != "" {
		fmt.Fprintf(&body, " for %s", category)
	}
	body.WriteString(" and would like to help.")
	if strings.TrimSpace(lead.Description) != "" {
		body.WriteString("\n\nWe'll review your details and get back to you soon.")
	}
	fmt.Fprintf(&body, "\n\nBest,\n%s", tenantName)

	return Draft{
		Subject: fmt.Sprintf("Quick follow-up from %s", tenantName),
		Body:    body.String(),
	}
}

type OutreachMessage struct {
	LeadID      string
	TenantID    string
	ToAddress   string
	FromAddress string
	Subject     string
	Body        string
}

// DispatchResult is the outcome of a single synchronous send attempt.
// Transport problems surface as StatusFailed with Error set, never as a Go
// error from the sender.
type DispatchResult struct {
	Status            string
	ProviderMessageID string
	Error             string
}

type OutreachEvent struct {
	ID                string
	LeadID            string
	TenantID          string
	Channel           string
	ToAddress         string
	FromAddress       string
	Subject           string
	Body              string
	Status            string
	ProviderMessageID string
	CreatedAt         time.Time
	SentAt            *time.Time
}

type LeadEvent struct {
	ID        string
	LeadID    string
	TenantID  string
	EventType string
	Metadata  map[string]any
	CreatedAt time.Time
}
