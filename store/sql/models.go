package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type tenantRecord struct {
	bun.BaseModel `bun:"table:tenants,alias:t"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	FromEmail string    `bun:"from_email,notnull"`
	Timezone  string    `bun:"timezone,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type accountMappingRecord struct {
	bun.BaseModel `bun:"table:account_mappings,alias:am"`

	ID        string    `bun:"id,pk"`
	AccountID string    `bun:"account_id,notnull"`
	TenantID  string    `bun:"tenant_id,notnull"`
	Active    bool      `bun:"active,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type leadRecord struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID                string    `bun:"id,pk"`
	Source            string    `bun:"source,notnull"`
	CorrelationID     string    `bun:"correlation_id,notnull"`
	AccountID         string    `bun:"account_id"`
	TenantID          *string   `bun:"tenant_id"`
	FirstName         string    `bun:"first_name"`
	LastName          string    `bun:"last_name"`
	Email             string    `bun:"email"`
	Phone             string    `bun:"phone"`
	Category          string    `bun:"category"`
	Urgency           string    `bun:"urgency"`
	Description       string    `bun:"description"`
	AddressFirstLine  string    `bun:"address_first_line"`
	AddressSecondLine string    `bun:"address_second_line"`
	City              string    `bun:"city"`
	State             string    `bun:"state"`
	PostalCode        string    `bun:"postal_code"`
	RawPayload        string    `bun:"raw_payload"`
	ReceivedAt        time.Time `bun:"received_at,nullzero,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type outreachEventRecord struct {
	bun.BaseModel `bun:"table:outreach_events,alias:oe"`

	ID                string     `bun:"id,pk"`
	LeadID            string     `bun:"lead_id,notnull"`
	TenantID          string     `bun:"tenant_id,notnull"`
	Channel           string     `bun:"channel,notnull"`
	ToAddress         string     `bun:"to_address,notnull"`
	FromAddress       string     `bun:"from_address,notnull"`
	Subject           string     `bun:"subject"`
	Body              string     `bun:"body"`
	Status            string     `bun:"status,notnull"`
	ProviderMessageID string     `bun:"provider_message_id"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	SentAt            *time.Time `bun:"sent_at,nullzero"`
}

type leadEventRecord struct {
	bun.BaseModel `bun:"table:lead_events,alias:le"`

	ID        string         `bun:"id,pk"`
	LeadID    string         `bun:"lead_id,notnull"`
	TenantID  string         `bun:"tenant_id"`
	EventType string         `bun:"event_type,notnull"`
	Metadata  map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
