package command

import (
	"strings"

	"github.com/goliatone/go-leads/core"
)

const (
	TypeIngestLead        = "leads.command.lead.ingest"
	TypeSeedReferenceData = "leads.command.reference_data.seed"
)

type IngestLeadMessage struct {
	Request core.IngestLeadRequest
}

func (IngestLeadMessage) Type() string { return TypeIngestLead }

func (m IngestLeadMessage) Validate() error {
	if strings.TrimSpace(m.Request.Payload.CorrelationID) == "" {
		return commandValidationError("correlation_id", "correlation id is required")
	}
	return nil
}

// SeedReferenceDataMessage triggers the populate-if-absent tenant and account
// mapping seed. It carries no payload; the seed data is fixed.
type SeedReferenceDataMessage struct{}

func (SeedReferenceDataMessage) Type() string { return TypeSeedReferenceData }

func (SeedReferenceDataMessage) Validate() error { return nil }
