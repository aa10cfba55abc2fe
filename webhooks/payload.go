package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-leads/core"
)

// AngiPostalAddress mirrors the PostalAddress object of the Angi webhook
// body. All fields are optional.
type AngiPostalAddress struct {
	AddressFirstLine  string `json:"AddressFirstLine"`
	AddressSecondLine string `json:"AddressSecondLine"`
	City              string `json:"City"`
	State             string `json:"State"`
	PostalCode        string `json:"PostalCode"`
}

// AngiLeadPayload is the wire shape of one Angi lead notification.
// CorrelationId is the idempotency key; everything else is optional.
type AngiLeadPayload struct {
	CorrelationID string             `json:"CorrelationId"`
	ALAccountID   string             `json:"ALAccountId"`
	Email         string             `json:"Email"`
	PhoneNumber   string             `json:"PhoneNumber"`
	FirstName     string             `json:"FirstName"`
	LastName      string             `json:"LastName"`
	Description   string             `json:"Description"`
	Category      string             `json:"Category"`
	Urgency       string             `json:"Urgency"`
	PostalAddress *AngiPostalAddress `json:"PostalAddress"`
}

// DecodeAngiPayload parses the webhook body. An empty body decodes to the
// zero payload, which then fails validation downstream on the missing
// correlation id rather than here.
func DecodeAngiPayload(body []byte) (AngiLeadPayload, error) {
	var payload AngiLeadPayload
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return AngiLeadPayload{}, fmt.Errorf("webhooks: malformed json payload: %w", err)
	}
	return payload, nil
}

// Normalize converts the wire payload into the provider-neutral shape the
// pipeline works with.
func (p AngiLeadPayload) Normalize() core.LeadPayload {
	normalized := core.LeadPayload{
		CorrelationID: p.CorrelationID,
		AccountID:     p.ALAccountID,
		Email:         p.Email,
		Phone:         p.PhoneNumber,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Description:   p.Description,
		Category:      p.Category,
		Urgency:       p.Urgency,
	}
	if p.PostalAddress != nil {
		normalized.Address = core.PostalAddress{
			FirstLine:  p.PostalAddress.AddressFirstLine,
			SecondLine: p.PostalAddress.AddressSecondLine,
			City:       p.PostalAddress.City,
			State:      p.PostalAddress.State,
			PostalCode: p.PostalAddress.PostalCode,
		}
	}
	return normalized
}
