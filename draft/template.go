package draft

import (
	"context"

	"github.com/goliatone/go-leads/core"
)

// TemplateDrafter produces a deterministic outreach draft from the lead and
// tenant alone. It never fails and never performs I/O, which makes it the
// terminal fallback of every drafting chain. The text itself lives in
// core.TemplateDraft so the pipeline's last-resort path shares it.
type TemplateDrafter struct{}

func NewTemplateDrafter() *TemplateDrafter {
	return &TemplateDrafter{}
}

func (*TemplateDrafter) Draft(_ context.Context, lead core.Lead, tenant core.Tenant) (core.Draft, error) {
	return core.TemplateDraft(lead, tenant), nil
}

var _ core.Drafter = (*TemplateDrafter)(nil)
