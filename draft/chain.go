package draft

import (
	"context"
	"fmt"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-leads/core"
)

// Chain tries the primary drafter and falls back to the template when the
// primary is absent or fails. It never returns an error: the template is
// total, so drafting cannot sink a lead.
type Chain struct {
	primary  core.Drafter
	template core.Drafter
	logger   core.Logger
}

type ChainOption func(*Chain)

func WithChainLogger(logger core.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChain builds the two-tier drafting policy. primary may be nil, which
// degrades the chain to template-only.
func NewChain(primary core.Drafter, template core.Drafter, options ...ChainOption) (*Chain, error) {
	if template == nil {
		return nil, fmt.Errorf("draft: chain requires a template drafter")
	}
	chain := &Chain{
		primary:  primary,
		template: template,
		logger:   glog.Nop(),
	}
	for _, option := range options {
		if option != nil {
			option(chain)
		}
	}
	return chain, nil
}

func (c *Chain) Draft(ctx context.Context, lead core.Lead, tenant core.Tenant) (core.Draft, error) {
	if c == nil || c.template == nil {
		return core.Draft{}, fmt.Errorf("draft: chain is not configured")
	}

	if c.primary != nil {
		draft, err := c.primary.Draft(ctx, lead, tenant)
		if err == nil {
			return draft, nil
		}
		c.logger.Warn("primary drafter failed, using template",
			"lead_id", lead.ID,
			"tenant_id", tenant.ID,
			"error", err.Error(),
		)
	}

	return c.template.Draft(ctx, lead, tenant)
}

var _ core.Drafter = (*Chain)(nil)

// FromConfig assembles the chain the way the service wires it at startup:
// the primary tier exists only when drafting is enabled and an api key is
// configured, matching NewPrimaryDrafter's requirements.
func FromConfig(cfg core.DrafterConfig, client HTTPDoer, options ...ChainOption) (*Chain, error) {
	var primary core.Drafter
	if cfg.Enabled {
		drafter, err := NewPrimaryDrafter(cfg, client)
		if err != nil {
			return nil, err
		}
		primary = drafter
	}
	return NewChain(primary, NewTemplateDrafter(), options...)
}
