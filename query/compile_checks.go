package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-leads/core"
)

var (
	_ gocmd.Querier[GetLeadMessage, core.Lead]               = (*GetLeadQuery)(nil)
	_ gocmd.Querier[GetTenantMessage, core.Tenant]           = (*GetTenantQuery)(nil)
	_ gocmd.Querier[ListLeadEventsMessage, []core.LeadEvent] = (*ListLeadEventsQuery)(nil)
	_ gocmd.Querier[CountFallbackMessage, int64]             = (*CountFallbackQuery)(nil)
)
