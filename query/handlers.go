package query

import (
	"context"
	"time"

	"github.com/goliatone/go-leads/core"
)

type LeadReader interface {
	GetByCorrelationID(ctx context.Context, correlationID string) (core.Lead, error)
}

type TenantReader interface {
	GetTenant(ctx context.Context, tenantID string) (core.Tenant, error)
}

type LeadEventReader interface {
	ListByLead(ctx context.Context, leadID string) ([]core.LeadEvent, error)
}

type FallbackCounter interface {
	CountSince(ctx context.Context, eventType string, since time.Time) (int64, error)
}

type GetLeadQuery struct {
	reader LeadReader
}

func NewGetLeadQuery(reader LeadReader) *GetLeadQuery {
	return &GetLeadQuery{reader: reader}
}

func (q *GetLeadQuery) Query(ctx context.Context, msg GetLeadMessage) (core.Lead, error) {
	if q == nil || q.reader == nil {
		return core.Lead{}, queryDependencyError("query: lead reader is required")
	}
	return q.reader.GetByCorrelationID(ctx, msg.CorrelationID)
}

type GetTenantQuery struct {
	reader TenantReader
}

func NewGetTenantQuery(reader TenantReader) *GetTenantQuery {
	return &GetTenantQuery{reader: reader}
}

func (q *GetTenantQuery) Query(ctx context.Context, msg GetTenantMessage) (core.Tenant, error) {
	if q == nil || q.reader == nil {
		return core.Tenant{}, queryDependencyError("query: tenant reader is required")
	}
	return q.reader.GetTenant(ctx, msg.TenantID)
}

type ListLeadEventsQuery struct {
	reader LeadEventReader
}

func NewListLeadEventsQuery(reader LeadEventReader) *ListLeadEventsQuery {
	return &ListLeadEventsQuery{reader: reader}
}

func (q *ListLeadEventsQuery) Query(ctx context.Context, msg ListLeadEventsMessage) ([]core.LeadEvent, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: lead event reader is required")
	}
	return q.reader.ListByLead(ctx, msg.LeadID)
}

// CountFallbackQuery reports how many leads were routed to the default tenant
// since a window start. It backs the fallback digest and operator tooling.
type CountFallbackQuery struct {
	counter FallbackCounter
}

func NewCountFallbackQuery(counter FallbackCounter) *CountFallbackQuery {
	return &CountFallbackQuery{counter: counter}
}

func (q *CountFallbackQuery) Query(ctx context.Context, msg CountFallbackMessage) (int64, error) {
	if q == nil || q.counter == nil {
		return 0, queryDependencyError("query: fallback counter is required")
	}
	return q.counter.CountSince(ctx, core.LeadEventMappedToDefault, msg.Since)
}
