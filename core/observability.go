package core

import (
	"context"
	"strings"
	"time"
)

// Terminal states of one ingestion attempt. Accepted means a new lead ran
// the full pipeline, duplicate means registration short-circuited, rejected
// means a validation or storage fault escaped to the caller.
const (
	ingestOutcomeAccepted  = "accepted"
	ingestOutcomeDuplicate = "duplicate"
	ingestOutcomeRejected  = "rejected"
)

// observeIngest emits the counter, latency histogram, and log line for one
// IngestLead call. Tag cardinality stays bounded: tenant ids come from the
// seeded directory and the outcome set is closed.
func (s *Service) observeIngest(ctx context.Context, startedAt time.Time, req IngestLeadRequest, result IngestLeadResult, err error) {
	if s == nil {
		return
	}
	outcome := ingestOutcomeAccepted
	status := "success"
	switch {
	case err != nil:
		outcome = ingestOutcomeRejected
		status = "failure"
	case result.Duplicate:
		outcome = ingestOutcomeDuplicate
	}

	tags := map[string]string{
		"operation": "ingest_lead",
		"status":    status,
		"outcome":   outcome,
	}
	if tenantID := strings.TrimSpace(result.TenantID); tenantID != "" {
		tags["tenant_id"] = tenantID
	}

	durationMS := time.Since(startedAt).Milliseconds()
	s.recordCounter(ctx, "leads.ingest_lead.total", 1, tags)
	s.recordHistogram(ctx, "leads.ingest_lead.duration_ms", float64(durationMS), tags)

	if err != nil {
		s.logError(ctx, "lead ingestion rejected",
			"correlation_id", req.Payload.CorrelationID,
			"account_id", req.Payload.AccountID,
			"duration_ms", durationMS,
			"error", err.Error(),
		)
		return
	}
	s.logInfo(ctx, "lead ingestion "+outcome,
		"correlation_id", req.Payload.CorrelationID,
		"account_id", req.Payload.AccountID,
		"lead_id", result.LeadID,
		"tenant_id", result.TenantID,
		"dispatch_status", result.DispatchStatus,
		"duration_ms", durationMS,
	)
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if logger := s.contextLogger(ctx); logger != nil {
		logger.Info(msg, args...)
	}
}

func (s *Service) logError(ctx context.Context, msg string, args ...any) {
	if logger := s.contextLogger(ctx); logger != nil {
		logger.Error(msg, args...)
	}
}

func (s *Service) contextLogger(ctx context.Context) Logger {
	if s == nil || s.logger == nil {
		return nil
	}
	if ctx != nil {
		return s.logger.WithContext(ctx)
	}
	return s.logger
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, name, value, cloneTags(tags))
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, name, value, cloneTags(tags))
}
