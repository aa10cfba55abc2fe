package jobs

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-leads/core"
)

const defaultDigestWindow = time.Hour

// FallbackDigest summarizes how many leads were routed to the default tenant
// inside a trailing window. It only reads the event log; it never mutates
// lead state.
type FallbackDigest struct {
	events  core.LeadEventLog
	logger  core.Logger
	metrics core.MetricsRecorder
	window  time.Duration
	now     func() time.Time
}

type DigestOption func(*FallbackDigest)

func WithDigestLogger(logger core.Logger) DigestOption {
	return func(d *FallbackDigest) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithDigestMetrics(metrics core.MetricsRecorder) DigestOption {
	return func(d *FallbackDigest) {
		d.metrics = metrics
	}
}

func WithDigestWindow(window time.Duration) DigestOption {
	return func(d *FallbackDigest) {
		if window > 0 {
			d.window = window
		}
	}
}

func WithDigestClock(now func() time.Time) DigestOption {
	return func(d *FallbackDigest) {
		if now != nil {
			d.now = now
		}
	}
}

func NewFallbackDigest(events core.LeadEventLog, options ...DigestOption) (*FallbackDigest, error) {
	if events == nil {
		return nil, fmt.Errorf("jobs: lead event log is required")
	}
	digest := &FallbackDigest{
		events: events,
		logger: glog.Nop(),
		window: defaultDigestWindow,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		if option != nil {
			option(digest)
		}
	}
	return digest, nil
}

// Run counts default-tenant routings since the window start and reports the
// total through the logger and metrics recorder.
func (d *FallbackDigest) Run(ctx context.Context) (int64, error) {
	if d == nil || d.events == nil {
		return 0, fmt.Errorf("jobs: fallback digest is not configured")
	}

	since := d.now().Add(-d.window)
	count, err := d.events.CountSince(ctx, core.LeadEventMappedToDefault, since)
	if err != nil {
		d.logError("fallback digest failed", err)
		return 0, fmt.Errorf("jobs: count fallback routings: %w", err)
	}

	if d.logger != nil {
		d.logger.Info("mapping fallback digest",
			"window", d.window.String(),
			"since", since.Format(time.RFC3339),
			"fallback_count", count,
		)
	}
	if d.metrics != nil {
		d.metrics.IncCounter(ctx, "leads.fallback_digest.runs.total", 1, map[string]string{
			"status": "success",
		})
		d.metrics.ObserveHistogram(ctx, "leads.fallback_digest.count", float64(count), map[string]string{
			"window": d.window.String(),
		})
	}
	return count, nil
}

func (d *FallbackDigest) logError(message string, err error) {
	if d == nil || d.logger == nil {
		return
	}
	d.logger.Error(message, "error", err)
}
