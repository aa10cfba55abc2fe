package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-leads/core"
)

// SuccessBody is the fixed acknowledgement the upstream marketplace expects.
// It is identical for fresh and duplicate deliveries so retries cannot
// distinguish the two.
const SuccessBody = "<success>ok</success>"

// LeadIngestor is the slice of the lead service the processor drives.
type LeadIngestor interface {
	IngestLead(ctx context.Context, req core.IngestLeadRequest) (core.IngestLeadResult, error)
}

// Processor turns one inbound webhook delivery into a pipeline run: verify
// the shared secret, decode the payload, ingest, acknowledge. Duplicate
// deliveries acknowledge exactly like fresh ones.
type Processor struct {
	Verifier Verifier
	Ingestor LeadIngestor
	Logger   core.Logger
	Now      func() time.Time
}

func NewProcessor(verifier Verifier, ingestor LeadIngestor) *Processor {
	return &Processor{
		Verifier: verifier,
		Ingestor: ingestor,
		Logger:   glog.Nop(),
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (p *Processor) Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if p == nil || p.Ingestor == nil {
		return core.InboundResult{}, fmt.Errorf("webhooks: processor requires an ingestor")
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = core.LeadSourceAngi
	}

	if p.Verifier != nil {
		if err := p.Verifier.Verify(ctx, req); err != nil {
			return core.InboundResult{
				Accepted:   false,
				StatusCode: http.StatusUnauthorized,
				Metadata: map[string]any{
					"source":   source,
					"rejected": true,
				},
			}, err
		}
	}

	payload, err := DecodeAngiPayload(req.Body)
	if err != nil {
		return core.InboundResult{
			Accepted:   false,
			StatusCode: http.StatusBadRequest,
			Metadata: map[string]any{
				"source":   source,
				"rejected": true,
			},
		}, err
	}

	result, err := p.Ingestor.IngestLead(ctx, core.IngestLeadRequest{
		Payload:    payload.Normalize(),
		Source:     source,
		RawPayload: req.Body,
		ReceivedAt: p.now(),
	})
	if err != nil {
		return core.InboundResult{
			Accepted:   false,
			StatusCode: ingestErrorStatus(err),
			Metadata: map[string]any{
				"source":   source,
				"rejected": true,
			},
		}, err
	}

	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Body:       SuccessBody,
		Metadata: map[string]any{
			"source":          source,
			"lead_id":         result.LeadID,
			"tenant_id":       result.TenantID,
			"duplicate":       result.Duplicate,
			"dispatch_status": result.DispatchStatus,
		},
	}, nil
}

func (p *Processor) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func ingestErrorStatus(err error) int {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return http.StatusInternalServerError
}
