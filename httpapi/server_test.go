package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/metrics"
	"github.com/goliatone/go-leads/webhooks"
)

func TestServer_WebhookAcknowledgesVerifiedDelivery(t *testing.T) {
	ingestor := &stubIngestor{
		result: core.IngestLeadResult{
			LeadID:         "lead_1",
			TenantID:       "tenant_bob_plumbing",
			DispatchStatus: core.OutreachStatusSent,
		},
	}
	server := newTestServer(t, ingestor)

	request := httptest.NewRequest(http.MethodPost, WebhookRoute, strings.NewReader(
		`{"CorrelationId":"corr-1","ALAccountId":"123456","Email":"amy@example.com"}`,
	))
	request.Header.Set(webhooks.DefaultAPIKeyHeader, "secret")
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.Code, response.Body.String())
	}
	if got := response.Body.String(); got != webhooks.SuccessBody {
		t.Fatalf("expected acknowledgement body %q, got %q", webhooks.SuccessBody, got)
	}
	if contentType := response.Header().Get("Content-Type"); !strings.Contains(contentType, "application/xml") {
		t.Fatalf("expected xml content type, got %q", contentType)
	}
	if ingestor.calls != 1 {
		t.Fatalf("expected one pipeline run, got %d", ingestor.calls)
	}
	if ingestor.last.Payload.CorrelationID != "corr-1" {
		t.Fatalf("unexpected payload: %#v", ingestor.last.Payload)
	}
}

func TestServer_WebhookDuplicateAcknowledgesIdentically(t *testing.T) {
	ingestor := &stubIngestor{
		result: core.IngestLeadResult{
			LeadID:    "lead_1",
			TenantID:  "tenant_bob_plumbing",
			Duplicate: true,
		},
	}
	server := newTestServer(t, ingestor)

	request := httptest.NewRequest(http.MethodPost, WebhookRoute, strings.NewReader(
		`{"CorrelationId":"corr-1"}`,
	))
	request.Header.Set(webhooks.DefaultAPIKeyHeader, "secret")
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", response.Code)
	}
	if got := response.Body.String(); got != webhooks.SuccessBody {
		t.Fatalf("expected acknowledgement body %q, got %q", webhooks.SuccessBody, got)
	}
}

func TestServer_WebhookRejectsMissingAPIKey(t *testing.T) {
	ingestor := &stubIngestor{}
	server := newTestServer(t, ingestor)

	request := httptest.NewRequest(http.MethodPost, WebhookRoute, strings.NewReader(
		`{"CorrelationId":"corr-1"}`,
	))
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	if response.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", response.Code)
	}
	if ingestor.calls != 0 {
		t.Fatalf("expected no pipeline run, got %d", ingestor.calls)
	}

	var payload map[string]any
	if err := json.Unmarshal(response.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode rejection body: %v", err)
	}
	if _, ok := payload["detail"]; !ok {
		t.Fatalf("expected rejection detail, got %v", payload)
	}
}

func TestServer_WebhookRejectsMalformedPayload(t *testing.T) {
	ingestor := &stubIngestor{}
	server := newTestServer(t, ingestor)

	request := httptest.NewRequest(http.MethodPost, WebhookRoute, strings.NewReader(`{not json`))
	request.Header.Set(webhooks.DefaultAPIKeyHeader, "secret")
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	if response.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.Code)
	}
	if ingestor.calls != 0 {
		t.Fatalf("expected no pipeline run, got %d", ingestor.calls)
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubIngestor{})

	request := httptest.NewRequest(http.MethodGet, HealthRoute, nil)
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}

	var payload map[string]bool
	if err := json.Unmarshal(response.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if !payload["ok"] {
		t.Fatalf("expected ok=true, got %v", payload)
	}
}

func TestServer_MetricsEndpointServesRecorder(t *testing.T) {
	recorder := metrics.NewPrometheusRecorder()
	recorder.IncCounter(context.Background(), "leads.ingest_lead.total", 1, map[string]string{
		"status": "success",
	})

	processor := webhooks.NewProcessor(webhooks.NewAPIKeyVerifier("secret"), &stubIngestor{})
	server, err := NewServer(processor, WithMetricsHandler(recorder.Handler()))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, MetricsRoute, nil)
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}
	if !strings.Contains(response.Body.String(), "leads_ingest_lead_total") {
		t.Fatalf("expected pipeline counter in exposition, got:\n%s", response.Body.String())
	}
}

func TestNewServer_RequiresProcessor(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Fatalf("expected processor requirement error")
	}
}

func newTestServer(t *testing.T, ingestor *stubIngestor) *Server {
	t.Helper()
	processor := webhooks.NewProcessor(webhooks.NewAPIKeyVerifier("secret"), ingestor)
	server, err := NewServer(processor)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

type stubIngestor struct {
	result core.IngestLeadResult
	err    error
	calls  int
	last   core.IngestLeadRequest
}

func (s *stubIngestor) IngestLead(_ context.Context, req core.IngestLeadRequest) (core.IngestLeadResult, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return core.IngestLeadResult{}, s.err
	}
	return s.result, nil
}
