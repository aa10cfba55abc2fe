package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/webhooks"
)

const (
	WebhookRoute = "/webhooks/angi/leads"
	HealthRoute  = "/healthz"
	MetricsRoute = "/metrics"

	ackContentType = "application/xml"
)

// Server is the HTTP face of the ingestion pipeline: one webhook route, a
// health probe and the metrics exposition endpoint.
type Server struct {
	router         *gin.Engine
	processor      *webhooks.Processor
	logger         core.Logger
	metricsHandler http.Handler
}

type Option func(*Server)

func WithLogger(logger core.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		if handler != nil {
			s.metricsHandler = handler
		}
	}
}

func NewServer(processor *webhooks.Processor, options ...Option) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("httpapi: webhook processor is required")
	}

	gin.SetMode(gin.ReleaseMode)
	server := &Server{
		router:         gin.New(),
		processor:      processor,
		logger:         glog.Nop(),
		metricsHandler: promhttp.Handler(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}

	server.router.Use(gin.Recovery())
	server.router.POST(WebhookRoute, server.handleAngiLead)
	server.router.GET(HealthRoute, server.handleHealth)
	server.router.GET(MetricsRoute, gin.WrapH(server.metricsHandler))
	return server, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return fmt.Errorf("httpapi: server is not configured")
	}
	s.logger.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) handleAngiLead(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.Error("read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable request body"})
		return
	}

	result, err := s.processor.Process(c.Request.Context(), core.InboundRequest{
		Source:  core.LeadSourceAngi,
		Headers: flattenHeaders(c.Request.Header),
		Body:    body,
	})
	if err != nil {
		status := result.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		s.logger.Error("webhook delivery rejected",
			"status", status,
			"error", err,
		)
		c.JSON(status, gin.H{"detail": rejectionDetail(err, status)})
		return
	}

	s.logger.Info("webhook delivery acknowledged",
		"lead_id", result.Metadata["lead_id"],
		"tenant_id", result.Metadata["tenant_id"],
		"duplicate", result.Metadata["duplicate"],
	)
	c.Data(result.StatusCode, ackContentType, []byte(result.Body))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func flattenHeaders(header http.Header) map[string]string {
	flattened := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			flattened[key] = values[0]
		}
	}
	return flattened
}

func rejectionDetail(err error, status int) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
