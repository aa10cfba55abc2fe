package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-leads/core"
)

// SendGridAPI is the slice of the sendgrid client the sender needs. The real
// *sendgrid.Client satisfies it.
type SendGridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers outreach email through the SendGrid v3 mail API.
// Delivery failures come back as errors; the pipeline is responsible for
// absorbing them into a failed dispatch record.
type SendGridSender struct {
	client SendGridAPI
	logger core.Logger
}

type SendGridOption func(*SendGridSender)

func WithSendGridLogger(logger core.Logger) SendGridOption {
	return func(s *SendGridSender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSendGridClient(client SendGridAPI) SendGridOption {
	return func(s *SendGridSender) {
		if client != nil {
			s.client = client
		}
	}
}

func NewSendGridSender(apiKey string, options ...SendGridOption) (*SendGridSender, error) {
	sender := &SendGridSender{logger: glog.Nop()}
	for _, option := range options {
		if option != nil {
			option(sender)
		}
	}
	if sender.client == nil {
		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			return nil, fmt.Errorf("dispatch: sendgrid sender requires an api key")
		}
		sender.client = sendgrid.NewSendClient(apiKey)
	}
	return sender, nil
}

func (s *SendGridSender) Send(ctx context.Context, message core.OutreachMessage) (core.DispatchResult, error) {
	if s == nil || s.client == nil {
		return core.DispatchResult{}, fmt.Errorf("dispatch: sendgrid sender is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	email := mail.NewSingleEmail(
		mail.NewEmail("", message.FromAddress),
		message.Subject,
		mail.NewEmail("", message.ToAddress),
		message.Body,
		"",
	)

	response, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return core.DispatchResult{}, fmt.Errorf("dispatch: sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return core.DispatchResult{}, fmt.Errorf(
			"dispatch: sendgrid returned status %d: %s",
			response.StatusCode,
			strings.TrimSpace(response.Body),
		)
	}

	s.logger.Info("outreach email accepted by sendgrid",
		"to", message.ToAddress,
		"status_code", response.StatusCode,
	)

	return core.DispatchResult{
		Status:            core.OutreachStatusSent,
		ProviderMessageID: providerMessageID(response),
	}, nil
}

// providerMessageID prefers the X-Message-Id response header and falls back
// to the status code so the dispatch log always carries something traceable.
func providerMessageID(response *rest.Response) string {
	if response == nil {
		return ""
	}
	for key, values := range response.Headers {
		if strings.EqualFold(key, "X-Message-Id") && len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			return strings.TrimSpace(values[0])
		}
	}
	return strconv.Itoa(response.StatusCode)
}

var _ core.Sender = (*SendGridSender)(nil)
