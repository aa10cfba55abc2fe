package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/goliatone/go-leads/core"
)

func sampleMessage() core.OutreachMessage {
	return core.OutreachMessage{
		LeadID:      "lead-uuid-1",
		ToAddress:   "pat@example.com",
		FromAddress: "bob@example.com",
		Subject:     "Quick follow-up from Bob's Plumbing",
		Body:        "Hi Pat,\n\nThanks for your interest.",
	}
}

type stubSendGridAPI struct {
	response *rest.Response
	err      error
	sent     []*mail.SGMailV3
}

func (s *stubSendGridAPI) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.sent = append(s.sent, email)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func TestSendGridSender_SendSuccess(t *testing.T) {
	api := &stubSendGridAPI{response: &rest.Response{
		StatusCode: 202,
		Headers:    map[string][]string{"X-Message-Id": {"sg-msg-42"}},
	}}
	sender, err := NewSendGridSender("", WithSendGridClient(api))
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}

	result, err := sender.Send(context.Background(), sampleMessage())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Status != core.OutreachStatusSent {
		t.Fatalf("expected sent status, got %q", result.Status)
	}
	if result.ProviderMessageID != "sg-msg-42" {
		t.Fatalf("expected provider message id from X-Message-Id, got %q", result.ProviderMessageID)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected one api call, got %d", len(api.sent))
	}
	if api.sent[0].Subject != "Quick follow-up from Bob's Plumbing" {
		t.Fatalf("unexpected subject %q", api.sent[0].Subject)
	}
}

func TestSendGridSender_StatusCodeFallbackID(t *testing.T) {
	api := &stubSendGridAPI{response: &rest.Response{StatusCode: 202}}
	sender, _ := NewSendGridSender("", WithSendGridClient(api))

	result, err := sender.Send(context.Background(), sampleMessage())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.ProviderMessageID != "202" {
		t.Fatalf("expected status-code fallback id, got %q", result.ProviderMessageID)
	}
}

func TestSendGridSender_APIErrorSurfaces(t *testing.T) {
	api := &stubSendGridAPI{err: errors.New("connection reset by peer")}
	sender, _ := NewSendGridSender("", WithSendGridClient(api))

	if _, err := sender.Send(context.Background(), sampleMessage()); err == nil {
		t.Fatalf("expected transport error to surface")
	}
}

func TestSendGridSender_RejectionStatusSurfaces(t *testing.T) {
	api := &stubSendGridAPI{response: &rest.Response{StatusCode: 401, Body: `{"errors":[{"message":"bad key"}]}`}}
	sender, _ := NewSendGridSender("", WithSendGridClient(api))

	_, err := sender.Send(context.Background(), sampleMessage())
	if err == nil {
		t.Fatalf("expected rejection error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSendGridSender_RequiresAPIKeyWithoutClient(t *testing.T) {
	if _, err := NewSendGridSender("  "); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestConsoleSender_MockSend(t *testing.T) {
	var buf bytes.Buffer
	sender := NewConsoleSender(&buf)

	result, err := sender.Send(context.Background(), sampleMessage())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Status != core.OutreachStatusMockSent {
		t.Fatalf("expected mock_sent, got %q", result.Status)
	}
	if result.ProviderMessageID != "mock_sent" {
		t.Fatalf("expected mock provider id, got %q", result.ProviderMessageID)
	}
	output := buf.String()
	for _, want := range []string{"From: bob@example.com", "To: pat@example.com", "Subject: Quick follow-up"} {
		if !strings.Contains(output, want) {
			t.Fatalf("console output missing %q:\n%s", want, output)
		}
	}
}

func TestFromConfig(t *testing.T) {
	sender, err := FromConfig(core.MailerConfig{Provider: core.MailerProviderConsole})
	if err != nil {
		t.Fatalf("console config: %v", err)
	}
	if _, ok := sender.(*ConsoleSender); !ok {
		t.Fatalf("expected console sender, got %T", sender)
	}

	sender, err = FromConfig(core.MailerConfig{Provider: core.MailerProviderSendGrid, SendGridAPIKey: "sg-key"})
	if err != nil {
		t.Fatalf("sendgrid config: %v", err)
	}
	if _, ok := sender.(*SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender, got %T", sender)
	}

	if _, err := FromConfig(core.MailerConfig{Provider: "smtp"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
