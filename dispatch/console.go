package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/goliatone/go-leads/core"
)

// ConsoleSender writes the outreach email to a writer instead of delivering
// it. It is the development and test transport: every send succeeds with the
// mock_sent status so the rest of the pipeline behaves exactly as it does in
// production.
type ConsoleSender struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSender(out io.Writer) *ConsoleSender {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSender{out: out}
}

func (s *ConsoleSender) Send(_ context.Context, message core.OutreachMessage) (core.DispatchResult, error) {
	if s == nil {
		return core.DispatchResult{}, fmt.Errorf("dispatch: console sender is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, "--- EMAIL (console fallback) ---")
	fmt.Fprintf(s.out, "From: %s\n", message.FromAddress)
	fmt.Fprintf(s.out, "To: %s\n", message.ToAddress)
	fmt.Fprintf(s.out, "Subject: %s\n", message.Subject)
	fmt.Fprintln(s.out, strings.Repeat("-", 40))
	fmt.Fprintln(s.out, message.Body)
	fmt.Fprintln(s.out, "--- END EMAIL ---")

	return core.DispatchResult{
		Status:            core.OutreachStatusMockSent,
		ProviderMessageID: "mock_sent",
	}, nil
}

var _ core.Sender = (*ConsoleSender)(nil)

// FromConfig picks the transport the way startup does: sendgrid when the
// provider says so, console otherwise.
func FromConfig(cfg core.MailerConfig, options ...SendGridOption) (core.Sender, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Provider)) {
	case core.MailerProviderSendGrid:
		return NewSendGridSender(cfg.SendGridAPIKey, options...)
	case core.MailerProviderConsole, "":
		return NewConsoleSender(nil), nil
	default:
		return nil, fmt.Errorf("dispatch: unknown mailer provider %q", cfg.Provider)
	}
}
