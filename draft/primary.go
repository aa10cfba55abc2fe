package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-leads/core"
)

const defaultCompletionsURL = "https://api.openai.com/v1/chat/completions"
const defaultPrimaryTimeout = 20 * time.Second
const maxCompletionBodyBytes int64 = 1 << 20
const completionMaxTokens = 200

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PrimaryDrafter asks a chat-completions endpoint for a short outreach body.
// Any failure surfaces as an error so the chain can fall back to the
// template; it never invents a draft on its own.
type PrimaryDrafter struct {
	client  HTTPDoer
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
}

func NewPrimaryDrafter(cfg core.DrafterConfig, client HTTPDoer) (*PrimaryDrafter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, goerrors.New("draft: primary drafter requires an api key", goerrors.CategoryBadInput).
			WithTextCode(core.LeadsErrorBadInput)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPrimaryTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultCompletionsURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &PrimaryDrafter{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}, nil
}

type completionRequest struct {
	Model     string              `json:"model"`
	Messages  []completionMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

func (d *PrimaryDrafter) Draft(ctx context.Context, lead core.Lead, tenant core.Tenant) (core.Draft, error) {
	if d == nil || d.client == nil {
		return core.Draft{}, goerrors.New("draft: primary drafter is not configured", goerrors.CategoryInternal).
			WithTextCode(core.LeadsErrorInternal)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	name := lead.ContactName()
	tenantName := strings.TrimSpace(tenant.Name)
	if tenantName == "" {
		tenantName = tenant.ID
	}

	payload, err := json.Marshal(completionRequest{
		Model: d.model,
		Messages: []completionMessage{
			{Role: "user", Content: buildPrompt(tenantName, name, lead)},
		},
		MaxTokens: completionMaxTokens,
	})
	if err != nil {
		return core.Draft{}, goerrors.Wrap(err, goerrors.CategoryInternal, "draft: encode completion request").
			WithTextCode(core.LeadsErrorInternal)
	}

	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, d.baseURL, bytes.NewReader(payload))
	if err != nil {
		return core.Draft{}, goerrors.Wrap(err, goerrors.CategoryInternal, "draft: create completion request").
			WithTextCode(core.LeadsErrorInternal)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)

	httpRes, err := d.client.Do(httpReq)
	if err != nil {
		return core.Draft{}, goerrors.Wrap(err, goerrors.CategoryExternal, "draft: execute completion request").
			WithTextCode(core.LeadsErrorInternal)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, maxCompletionBodyBytes))
	if err != nil {
		return core.Draft{}, goerrors.Wrap(err, goerrors.CategoryExternal, "draft: read completion response").
			WithTextCode(core.LeadsErrorInternal)
	}
	if httpRes.StatusCode < 200 || httpRes.StatusCode >= 300 {
		return core.Draft{}, goerrors.New(
			fmt.Sprintf("draft: completion endpoint returned status %d", httpRes.StatusCode),
			goerrors.CategoryExternal,
		).WithTextCode(core.LeadsErrorInternal).
			WithMetadata(map[string]any{"status_code": httpRes.StatusCode})
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return core.Draft{}, goerrors.Wrap(err, goerrors.CategoryExternal, "draft: decode completion response").
			WithTextCode(core.LeadsErrorInternal)
	}
	if len(decoded.Choices) == 0 {
		return core.Draft{}, goerrors.New("draft: completion response has no choices", goerrors.CategoryExternal).
			WithTextCode(core.LeadsErrorInternal)
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return core.Draft{}, goerrors.New("draft: completion response is empty", goerrors.CategoryExternal).
			WithTextCode(core.LeadsErrorInternal)
	}

	return core.Draft{
		Subject: fmt.Sprintf("Hi %s - %s following up", name, tenantName),
		Body:    content,
	}, nil
}

func buildPrompt(tenantName, contactName string, lead core.Lead) string {
	valueOr := func(value, fallback string) string {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
		return fallback
	}
	location := strings.TrimSpace(strings.TrimSpace(lead.City) + " " + strings.TrimSpace(lead.State))
	return fmt.Sprintf(
		"Write a brief, professional outreach email (2-3 sentences) from %s to a lead named %s.\n"+
			"Category: %s\nDescription: %s\nLocation: %s. "+
			"Do not use placeholders; write a real short email body only, no subject line.",
		tenantName,
		contactName,
		valueOr(lead.Category, "N/A"),
		valueOr(lead.Description, "N/A"),
		location,
	)
}

var _ core.Drafter = (*PrimaryDrafter)(nil)
