package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goliatone/go-leads/core"
)

const (
	DefaultAPIKeyHeader    = "X-API-KEY"
	DefaultSignatureHeader = "X-Signature"
)

type Verifier interface {
	Verify(ctx context.Context, req core.InboundRequest) error
}

// APIKeyVerifier matches a shared secret carried in a request header using a
// constant-time comparison. An empty configured token rejects everything,
// the same way an unset key does upstream.
type APIKeyVerifier struct {
	Header string
	Token  string
}

func NewAPIKeyVerifier(token string) APIKeyVerifier {
	return APIKeyVerifier{
		Header: DefaultAPIKeyHeader,
		Token:  strings.TrimSpace(token),
	}
}

func (v APIKeyVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	expected := strings.TrimSpace(v.Token)
	if expected == "" {
		return fmt.Errorf("webhooks: verification token is required")
	}
	header := strings.TrimSpace(v.Header)
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	actual := strings.TrimSpace(headerValue(req.Headers, header))
	if actual == "" {
		return fmt.Errorf("webhooks: %s verification header is required", header)
	}
	if subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) != 1 {
		return fmt.Errorf("webhooks: verification token mismatch")
	}
	return nil
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// HMACVerifier checks an HMAC-SHA256 signature of the raw request body
// carried in a header. Sources that sign deliveries instead of sending a
// shared key verify through this one.
type HMACVerifier struct {
	Header   string
	Prefix   string
	Secret   string
	Encoding string // hex | base64
}

func NewHMACVerifier(secret string) HMACVerifier {
	return HMACVerifier{
		Header: DefaultSignatureHeader,
		Secret: strings.TrimSpace(secret),
	}
}

func (v HMACVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return fmt.Errorf("webhooks: signature secret is required")
	}
	header := strings.TrimSpace(v.Header)
	if header == "" {
		header = DefaultSignatureHeader
	}
	value := strings.TrimSpace(headerValue(req.Headers, header))
	if value == "" {
		return fmt.Errorf("webhooks: %s signature header is required", header)
	}
	signature := strings.TrimSpace(strings.TrimPrefix(value, strings.TrimSpace(v.Prefix)))
	if signature == "" {
		return fmt.Errorf("webhooks: signature value is required")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(req.Body)
	expected := mac.Sum(nil)

	var decoded []byte
	var err error
	switch strings.ToLower(strings.TrimSpace(v.Encoding)) {
	case "base64":
		decoded, err = base64.StdEncoding.DecodeString(signature)
		if err != nil {
			return fmt.Errorf("webhooks: decode base64 signature: %w", err)
		}
	default:
		decoded, err = hex.DecodeString(signature)
		if err != nil {
			return fmt.Errorf("webhooks: decode hex signature: %w", err)
		}
	}
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return fmt.Errorf("webhooks: signature verification failed")
	}
	return nil
}

var (
	_ Verifier = APIKeyVerifier{}
	_ Verifier = HMACVerifier{}
)
