// Package webhooks receives third-party lead notifications, verifies the
// shared secret, normalizes provider payloads, and hands them to the
// ingestion pipeline. The acknowledgement body is fixed so upstream retries
// see the same response whether a delivery was fresh or a duplicate.
package webhooks
