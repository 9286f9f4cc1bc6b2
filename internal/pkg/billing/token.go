package billing

import (
	"crypto/subtle"
	"strings"
)

// VerifyWebhookToken compares a webhook header value against the expected
// shared secret in constant time. Empty values on either side always fail.
// Length is not secret, so a length mismatch may return early.
func VerifyWebhookToken(headerValue, expectedToken string) bool {
	header := strings.TrimSpace(headerValue)
	expected := strings.TrimSpace(expectedToken)
	if header == "" || expected == "" {
		return false
	}
	if len(header) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(expected)) == 1
}
