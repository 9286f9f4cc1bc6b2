package billing

import (
	"errors"
	"strings"

	"github.com/fiftyscripts/zapscripts/app/models"
)

var (
	// ErrMissingEventType marks payloads without a recognizable event name.
	ErrMissingEventType = errors.New("webhook payload missing event type")
	// ErrMissingEmail marks purchase/cancel events without a buyer email.
	// Email is the only cross-platform user key, so these cannot be
	// reconciled and must be rejected rather than guessed.
	ErrMissingEmail = errors.New("webhook payload missing buyer email")
	// ErrUnknownPlatform marks an unconfigured webhook source.
	ErrUnknownPlatform = errors.New("unknown webhook platform")
	// ErrUserNotFound marks a cancellation for an email with no profile.
	ErrUserNotFound = errors.New("user not found")
)

// ParsePlatformEvent dispatches to the normalizer for the given source.
func ParsePlatformEvent(source string, payload []byte) (*CanonicalEvent, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "hotmart":
		return ParseHotmartEvent(payload)
	case "kiwify":
		return ParseKiwifyEvent(payload)
	case "pagtrust":
		return ParsePagTrustEvent(payload)
	default:
		return nil, ErrUnknownPlatform
	}
}

// UnhandledStatusFor returns the log status for an unrecognized event name
// on the given platform. Hotmart rows stay unhandled, the other platforms
// use ignored; both feed the reprocessor, but a future normalizer update
// may treat them differently.
func UnhandledStatusFor(source string) string {
	if strings.EqualFold(strings.TrimSpace(source), models.WebhookSourceHotmart) {
		return models.WebhookStatusUnhandled
	}
	return models.WebhookStatusIgnored
}
