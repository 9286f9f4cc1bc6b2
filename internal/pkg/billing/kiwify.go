package billing

import (
	"encoding/json"
	"strings"
)

// Kiwify uses lowercase snake_case event names in webhook_event_type and
// capitalized top-level Customer/Product objects.
func ParseKiwifyEvent(payload []byte) (*CanonicalEvent, error) {
	type rawPayload struct {
		WebhookEventType string `json:"webhook_event_type"`
		Customer         struct {
			Email    string `json:"email"`
			FullName string `json:"full_name"`
		} `json:"Customer"`
		Product struct {
			ProductID string `json:"product_id"`
		} `json:"Product"`
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	eventType := strings.TrimSpace(raw.WebhookEventType)
	if eventType == "" {
		return nil, ErrMissingEventType
	}

	return &CanonicalEvent{
		Class:     classifyKiwifyEvent(eventType),
		EventType: eventType,
		Email:     strings.TrimSpace(strings.ToLower(raw.Customer.Email)),
		Name:      strings.TrimSpace(raw.Customer.FullName),
		ProductID: strings.TrimSpace(raw.Product.ProductID),
		Raw:       payload,
	}, nil
}

func classifyKiwifyEvent(eventType string) EventClass {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "order_paid", "order_approved", "subscription_renewed":
		return EventPurchase
	case "order_refunded", "chargeback", "subscription_canceled", "subscription_late":
		return EventCancel
	case "waiting_payment", "pix_created", "boleto_created", "payment_expired":
		return EventPending
	default:
		return EventUnknown
	}
}
