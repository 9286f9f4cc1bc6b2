package billing

import (
	"encoding/json"
	"strings"
)

// PagTrust mirrors the Hotmart buyer shape but sends lowercase event names.
// Older integrations still deliver the legacy uppercase vocabulary
// (SALE_APPROVED and friends), so classification is case-insensitive.
func ParsePagTrustEvent(payload []byte) (*CanonicalEvent, error) {
	type rawPayload struct {
		Event string `json:"event"`
		Data  struct {
			Buyer struct {
				Email string `json:"email"`
				Name  string `json:"name"`
			} `json:"buyer"`
			Product struct {
				ID json.Number `json:"id"`
			} `json:"product"`
		} `json:"data"`
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	eventType := strings.TrimSpace(raw.Event)
	if eventType == "" {
		return nil, ErrMissingEventType
	}

	return &CanonicalEvent{
		Class:     classifyPagTrustEvent(eventType),
		EventType: eventType,
		Email:     strings.TrimSpace(strings.ToLower(raw.Data.Buyer.Email)),
		Name:      strings.TrimSpace(raw.Data.Buyer.Name),
		ProductID: raw.Data.Product.ID.String(),
		Raw:       payload,
	}, nil
}

func classifyPagTrustEvent(eventType string) EventClass {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "purchase_approved", "purchase_complete", "sale_approved":
		return EventPurchase
	case "purchase_refunded", "refund", "chargeback", "purchase_canceled", "subscription_canceled":
		return EventCancel
	case "waiting_payment", "purchase_delayed", "payment_expired":
		return EventPending
	default:
		return EventUnknown
	}
}
