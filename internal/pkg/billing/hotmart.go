package billing

import (
	"encoding/json"
	"strings"
)

// Hotmart posts events with an uppercase event name and the buyer nested
// under data.buyer. Product ids are numeric on the wire.
//
// Example:
//
//	{"event":"PURCHASE_COMPLETE","data":{"buyer":{"email":"a@b.com","name":"Ana"},"product":{"id":123}}}
func ParseHotmartEvent(payload []byte) (*CanonicalEvent, error) {
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
		Class:     classifyHotmartEvent(eventType),
		EventType: eventType,
		Email:     strings.TrimSpace(strings.ToLower(raw.Data.Buyer.Email)),
		Name:      strings.TrimSpace(raw.Data.Buyer.Name),
		ProductID: raw.Data.Product.ID.String(),
		Raw:       payload,
	}, nil
}

func classifyHotmartEvent(eventType string) EventClass {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case "PURCHASE_COMPLETE", "PURCHASE_APPROVED":
		return EventPurchase
	case "PURCHASE_CANCELED", "PURCHASE_REFUNDED", "PURCHASE_CHARGEBACK",
		"PURCHASE_PROTEST", "SUBSCRIPTION_CANCELLATION":
		return EventCancel
	case "PURCHASE_DELAYED", "PURCHASE_BILLET_PRINTED", "PURCHASE_OUT_OF_SHOPPING_CART":
		return EventPending
	default:
		return EventUnknown
	}
}
