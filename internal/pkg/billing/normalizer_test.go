package billing

import (
	"errors"
	"testing"

	"github.com/fiftyscripts/zapscripts/app/models"
)

func TestParseHotmartEvent(t *testing.T) {
	raw := []byte(`{
		"event": "PURCHASE_COMPLETE",
		"data": {
			"buyer": { "email": "Ana@Example.com", "name": "Ana Souza" },
			"product": { "id": 4412 }
		}
	}`)

	ev, err := ParseHotmartEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Class != EventPurchase {
		t.Fatalf("expected purchase class, got %q", ev.Class)
	}
	if ev.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %q", ev.Email)
	}
	if ev.Name != "Ana Souza" || ev.ProductID != "4412" {
		t.Fatalf("unexpected buyer fields: name=%q product=%q", ev.Name, ev.ProductID)
	}
}

func TestParseHotmartEvent_MissingEventType(t *testing.T) {
	_, err := ParseHotmartEvent([]byte(`{"data":{"buyer":{"email":"a@b.com"}}}`))
	if !errors.Is(err, ErrMissingEventType) {
		t.Fatalf("expected ErrMissingEventType, got %v", err)
	}
}

func TestClassifyHotmartEvent(t *testing.T) {
	tests := []struct {
		in   string
		want EventClass
	}{
		{in: "PURCHASE_COMPLETE", want: EventPurchase},
		{in: "PURCHASE_APPROVED", want: EventPurchase},
		{in: "PURCHASE_CANCELED", want: EventCancel},
		{in: "PURCHASE_REFUNDED", want: EventCancel},
		{in: "PURCHASE_CHARGEBACK", want: EventCancel},
		{in: "PURCHASE_PROTEST", want: EventCancel},
		{in: "SUBSCRIPTION_CANCELLATION", want: EventCancel},
		{in: "PURCHASE_DELAYED", want: EventPending},
		{in: "PURCHASE_BILLET_PRINTED", want: EventPending},
		{in: "PURCHASE_OUT_OF_SHOPPING_CART", want: EventPending},
		{in: "SWITCH_PLAN", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := classifyHotmartEvent(tt.in); got != tt.want {
			t.Fatalf("classifyHotmartEvent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKiwifyEvent(t *testing.T) {
	raw := []byte(`{
		"webhook_event_type": "order_paid",
		"Customer": { "email": "Joao@Example.com", "full_name": "Joao Lima" },
		"Product": { "product_id": "prod-789" }
	}`)

	ev, err := ParseKiwifyEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Class != EventPurchase {
		t.Fatalf("expected purchase class, got %q", ev.Class)
	}
	if ev.Email != "joao@example.com" || ev.Name != "Joao Lima" || ev.ProductID != "prod-789" {
		t.Fatalf("unexpected fields: email=%q name=%q product=%q", ev.Email, ev.Name, ev.ProductID)
	}
}

func TestClassifyKiwifyEvent(t *testing.T) {
	tests := []struct {
		in   string
		want EventClass
	}{
		{in: "order_paid", want: EventPurchase},
		{in: "order_approved", want: EventPurchase},
		{in: "subscription_renewed", want: EventPurchase},
		{in: "order_refunded", want: EventCancel},
		{in: "chargeback", want: EventCancel},
		{in: "subscription_canceled", want: EventCancel},
		{in: "subscription_late", want: EventCancel},
		{in: "waiting_payment", want: EventPending},
		{in: "pix_created", want: EventPending},
		{in: "boleto_created", want: EventPending},
		{in: "order_updated", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := classifyKiwifyEvent(tt.in); got != tt.want {
			t.Fatalf("classifyKiwifyEvent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePagTrustEvent_LegacyUppercase(t *testing.T) {
	raw := []byte(`{
		"event": "SALE_APPROVED",
		"data": {
			"buyer": { "email": "vendas@example.com", "name": "Vendedor" },
			"product": { "id": 9001 }
		}
	}`)

	ev, err := ParsePagTrustEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Class != EventPurchase {
		t.Fatalf("expected legacy uppercase event to classify as purchase, got %q", ev.Class)
	}
}

func TestClassifyPagTrustEvent(t *testing.T) {
	tests := []struct {
		in   string
		want EventClass
	}{
		{in: "purchase_approved", want: EventPurchase},
		{in: "purchase_complete", want: EventPurchase},
		{in: "sale_approved", want: EventPurchase},
		{in: "purchase_refunded", want: EventCancel},
		{in: "refund", want: EventCancel},
		{in: "chargeback", want: EventCancel},
		{in: "purchase_canceled", want: EventCancel},
		{in: "subscription_canceled", want: EventCancel},
		{in: "waiting_payment", want: EventPending},
		{in: "purchase_delayed", want: EventPending},
		{in: "payment_expired", want: EventPending},
		{in: "something_new", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := classifyPagTrustEvent(tt.in); got != tt.want {
			t.Fatalf("classifyPagTrustEvent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePlatformEvent_UnknownPlatform(t *testing.T) {
	if _, err := ParsePlatformEvent("stripe", []byte(`{}`)); !errors.Is(err, ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestUnhandledStatusFor(t *testing.T) {
	if got := UnhandledStatusFor("hotmart"); got != models.WebhookStatusUnhandled {
		t.Fatalf("expected hotmart to use unhandled, got %q", got)
	}
	for _, source := range []string{"kiwify", "pagtrust"} {
		if got := UnhandledStatusFor(source); got != models.WebhookStatusIgnored {
			t.Fatalf("expected %s to use ignored, got %q", source, got)
		}
	}
}
