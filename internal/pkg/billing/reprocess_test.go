package billing

import (
	"context"
	"testing"

	"github.com/fiftyscripts/zapscripts/app/models"
)

func TestClassifyForReprocess(t *testing.T) {
	tests := []struct {
		in   string
		want EventClass
	}{
		{in: "PURCHASE_REFUNDED_LATE", want: EventCancel},
		{in: "order_chargeback_disputed", want: EventCancel},
		{in: "SUBSCRIPTION_CANCELLED_BY_ADMIN", want: EventCancel},
		{in: "purchase_protest", want: EventCancel},
		{in: "SWITCH_PLAN", want: EventPurchase},
		{in: "order_bumped", want: EventPurchase},
	}

	for _, tt := range tests {
		if got := classifyForReprocess("hotmart", tt.in); got != tt.want {
			t.Fatalf("classifyForReprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReprocessPending_GrantsPlanForUnknownPurchaseEvent(t *testing.T) {
	t.Setenv("HOTMART_PRODUCT_PREMIUM", "4412")

	repo := newFakeRepository()
	s := newTestService(repo)
	s.LogEvent(LogInput{
		Source:      "hotmart",
		EventType:   "SWITCH_PLAN",
		PayloadJSON: `{"event":"SWITCH_PLAN","data":{"buyer":{"email":"late@example.com","name":"Late"},"product":{"id":4412}}}`,
		Status:      models.WebhookStatusUnhandled,
	})

	summary, err := s.ReprocessPending(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Scanned != 1 || summary.Reprocessed != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	user, err := repo.GetUserByEmail("late@example.com")
	if err != nil {
		t.Fatalf("expected user to be created: %v", err)
	}
	if repo.profiles[user.ID].Plan != "premium" {
		t.Fatalf("expected premium plan, got %q", repo.profiles[user.ID].Plan)
	}

	if repo.events[0].Status != models.WebhookStatusReprocessed {
		t.Fatalf("expected original row to be reprocessed, got %q", repo.events[0].Status)
	}
	if repo.events[0].ErrorMessage != "" {
		t.Fatalf("expected error message to be cleared, got %q", repo.events[0].ErrorMessage)
	}
	// No second audit row for the same delivery.
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event row, got %d", len(repo.events))
	}
}

func TestReprocessPending_CancelKeywordDowngrades(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)
	user := repo.seedUser("assinante@example.com", "pro")
	s.LogEvent(LogInput{
		Source:      "kiwify",
		EventType:   "subscription_cancelled_by_admin",
		PayloadJSON: `{"webhook_event_type":"subscription_cancelled_by_admin","Customer":{"email":"assinante@example.com"}}`,
		Status:      models.WebhookStatusIgnored,
	})

	summary, err := s.ReprocessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Reprocessed != 1 {
		t.Fatalf("expected 1 reprocessed, got %+v", summary)
	}
	if repo.profiles[user.ID].Plan != "starter" {
		t.Fatalf("expected downgrade to starter, got %q", repo.profiles[user.ID].Plan)
	}
}

func TestReprocessPending_KeepsStatusOnFailure(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)
	s.LogEvent(LogInput{
		Source:      "hotmart",
		EventType:   "SWITCH_PLAN",
		PayloadJSON: `{"event":"SWITCH_PLAN","data":{"buyer":{},"product":{"id":1}}}`,
		Status:      models.WebhookStatusUnhandled,
	})

	summary, err := s.ReprocessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 || summary.Reprocessed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	// Row stays retryable for the next sweep.
	if repo.events[0].Status != models.WebhookStatusUnhandled {
		t.Fatalf("expected status to stay unhandled, got %q", repo.events[0].Status)
	}
}

func TestReprocessPending_SkipsTerminalStatuses(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)
	s.LogEvent(LogInput{Source: "hotmart", EventType: "PURCHASE_COMPLETE", Status: models.WebhookStatusSuccess})
	s.LogEvent(LogInput{Source: "hotmart", EventType: "PURCHASE_COMPLETE", Status: models.WebhookStatusDuplicate})

	summary, err := s.ReprocessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Scanned != 0 {
		t.Fatalf("expected nothing to scan, got %+v", summary)
	}
}
