package billing

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fiftyscripts/zapscripts/app/models"
	"github.com/fiftyscripts/zapscripts/internal/pkg/metrics/counter"
)

// ReprocessBatchSize bounds one reprocessor run.
const ReprocessBatchSize = 100

// ReprocessPending retries the oldest unhandled and ignored webhook rows.
// These are events whose names the normalizers did not recognize when they
// arrived; here they get a looser keyword classification instead, so a
// vocabulary gap on the platform side does not strand a paying customer.
//
// Rows that reconcile are marked reprocessed with their error cleared.
// Rows that still fail keep their status so the next run picks them up
// again.
func (s *Service) ReprocessPending(ctx context.Context, limit int) (*ReprocessSummary, error) {
	if limit <= 0 {
		limit = ReprocessBatchSize
	}

	events, err := s.repo.ListWebhookEventsByStatus(
		[]string{models.WebhookStatusUnhandled, models.WebhookStatusIgnored}, limit)
	if err != nil {
		return nil, err
	}

	summary := &ReprocessSummary{Scanned: len(events)}
	for i := range events {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		event := &events[i]
		if err := s.reprocessOne(ctx, event); err != nil {
			summary.Failed++
			counter.AddWebhookFailed(event.Source)
			log.Warnf("reprocess failed for webhook event %d (source=%s type=%s): %v",
				event.ID, event.Source, event.EventType, err)
			continue
		}
		summary.Reprocessed++
	}
	return summary, nil
}

func (s *Service) reprocessOne(ctx context.Context, event *models.WebhookEvent) error {
	parsed, err := ParsePlatformEvent(event.Source, []byte(event.PayloadJSON))
	if err != nil {
		return err
	}
	if parsed.Email == "" {
		return ErrMissingEmail
	}

	class := classifyForReprocess(event.Source, event.EventType)
	if class == EventCancel {
		in := CancelInput{
			Email:     parsed.Email,
			Source:    event.Source,
			EventType: event.EventType,
			SkipLog:   true,
		}
		if _, err := s.HandleCancellation(ctx, in); err != nil {
			return err
		}
	} else {
		cfg, err := ResolvePlatformConfig(s.repo, event.Source)
		if err != nil {
			return err
		}
		plan, _ := cfg.ResolvePlan(parsed.ProductID)
		in := PurchaseInput{
			Email:     parsed.Email,
			Name:      parsed.Name,
			Plan:      plan,
			Source:    event.Source,
			EventType: event.EventType,
			SkipLog:   true,
		}
		if _, err := s.HandlePurchase(ctx, in); err != nil {
			return err
		}
	}

	return s.repo.UpdateWebhookEventStatus(event.ID, models.WebhookStatusReprocessed, "")
}

// classifyForReprocess is the retry-time fallback classification. Platform
// prefixes like "purchase_" or "subscription_" are ignored; any revocation
// keyword means cancel, everything else is treated as a purchase.
func classifyForReprocess(source, eventType string) EventClass {
	t := strings.ToLower(strings.TrimSpace(eventType))
	t = strings.TrimPrefix(t, strings.ToLower(strings.TrimSpace(source))+".")
	for _, keyword := range []string{"refund", "chargeback", "cancel", "protest"} {
		if strings.Contains(t, keyword) {
			return EventCancel
		}
	}
	return EventPurchase
}
