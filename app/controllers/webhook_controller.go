package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fiftyscripts/zapscripts/app/models"
	"github.com/fiftyscripts/zapscripts/internal/pkg/billing"
	"github.com/fiftyscripts/zapscripts/internal/pkg/database"
	"github.com/fiftyscripts/zapscripts/internal/pkg/metrics/counter"
)

const webhookTimeout = 15 * time.Second

// Each platform authenticates with its own shared-secret header.
var platformTokenHeaders = map[string]string{
	models.WebhookSourceHotmart:  "X-Hotmart-Hottok",
	models.WebhookSourceKiwify:   "X-Kiwify-Token",
	models.WebhookSourcePagTrust: "X-PagTrust-Token",
}

func HandleHotmartWebhook(c *fiber.Ctx) error {
	return handlePlatformWebhook(c, models.WebhookSourceHotmart)
}

func HandleKiwifyWebhook(c *fiber.Ctx) error {
	return handlePlatformWebhook(c, models.WebhookSourceKiwify)
}

func HandlePagTrustWebhook(c *fiber.Ctx) error {
	return handlePlatformWebhook(c, models.WebhookSourcePagTrust)
}

// handlePlatformWebhook runs the full ingestion pipeline for one delivery:
// verify token, normalize, reconcile, log. Unauthenticated calls are
// rejected before any side effect, including the audit row.
func handlePlatformWebhook(c *fiber.Ctx, source string) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	svc := billing.NewServiceFromDB(database.GetDB())
	cfg, err := billing.ResolvePlatformConfig(svc.Repo(), source)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "platform config unavailable")
	}

	if !billing.VerifyWebhookToken(c.Get(platformTokenHeaders[source]), cfg.Token) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid webhook token")
	}

	// Rejected deliveries leave no trace anywhere, not even a metric, so
	// the counter only moves for authenticated traffic.
	counter.AddWebhookReceived(source)

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	event, err := billing.ParsePlatformEvent(source, rawBody)
	if err != nil {
		counter.AddWebhookFailed(source)
		svc.LogEvent(billing.LogInput{
			Source:       source,
			EventType:    "",
			PayloadJSON:  string(rawBody),
			Status:       models.WebhookStatusError,
			ErrorMessage: err.Error(),
		})
		if errors.Is(err, billing.ErrMissingEventType) {
			return jsonError(c, fiber.StatusBadRequest, "missing event type")
		}
		return jsonError(c, fiber.StatusBadRequest, "invalid payload")
	}

	switch event.Class {
	case billing.EventPending:
		// Transient payment states carry no profile change. Acknowledge so
		// the platform stops retrying.
		svc.LogEvent(billing.LogInput{
			Source:         source,
			EventType:      event.EventType,
			PayloadJSON:    string(rawBody),
			EmailExtracted: event.Email,
			Status:         models.WebhookStatusWarning,
		})
		counter.AddWebhookProcessed(source)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "event": event.EventType})
	case billing.EventUnknown:
		svc.LogEvent(billing.LogInput{
			Source:         source,
			EventType:      event.EventType,
			PayloadJSON:    string(rawBody),
			EmailExtracted: event.Email,
			Status:         billing.UnhandledStatusFor(source),
		})
		counter.AddWebhookProcessed(source)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "event": event.EventType})
	}

	if event.Email == "" {
		counter.AddWebhookFailed(source)
		svc.LogEvent(billing.LogInput{
			Source:       source,
			EventType:    event.EventType,
			PayloadJSON:  string(rawBody),
			Status:       models.WebhookStatusError,
			ErrorMessage: "missing buyer email",
		})
		return jsonError(c, fiber.StatusBadRequest, "missing buyer email")
	}

	duplicate, err := svc.FindDuplicate(source, string(rawBody))
	if err != nil {
		log.Warnf("duplicate lookup failed (source=%s): %v", source, err)
	}

	if event.Class == billing.EventCancel {
		res, err := svc.HandleCancellation(ctx, billing.CancelInput{
			Email:       event.Email,
			Source:      source,
			EventType:   event.EventType,
			PayloadJSON: string(rawBody),
		})
		if err != nil {
			counter.AddWebhookFailed(source)
			if errors.Is(err, billing.ErrUserNotFound) {
				return jsonError(c, fiber.StatusNotFound, "user not found")
			}
			log.Errorf("cancellation failed (source=%s type=%s): %v", source, event.EventType, err)
			return jsonError(c, fiber.StatusInternalServerError, "cancellation failed")
		}
		counter.AddWebhookProcessed(source)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "user_id": res.UserID})
	}

	plan, mapped := cfg.ResolvePlan(event.ProductID)
	warning := ""
	if !mapped {
		warning = fmt.Sprintf("product %q not mapped, granted fallback plan %s", event.ProductID, plan)
	}

	res, err := svc.HandlePurchase(ctx, billing.PurchaseInput{
		Email:       event.Email,
		Name:        event.Name,
		Plan:        plan,
		Source:      source,
		EventType:   event.EventType,
		PayloadJSON: string(rawBody),
		Duplicate:   duplicate != nil,
		Warning:     warning,
	})
	if err != nil {
		counter.AddWebhookFailed(source)
		log.Errorf("purchase failed (source=%s type=%s): %v", source, event.EventType, err)
		return jsonError(c, fiber.StatusInternalServerError, "purchase failed")
	}

	counter.AddWebhookProcessed(source)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user_id": res.UserID,
		"plan":    res.Plan,
	})
}
