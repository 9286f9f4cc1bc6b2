package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fiftyscripts/zapscripts/internal/pkg/billing"
	"github.com/fiftyscripts/zapscripts/internal/pkg/database"
	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
	"github.com/fiftyscripts/zapscripts/internal/pkg/s3archive"
)

const cronTimeout = 5 * time.Minute

func verifyCronSecret(c *fiber.Ctx) bool {
	return billing.VerifyWebhookToken(bearerToken(c), env.GetEnv("CRON_SECRET", ""))
}

// HandleReprocessWebhooks retries stranded unhandled/ignored log entries.
// Invoked by the external scheduler; the in-process scheduler calls the
// same service method.
func HandleReprocessWebhooks(c *fiber.Ctx) error {
	if !verifyCronSecret(c) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid cron secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cronTimeout)
	defer cancel()

	svc := billing.NewServiceFromDB(database.GetDB())
	summary, err := svc.ReprocessPending(ctx, billing.ReprocessBatchSize)
	if err != nil {
		log.Errorf("webhook reprocess run failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "reprocess failed")
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// HandleExpirePlans downgrades profiles whose paid window has lapsed.
func HandleExpirePlans(c *fiber.Ctx) error {
	if !verifyCronSecret(c) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid cron secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cronTimeout)
	defer cancel()

	svc := billing.NewServiceFromDB(database.GetDB())
	summary, err := svc.ExpirePlans(ctx)
	if err != nil {
		log.Errorf("plan expiry run failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "expiry failed")
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// HandleArchiveWebhooks exports aged terminal log rows to object storage.
func HandleArchiveWebhooks(c *fiber.Ctx) error {
	if !verifyCronSecret(c) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid cron secret")
	}

	if !s3archive.Enabled() {
		return jsonError(c, fiber.StatusServiceUnavailable, "archive storage not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cronTimeout)
	defer cancel()

	summary, err := s3archive.Run(ctx)
	if err != nil {
		log.Errorf("webhook archive run failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "archive failed")
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
