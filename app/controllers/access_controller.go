package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
	"github.com/fiftyscripts/zapscripts/internal/pkg/billing"
	"github.com/fiftyscripts/zapscripts/internal/pkg/database"
	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
)

// accessRequest is the body for the internal access-management endpoints.
type accessRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  string `json:"plan"`
}

func verifyInternalSecret(c *fiber.Ctx) bool {
	return billing.VerifyWebhookToken(c.Get("X-Webhook-Secret"), env.GetEnv("WEBHOOK_SECRET", ""))
}

// HandleAccessGrant grants a plan to an email, creating the user if needed.
// Used by internal tooling and support, not by the payment platforms.
func HandleAccessGrant(c *fiber.Ctx) error {
	return handleInternalGrant(c, "access_grant", true)
}

// HandlePlanUpgrade changes the plan of an existing user. Unknown emails
// are a 404 rather than an implicit signup.
func HandlePlanUpgrade(c *fiber.Ctx) error {
	return handleInternalGrant(c, "plan_upgrade", false)
}

func handleInternalGrant(c *fiber.Ctx, eventType string, allowCreate bool) error {
	if !verifyInternalSecret(c) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid webhook secret")
	}

	var req accessRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing email")
	}
	if !billing.IsValidPlan(req.Plan) {
		return jsonError(c, fiber.StatusBadRequest, "invalid plan")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	if !allowCreate {
		if _, err := svc.Repo().GetUserByEmail(email); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return jsonError(c, fiber.StatusNotFound, "user not found")
			}
			return jsonError(c, fiber.StatusInternalServerError, "user lookup failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	res, err := svc.HandlePurchase(ctx, billing.PurchaseInput{
		Email:       email,
		Name:        req.Name,
		Plan:        billing.NormalizePlan(req.Plan),
		Source:      models.WebhookSourceInternal,
		EventType:   eventType,
		PayloadJSON: string(c.BodyRaw()),
	})
	if err != nil {
		log.Errorf("internal %s failed for %s: %v", eventType, email, err)
		return jsonError(c, fiber.StatusInternalServerError, "grant failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user_id": res.UserID,
		"plan":    res.Plan,
		"created": res.Created,
	})
}

// HandlePlanCancel downgrades an existing user to starter.
func HandlePlanCancel(c *fiber.Ctx) error {
	if !verifyInternalSecret(c) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid webhook secret")
	}

	var req accessRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing email")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	res, err := svc.HandleCancellation(ctx, billing.CancelInput{
		Email:       email,
		Source:      models.WebhookSourceInternal,
		EventType:   "plan_cancel",
		PayloadJSON: string(c.BodyRaw()),
	})
	if err != nil {
		if errors.Is(err, billing.ErrUserNotFound) {
			return jsonError(c, fiber.StatusNotFound, "user not found")
		}
		log.Errorf("internal plan_cancel failed for %s: %v", email, err)
		return jsonError(c, fiber.StatusInternalServerError, "cancellation failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "user_id": res.UserID})
}
