package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
	"github.com/fiftyscripts/zapscripts/app/repository"
	"github.com/fiftyscripts/zapscripts/internal/pkg/billing"
	"github.com/fiftyscripts/zapscripts/internal/pkg/metrics/counter"
)

const maxWebhookEventPageSize = 200

// HandleGetPlatformConfig returns the resolved config view for a platform:
// the stored row merged with env fallbacks. The token itself is never
// returned, only whether one is set.
func HandleGetPlatformConfig(c *fiber.Ctx) error {
	platform := strings.ToLower(strings.TrimSpace(c.Params("platform")))
	if _, ok := platformTokenHeaders[platform]; !ok {
		return jsonError(c, fiber.StatusNotFound, "unknown platform")
	}

	repo := repository.GetGlobalFactory().GetPlatformConfigRepository()
	row, err := repo.GetByKey(models.PlatformConfigKey(platform))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "config lookup failed")
	}

	cfg, err := billing.ResolvePlatformConfig(billingRepo(), platform)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "config resolution failed")
	}

	productMap := make(map[string]string, len(cfg.ProductMap))
	for id, plan := range cfg.ProductMap {
		productMap[id] = string(plan)
	}

	resp := fiber.Map{
		"platform":      platform,
		"token_set":     cfg.Token != "",
		"fallback_plan": cfg.FallbackPlan,
		"product_map":   productMap,
		"db_row":        row, // nil when the platform is env-only
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// platformConfigUpdate is the PUT body for platform config rows.
type platformConfigUpdate struct {
	Token            *string `json:"token"`
	StarterProductID *string `json:"starter_product_id"`
	ProProductID     *string `json:"pro_product_id"`
	PremiumProductID *string `json:"premium_product_id"`
	CopilotProductID *string `json:"copilot_product_id"`
}

// HandlePutPlatformConfig creates or updates the DB row for a platform.
// Only fields present in the body change; the row is last-write-wins.
func HandlePutPlatformConfig(c *fiber.Ctx) error {
	platform := strings.ToLower(strings.TrimSpace(c.Params("platform")))
	if _, ok := platformTokenHeaders[platform]; !ok {
		return jsonError(c, fiber.StatusNotFound, "unknown platform")
	}

	var req platformConfigUpdate
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid payload")
	}

	repo := repository.GetGlobalFactory().GetPlatformConfigRepository()
	key := models.PlatformConfigKey(platform)
	row, err := repo.GetByKey(key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusInternalServerError, "config lookup failed")
		}
		row = &models.PlatformConfig{ConfigKey: key}
	}

	if req.Token != nil {
		row.Token = strings.TrimSpace(*req.Token)
	}
	if req.StarterProductID != nil {
		row.StarterProductID = strings.TrimSpace(*req.StarterProductID)
	}
	if req.ProProductID != nil {
		row.ProProductID = strings.TrimSpace(*req.ProProductID)
	}
	if req.PremiumProductID != nil {
		row.PremiumProductID = strings.TrimSpace(*req.PremiumProductID)
	}
	if req.CopilotProductID != nil {
		row.CopilotProductID = strings.TrimSpace(*req.CopilotProductID)
	}

	if err := repo.Save(row); err != nil {
		log.Errorf("platform config save failed for %s: %v", platform, err)
		return jsonError(c, fiber.StatusInternalServerError, "config save failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "config": row})
}

// HandleListWebhookEvents lists webhook log rows, newest first, filtered by
// status, source and extracted email.
func HandleListWebhookEvents(c *fiber.Ctx) error {
	filter := repository.WebhookEventFilter{
		Source: c.Query("source"),
		Status: c.Query("status"),
		Email:  c.Query("email"),
		Offset: queryInt(c, "offset", 0, 0),
		Limit:  queryInt(c, "limit", 50, maxWebhookEventPageSize),
	}

	repo := repository.GetGlobalFactory().GetWebhookEventRepository()
	events, err := repo.List(filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "event listing failed")
	}
	total, err := repo.Count(filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "event count failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"events": events,
		"total":  total,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})
}

// HandleGetWebhookEvent returns a single log row with its stored payload.
func HandleGetWebhookEvent(c *fiber.Ctx) error {
	id := queryIntParam(c, "id")
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid event id")
	}

	repo := repository.GetGlobalFactory().GetWebhookEventRepository()
	event, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "event not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "event lookup failed")
	}

	return c.Status(fiber.StatusOK).JSON(event)
}

// HandleAdminStats aggregates service health numbers: users per plan,
// webhook log rows per status, and the redis ingest counters.
func HandleAdminStats(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	userCount, err := repos.User.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats failed")
	}
	byPlan, err := repos.User.CountByPlan()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats failed")
	}
	byStatus, err := repos.WebhookEvent.CountByStatus()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats failed")
	}

	// Counter snapshot is best-effort; a redis outage must not blank the
	// rest of the stats.
	counters, err := counter.Snapshot()
	if err != nil {
		log.Warnf("counter snapshot failed: %v", err)
		counters = nil
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users":            userCount,
		"profiles_by_plan": byPlan,
		"events_by_status": byStatus,
		"webhook_counters": counters,
	})
}
