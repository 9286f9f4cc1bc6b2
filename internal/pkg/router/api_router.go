package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/fiftyscripts/zapscripts/app/controllers"
	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
	"github.com/fiftyscripts/zapscripts/internal/pkg/middleware"
)

// WebhookRouter installs the platform and internal webhook endpoints.
type WebhookRouter struct {
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Rate limiting shares state across instances through redis so a
	// burst cannot be spread over replicas.
	webhooks := app.Group("/webhooks", limiter.New(limiter.Config{
		Max:        env.GetEnvInt("WEBHOOK_RATE_LIMIT", 120),
		Expiration: 1 * time.Minute,
		Storage: redisstorage.New(redisstorage.Config{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnvInt("CACHE_PORT", 6379),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: 1, // Separate database for limiter state
			Reset:    false,
		}),
	}))

	webhooks.Post("/hotmart", controllers.HandleHotmartWebhook)
	webhooks.Post("/kiwify", controllers.HandleKiwifyWebhook)
	webhooks.Post("/pagtrust", controllers.HandlePagTrustWebhook)

	webhooks.Post("/access-grant", controllers.HandleAccessGrant)
	webhooks.Post("/plan-upgrade", controllers.HandlePlanUpgrade)
	webhooks.Post("/plan-cancel", controllers.HandlePlanCancel)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}

// CronRouter installs the endpoints invoked by external schedulers.
type CronRouter struct {
}

func (h CronRouter) InstallRouter(app *fiber.App) {
	cron := app.Group("/cron")
	cron.Get("/reprocess-webhooks", controllers.HandleReprocessWebhooks)
	cron.Get("/expire-plans", controllers.HandleExpirePlans)
	cron.Get("/archive-webhooks", controllers.HandleArchiveWebhooks)
}

func NewCronRouter() *CronRouter {
	return &CronRouter{}
}

// AdminRouter installs the API-key protected operator endpoints.
type AdminRouter struct {
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	admin := app.Group("/admin", middleware.APIKeyAuthMiddleware(true))
	admin.Get("/platform-configs/:platform", controllers.HandleGetPlatformConfig)
	admin.Put("/platform-configs/:platform", controllers.HandlePutPlatformConfig)
	admin.Get("/webhook-events", controllers.HandleListWebhookEvents)
	admin.Get("/webhook-events/:id", controllers.HandleGetWebhookEvent)
	admin.Get("/stats", controllers.HandleAdminStats)
}

func NewAdminRouter() *AdminRouter {
	return &AdminRouter{}
}
