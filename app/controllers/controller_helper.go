package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fiftyscripts/zapscripts/internal/pkg/billing"
	"github.com/fiftyscripts/zapscripts/internal/pkg/database"
)

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// billingRepo returns a billing repository over the shared DB handle.
func billingRepo() billing.Repository {
	return billing.NewRepository(database.GetDB())
}

// queryIntParam reads a positive integer path parameter, 0 on failure.
func queryIntParam(c *fiber.Ctx, key string) uint {
	n, err := c.ParamsInt(key)
	if err != nil || n <= 0 {
		return 0
	}
	return uint(n)
}

// queryInt reads an integer query parameter clamped to [0, max]. Zero max
// means unclamped.
func queryInt(c *fiber.Ctx, key string, def, max int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
