package billing

import (
	"errors"
	"strings"

	"github.com/fiftyscripts/zapscripts/app/models"
	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
	"gorm.io/gorm"
)

// PlatformConfig is the resolved per-platform verification token and
// product-id to plan mapping used while handling a single webhook.
type PlatformConfig struct {
	Platform     string
	Token        string
	ProductMap   map[string]Plan
	FallbackPlan Plan
}

// ResolvePlan maps a product id to its plan, falling back to the
// platform's documented default when the id is unmapped. The second return
// reports whether the id was explicitly mapped, so callers can warn
// operators about silent misclassification.
func (c PlatformConfig) ResolvePlan(productID string) (Plan, bool) {
	id := strings.TrimSpace(productID)
	if id != "" {
		if plan, ok := c.ProductMap[id]; ok {
			return plan, true
		}
	}
	return c.FallbackPlan, false
}

// ResolvePlatformConfig loads the config for a platform, preferring the
// database row over environment variables field by field: a non-empty DB
// value wins, anything left empty falls back to env. Operators can
// therefore override a single product mapping without re-supplying the
// rest. Resolution happens per request so edits apply to the next webhook
// without a restart.
func ResolvePlatformConfig(repo Repository, platform string) (PlatformConfig, error) {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" {
		return PlatformConfig{}, ErrUnknownPlatform
	}

	fallback := PlanStarter
	if p == models.WebhookSourceHotmart {
		fallback = PlanPro
	}

	cfg := PlatformConfig{
		Platform:     p,
		Token:        envFor(p, "WEBHOOK_TOKEN"),
		FallbackPlan: fallback,
	}
	starterID := envFor(p, "PRODUCT_STARTER")
	proID := envFor(p, "PRODUCT_PRO")
	premiumID := envFor(p, "PRODUCT_PREMIUM")
	copilotID := envFor(p, "PRODUCT_COPILOT")

	// A DB miss or outage must not take webhook ingestion down; env values
	// keep the platform working.
	row, err := repo.GetPlatformConfig(models.PlatformConfigKey(p))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		row = nil
	}
	if row != nil {
		cfg.Token = preferNonEmpty(row.Token, cfg.Token)
		starterID = preferNonEmpty(row.StarterProductID, starterID)
		proID = preferNonEmpty(row.ProProductID, proID)
		premiumID = preferNonEmpty(row.PremiumProductID, premiumID)
		copilotID = preferNonEmpty(row.CopilotProductID, copilotID)
	}

	cfg.ProductMap = make(map[string]Plan, 4)
	for id, plan := range map[string]Plan{
		starterID: PlanStarter,
		proID:     PlanPro,
		premiumID: PlanPremium,
		copilotID: PlanCopilot,
	} {
		if strings.TrimSpace(id) != "" {
			cfg.ProductMap[strings.TrimSpace(id)] = plan
		}
	}

	return cfg, nil
}

func envFor(platform, suffix string) string {
	return strings.TrimSpace(env.GetEnv(strings.ToUpper(platform)+"_"+suffix, ""))
}

func preferNonEmpty(dbValue, envValue string) string {
	if v := strings.TrimSpace(dbValue); v != "" {
		return v
	}
	return envValue
}
