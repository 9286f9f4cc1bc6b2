package billing

import (
	"testing"

	"github.com/fiftyscripts/zapscripts/app/models"
)

func TestResolvePlatformConfig_EnvOnly(t *testing.T) {
	t.Setenv("KIWIFY_WEBHOOK_TOKEN", "env-token")
	t.Setenv("KIWIFY_PRODUCT_PREMIUM", "prod-premium")
	t.Setenv("KIWIFY_PRODUCT_COPILOT", "prod-copilot")

	cfg, err := ResolvePlatformConfig(newFakeRepository(), "kiwify")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("expected env token, got %q", cfg.Token)
	}
	if plan, ok := cfg.ResolvePlan("prod-premium"); !ok || plan != PlanPremium {
		t.Fatalf("expected prod-premium to map to premium, got %q (mapped=%v)", plan, ok)
	}
	if plan, ok := cfg.ResolvePlan("prod-copilot"); !ok || plan != PlanCopilot {
		t.Fatalf("expected prod-copilot to map to copilot, got %q (mapped=%v)", plan, ok)
	}
}

func TestResolvePlatformConfig_DBWinsPerField(t *testing.T) {
	t.Setenv("HOTMART_WEBHOOK_TOKEN", "env-token")
	t.Setenv("HOTMART_PRODUCT_PRO", "env-pro")
	t.Setenv("HOTMART_PRODUCT_PREMIUM", "env-premium")

	repo := newFakeRepository()
	repo.platforms[models.PlatformConfigKey("hotmart")] = &models.PlatformConfig{
		ConfigKey:    models.PlatformConfigKey("hotmart"),
		Token:        "db-token",
		ProProductID: "db-pro",
		// PremiumProductID left empty so env keeps that field
	}

	cfg, err := ResolvePlatformConfig(repo, "hotmart")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "db-token" {
		t.Fatalf("expected DB token to win, got %q", cfg.Token)
	}
	if plan, ok := cfg.ResolvePlan("db-pro"); !ok || plan != PlanPro {
		t.Fatalf("expected db-pro to map to pro, got %q (mapped=%v)", plan, ok)
	}
	if plan, ok := cfg.ResolvePlan("env-premium"); !ok || plan != PlanPremium {
		t.Fatalf("expected env-premium to survive for the empty DB field, got %q (mapped=%v)", plan, ok)
	}
	if _, ok := cfg.ResolvePlan("env-pro"); ok {
		t.Fatalf("expected env-pro to be shadowed by the DB value")
	}
}

func TestResolvePlatformConfig_FallbackPlans(t *testing.T) {
	repo := newFakeRepository()

	tests := []struct {
		platform string
		want     Plan
	}{
		{platform: "hotmart", want: PlanPro},
		{platform: "kiwify", want: PlanStarter},
		{platform: "pagtrust", want: PlanStarter},
	}

	for _, tt := range tests {
		cfg, err := ResolvePlatformConfig(repo, tt.platform)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.platform, err)
		}
		plan, mapped := cfg.ResolvePlan("unmapped-product")
		if mapped {
			t.Fatalf("expected unmapped product to report mapped=false for %s", tt.platform)
		}
		if plan != tt.want {
			t.Fatalf("fallback for %s = %q, want %q", tt.platform, plan, tt.want)
		}
	}
}

func TestResolvePlatformConfig_EmptyPlatform(t *testing.T) {
	if _, err := ResolvePlatformConfig(newFakeRepository(), " "); err == nil {
		t.Fatalf("expected error for empty platform")
	}
}
