package billing

import "testing"

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "starter", want: PlanStarter},
		{in: "pro", want: PlanPro},
		{in: "premium", want: PlanPremium},
		{in: "copilot", want: PlanCopilot},
		{in: "COPILOT", want: PlanCopilot},
		{in: " pro ", want: PlanPro},
		{in: "enterprise", want: PlanStarter},
		{in: "", want: PlanStarter},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidPlan(t *testing.T) {
	for _, plan := range []string{"starter", "pro", "premium", "copilot", "Premium"} {
		if !IsValidPlan(plan) {
			t.Fatalf("expected %q to be a valid plan", plan)
		}
	}
	for _, plan := range []string{"", "free", "enterprise"} {
		if IsValidPlan(plan) {
			t.Fatalf("expected %q to be rejected", plan)
		}
	}
}

func TestPlanRank(t *testing.T) {
	order := []Plan{PlanStarter, PlanPro, PlanPremium, PlanCopilot}
	for i := 1; i < len(order); i++ {
		if PlanRank(order[i-1]) >= PlanRank(order[i]) {
			t.Fatalf("expected %s to outrank %s", order[i], order[i-1])
		}
	}
}

func TestCreditsForPlan(t *testing.T) {
	tests := []struct {
		plan      Plan
		remaining int
		monthly   int
	}{
		{plan: PlanStarter, remaining: 0, monthly: 0},
		{plan: PlanPro, remaining: 0, monthly: 0},
		{plan: PlanPremium, remaining: 15, monthly: 15},
		{plan: PlanCopilot, remaining: UnlimitedCredits, monthly: UnlimitedCredits},
	}

	for _, tt := range tests {
		remaining, monthly := CreditsForPlan(tt.plan)
		if remaining != tt.remaining || monthly != tt.monthly {
			t.Fatalf("CreditsForPlan(%s) = (%d, %d), want (%d, %d)",
				tt.plan, remaining, monthly, tt.remaining, tt.monthly)
		}
	}
}
