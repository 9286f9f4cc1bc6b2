package billing

import "strings"

// Plan is a subscription tier. Tiers are strictly ordered for access
// gating: starter < pro < premium < copilot.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
	PlanCopilot Plan = "copilot"
)

// UnlimitedCredits is the sentinel for plans without a monthly AI cap.
const UnlimitedCredits = -1

func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPro):
		return PlanPro
	case string(PlanPremium):
		return PlanPremium
	case string(PlanCopilot):
		return PlanCopilot
	default:
		return PlanStarter
	}
}

// IsValidPlan reports whether the raw string names a known tier exactly.
// Unlike NormalizePlan it does not coerce unknown values to starter.
func IsValidPlan(plan string) bool {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanStarter), string(PlanPro), string(PlanPremium), string(PlanCopilot):
		return true
	default:
		return false
	}
}

func PlanRank(plan Plan) int {
	switch NormalizePlan(string(plan)) {
	case PlanCopilot:
		return 3
	case PlanPremium:
		return 2
	case PlanPro:
		return 1
	default:
		return 0
	}
}

// CreditsForPlan returns the AI credit allotment (remaining, monthly) a
// plan grants on purchase. Premium gets a fixed monthly budget, copilot is
// uncapped, everything else generates scripts without AI assistance.
func CreditsForPlan(plan Plan) (remaining int, monthly int) {
	switch NormalizePlan(string(plan)) {
	case PlanPremium:
		return 15, 15
	case PlanCopilot:
		return UnlimitedCredits, UnlimitedCredits
	default:
		return 0, 0
	}
}
