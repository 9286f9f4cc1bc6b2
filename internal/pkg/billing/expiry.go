package billing

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fiftyscripts/zapscripts/app/models"
)

// ExpirySummary reports one expiry sweep.
type ExpirySummary struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

// ExpirePlans downgrades every profile whose paid plan has lapsed. The
// query only matches profiles still on a paid plan, so running the sweep
// twice in a row is a no-op for already-downgraded users.
func (s *Service) ExpirePlans(ctx context.Context) (*ExpirySummary, error) {
	profiles, err := s.repo.ListExpiredProfiles(s.now())
	if err != nil {
		return nil, err
	}

	summary := &ExpirySummary{Scanned: len(profiles)}
	for i := range profiles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		profile := &profiles[i]
		updates := map[string]interface{}{
			"plan":                 string(PlanStarter),
			"plan_started_at":      nil,
			"plan_expires_at":      nil,
			"ai_credits_remaining": 0,
			"ai_credits_monthly":   0,
		}
		if err := s.repo.UpdateProfilePlan(profile.UserID, updates); err != nil {
			summary.Failed++
			log.Errorf("plan expiry failed for user %d: %v", profile.UserID, err)
			continue
		}
		summary.Expired++

		userID := profile.UserID
		s.LogEvent(LogInput{
			Source:      models.WebhookSourceSystem,
			EventType:   "plan_expired",
			PayloadJSON: fmt.Sprintf(`{"user_id":%d,"previous_plan":%q}`, userID, profile.Plan),
			UserID:      &userID,
			PlanGranted: string(PlanStarter),
			Status:      models.WebhookStatusSuccess,
		})
	}
	return summary, nil
}
