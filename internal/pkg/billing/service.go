package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
	"github.com/fiftyscripts/zapscripts/internal/pkg/metrics/counter"
)

// PlanDuration is how long a purchase entitles the buyer before the
// expiry sweep downgrades them. Every successful purchase re-anchors it,
// so renewals extend access from the renewal date.
const PlanDuration = 30 * 24 * time.Hour

// Service reconciles webhook events against users and profiles.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Repo exposes the underlying repository for callers that need direct
// reads, such as the admin listing endpoints.
func (s *Service) Repo() Repository {
	return s.repo
}

// HandlePurchase grants or renews a plan for the buyer. Unknown emails get
// a fresh user with a random password; known emails get their profile
// overwritten with the full purchase state. The write is a complete
// overwrite rather than a diff, so replaying the same event is harmless.
func (s *Service) HandlePurchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	_ = ctx
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, ErrMissingEmail
	}

	plan := NormalizePlan(string(in.Plan))
	now := s.now()
	expiresAt := now.Add(PlanDuration)
	remaining, monthly := CreditsForPlan(plan)

	// An unexpected failure still leaves an audit row before the error
	// bubbles up, so the delivery stays traceable in the log.
	fail := func(cause error) (*PurchaseResult, error) {
		if !in.SkipLog {
			s.LogEvent(LogInput{
				Source:         in.Source,
				EventType:      in.EventType,
				PayloadJSON:    in.PayloadJSON,
				EmailExtracted: email,
				Status:         models.WebhookStatusError,
				ErrorMessage:   cause.Error(),
			})
		}
		return nil, cause
	}

	user, err := s.repo.GetUserByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(err)
	}

	created := false
	if user == nil {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = email
		}
		// The buyer signs in later through password reset; the random
		// password only blocks login until then.
		user, err = models.CreateUser(name, email, uuid.New().String())
		if err != nil {
			return fail(err)
		}
		profile := &models.Profile{
			Plan:               string(plan),
			PlanStartedAt:      &now,
			PlanExpiresAt:      &expiresAt,
			AICreditsRemaining: remaining,
			AICreditsMonthly:   monthly,
		}
		if err := s.repo.CreateUserWithProfile(user, profile); err != nil {
			return fail(err)
		}
		created = true
	} else {
		if _, err := s.repo.GetOrCreateProfile(user.ID); err != nil {
			return fail(err)
		}
		updates := map[string]interface{}{
			"plan":                 string(plan),
			"plan_started_at":      &now,
			"plan_expires_at":      &expiresAt,
			"ai_credits_remaining": remaining,
			"ai_credits_monthly":   monthly,
		}
		if err := s.repo.UpdateProfilePlan(user.ID, updates); err != nil {
			return fail(err)
		}
	}

	if in.SkipLog {
		return &PurchaseResult{UserID: user.ID, Plan: plan, Created: created}, nil
	}

	status := models.WebhookStatusSuccess
	if in.Warning != "" {
		status = models.WebhookStatusWarning
	}
	if in.Duplicate {
		status = models.WebhookStatusDuplicate
	}
	s.LogEvent(LogInput{
		Source:         in.Source,
		EventType:      in.EventType,
		PayloadJSON:    in.PayloadJSON,
		EmailExtracted: email,
		UserID:         &user.ID,
		PlanGranted:    string(plan),
		Status:         status,
		ErrorMessage:   in.Warning,
	})

	return &PurchaseResult{UserID: user.ID, Plan: plan, Created: created}, nil
}

// HandleCancellation downgrades the buyer to the starter plan. There is no
// grace period; refunds and chargebacks revoke access immediately.
func (s *Service) HandleCancellation(ctx context.Context, in CancelInput) (*CancelResult, error) {
	_ = ctx
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, ErrMissingEmail
	}

	fail := func(cause error) (*CancelResult, error) {
		if !in.SkipLog {
			s.LogEvent(LogInput{
				Source:         in.Source,
				EventType:      in.EventType,
				PayloadJSON:    in.PayloadJSON,
				EmailExtracted: email,
				Status:         models.WebhookStatusError,
				ErrorMessage:   cause.Error(),
			})
		}
		return nil, cause
	}

	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if !in.SkipLog {
				s.LogEvent(LogInput{
					Source:         in.Source,
					EventType:      in.EventType,
					PayloadJSON:    in.PayloadJSON,
					EmailExtracted: email,
					Status:         models.WebhookStatusError,
					ErrorMessage:   "User not found",
				})
			}
			return nil, ErrUserNotFound
		}
		return fail(err)
	}

	if _, err := s.repo.GetOrCreateProfile(user.ID); err != nil {
		return fail(err)
	}
	updates := map[string]interface{}{
		"plan":                 string(PlanStarter),
		"plan_started_at":      nil,
		"plan_expires_at":      nil,
		"ai_credits_remaining": 0,
		"ai_credits_monthly":   0,
	}
	if err := s.repo.UpdateProfilePlan(user.ID, updates); err != nil {
		return fail(err)
	}

	if !in.SkipLog {
		s.LogEvent(LogInput{
			Source:         in.Source,
			EventType:      in.EventType,
			PayloadJSON:    in.PayloadJSON,
			EmailExtracted: email,
			UserID:         &user.ID,
			PlanGranted:    string(PlanStarter),
			Status:         models.WebhookStatusSuccess,
		})
	}

	return &CancelResult{UserID: user.ID}, nil
}

// LogEvent appends an audit row for a webhook. Logging is best effort; a
// failed insert must never fail the webhook response, so the error is
// counted and swallowed.
func (s *Service) LogEvent(in LogInput) *models.WebhookEvent {
	event := &models.WebhookEvent{
		Source:         strings.ToLower(strings.TrimSpace(in.Source)),
		EventType:      in.EventType,
		PayloadJSON:    in.PayloadJSON,
		PayloadHash:    HashPayload(in.PayloadJSON),
		EmailExtracted: in.EmailExtracted,
		UserID:         in.UserID,
		PlanGranted:    in.PlanGranted,
		Status:         in.Status,
		ErrorMessage:   in.ErrorMessage,
	}
	if in.Status != models.WebhookStatusUnhandled && in.Status != models.WebhookStatusIgnored {
		now := s.now()
		event.ProcessedAt = &now
	}
	if err := s.repo.AppendWebhookEvent(event); err != nil {
		log.Errorf("webhook log append failed (source=%s type=%s): %v", event.Source, event.EventType, err)
		counter.AddWebhookLogError(event.Source)
		return nil
	}
	return event
}

// FindDuplicate reports the earliest stored event with the same payload on
// the same platform, if any.
func (s *Service) FindDuplicate(source, payloadJSON string) (*models.WebhookEvent, error) {
	event, err := s.repo.FindWebhookEventByHash(strings.ToLower(strings.TrimSpace(source)), HashPayload(payloadJSON))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// HashPayload fingerprints a raw payload for duplicate detection.
func HashPayload(payloadJSON string) string {
	sum := sha256.Sum256([]byte(payloadJSON))
	return hex.EncodeToString(sum[:])
}
