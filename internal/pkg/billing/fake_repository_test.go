package billing

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	users     map[string]*models.User
	profiles  map[uint]*models.Profile
	events    []*models.WebhookEvent
	platforms map[string]*models.PlatformConfig

	nextUserID  uint
	nextEventID uint

	failAppend bool
	failUpdate bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:      map[string]*models.User{},
		profiles:   map[uint]*models.Profile{},
		platforms:  map[string]*models.PlatformConfig{},
		nextUserID: 1,
	}
}

func (r *fakeRepository) seedUser(email, plan string) *models.User {
	user := &models.User{Name: email, Email: email, Status: models.STATUS_ACTIVE}
	user.ID = r.nextUserID
	r.nextUserID++
	r.users[email] = user
	r.profiles[user.ID] = &models.Profile{UserID: user.ID, Plan: plan}
	return user
}

func (r *fakeRepository) GetUserByEmail(email string) (*models.User, error) {
	if user, ok := r.users[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateUserWithProfile(user *models.User, profile *models.Profile) error {
	user.ID = r.nextUserID
	r.nextUserID++
	r.users[strings.ToLower(user.Email)] = user
	profile.UserID = user.ID
	r.profiles[user.ID] = profile
	return nil
}

func (r *fakeRepository) GetOrCreateProfile(userID uint) (*models.Profile, error) {
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	p := &models.Profile{UserID: userID, Plan: string(PlanStarter)}
	r.profiles[userID] = p
	return p, nil
}

func (r *fakeRepository) UpdateProfilePlan(userID uint, updates map[string]interface{}) error {
	if r.failUpdate {
		return gorm.ErrInvalidDB
	}
	p, ok := r.profiles[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["plan"]; ok {
		p.Plan = v.(string)
	}
	if v, ok := updates["plan_started_at"]; ok {
		p.PlanStartedAt = asTimePtr(v)
	}
	if v, ok := updates["plan_expires_at"]; ok {
		p.PlanExpiresAt = asTimePtr(v)
	}
	if v, ok := updates["ai_credits_remaining"]; ok {
		p.AICreditsRemaining = v.(int)
	}
	if v, ok := updates["ai_credits_monthly"]; ok {
		p.AICreditsMonthly = v.(int)
	}
	return nil
}

func asTimePtr(v interface{}) *time.Time {
	if v == nil {
		return nil
	}
	if t, ok := v.(*time.Time); ok {
		return t
	}
	return nil
}

func (r *fakeRepository) ListExpiredProfiles(now time.Time) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range r.profiles {
		if p.Plan != string(PlanStarter) && p.PlanExpiresAt != nil && p.PlanExpiresAt.Before(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepository) AppendWebhookEvent(event *models.WebhookEvent) error {
	if r.failAppend {
		return gorm.ErrInvalidDB
	}
	r.nextEventID++
	event.ID = r.nextEventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeRepository) FindWebhookEventByHash(source, payloadHash string) (*models.WebhookEvent, error) {
	for _, e := range r.events {
		if e.Source == source && e.PayloadHash == payloadHash {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) ListWebhookEventsByStatus(statuses []string, limit int) ([]models.WebhookEvent, error) {
	want := map[string]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.WebhookEvent
	for _, e := range r.events {
		if want[e.Status] && e.ArchivedAt == nil {
			out = append(out, *e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateWebhookEventStatus(id uint, status, errorMessage string) error {
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now()
			e.Status = status
			e.ErrorMessage = errorMessage
			e.ProcessedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetPlatformConfig(configKey string) (*models.PlatformConfig, error) {
	if cfg, ok := r.platforms[configKey]; ok {
		return cfg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) SavePlatformConfig(cfg *models.PlatformConfig) error {
	r.platforms[cfg.ConfigKey] = cfg
	return nil
}
