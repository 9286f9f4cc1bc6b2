package billing

import (
	"time"

	"github.com/fiftyscripts/zapscripts/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetUserByEmail(email string) (*models.User, error)
	CreateUserWithProfile(user *models.User, profile *models.Profile) error
	GetOrCreateProfile(userID uint) (*models.Profile, error)
	UpdateProfilePlan(userID uint, updates map[string]interface{}) error
	ListExpiredProfiles(now time.Time) ([]models.Profile, error)
	AppendWebhookEvent(event *models.WebhookEvent) error
	FindWebhookEventByHash(source, payloadHash string) (*models.WebhookEvent, error)
	ListWebhookEventsByStatus(statuses []string, limit int) ([]models.WebhookEvent, error)
	UpdateWebhookEventStatus(id uint, status, errorMessage string) error
	GetPlatformConfig(configKey string) (*models.PlatformConfig, error)
	SavePlatformConfig(cfg *models.PlatformConfig) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateUserWithProfile(user *models.User, profile *models.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *gormRepository) GetOrCreateProfile(userID uint) (*models.Profile, error) {
	return models.GetOrCreateProfile(r.db, userID)
}

func (r *gormRepository) UpdateProfilePlan(userID uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (r *gormRepository) ListExpiredProfiles(now time.Time) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.
		Where("plan <> ? AND plan_expires_at IS NOT NULL AND plan_expires_at < ?", string(PlanStarter), now).
		Find(&profiles).Error
	return profiles, err
}

func (r *gormRepository) AppendWebhookEvent(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *gormRepository) FindWebhookEventByHash(source, payloadHash string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.Where("source = ? AND payload_hash = ?", source, payloadHash).
		Order("id ASC").First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) ListWebhookEventsByStatus(statuses []string, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	q := r.db.Where("status IN ? AND archived_at IS NULL", statuses).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *gormRepository) UpdateWebhookEventStatus(id uint, status, errorMessage string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
		"processed_at":  &now,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) GetPlatformConfig(configKey string) (*models.PlatformConfig, error) {
	var cfg models.PlatformConfig
	err := r.db.Where("config_key = ?", configKey).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gormRepository) SavePlatformConfig(cfg *models.PlatformConfig) error {
	return r.db.Save(cfg).Error
}
