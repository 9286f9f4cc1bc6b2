package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.Profile, error)
	GetProfile(userID uint) (*models.Profile, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	CountByPlan() (map[string]int64, error)
}

// WebhookEventRepository defines the interface for webhook log operations
type WebhookEventRepository interface {
	Create(event *models.WebhookEvent) error
	GetByID(id uint) (*models.WebhookEvent, error)
	List(filter WebhookEventFilter) ([]models.WebhookEvent, error)
	Count(filter WebhookEventFilter) (int64, error)
	CountByStatus() (map[string]int64, error)
	ListArchivable(olderThan time.Time, limit int) ([]models.WebhookEvent, error)
	MarkArchived(ids []uint, archivedAt time.Time) error
}

// PlatformConfigRepository defines the interface for platform config rows
type PlatformConfigRepository interface {
	GetByKey(configKey string) (*models.PlatformConfig, error)
	List() ([]models.PlatformConfig, error)
	Save(cfg *models.PlatformConfig) error
}

// WebhookEventFilter narrows webhook log listings.
type WebhookEventFilter struct {
	Source string
	Status string
	Email  string
	Offset int
	Limit  int
}

// Repositories struct holds all repository instances
type Repositories struct {
	User           UserRepository
	WebhookEvent   WebhookEventRepository
	PlatformConfig PlatformConfigRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		WebhookEvent:   NewWebhookEventRepository(db),
		PlatformConfig: NewPlatformConfigRepository(db),
	}
}
