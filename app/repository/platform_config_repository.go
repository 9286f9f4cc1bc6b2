package repository

import (
	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
)

// platformConfigRepository implements the PlatformConfigRepository interface
type platformConfigRepository struct {
	db *gorm.DB
}

// NewPlatformConfigRepository creates a new platform config repository instance
func NewPlatformConfigRepository(db *gorm.DB) PlatformConfigRepository {
	return &platformConfigRepository{db: db}
}

// GetByKey retrieves a platform config row by its key
func (r *platformConfigRepository) GetByKey(configKey string) (*models.PlatformConfig, error) {
	var cfg models.PlatformConfig
	err := r.db.Where("config_key = ?", configKey).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List returns all platform config rows
func (r *platformConfigRepository) List() ([]models.PlatformConfig, error) {
	var configs []models.PlatformConfig
	err := r.db.Order("config_key ASC").Find(&configs).Error
	return configs, err
}

// Save creates or updates a platform config row
func (r *platformConfigRepository) Save(cfg *models.PlatformConfig) error {
	return r.db.Save(cfg).Error
}
