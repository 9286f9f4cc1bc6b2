package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and profile.
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, *models.Profile, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var profile models.Profile
	query := r.db.Where("api_key_hash = ? AND api_key_hash <> '' AND api_key_revoked_at IS NULL", trimmed)
	if err := query.First(&profile).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := r.db.First(&user, profile.UserID).Error; err != nil {
		return nil, nil, err
	}
	return &user, &profile, nil
}

// GetProfile returns the profile for a user, creating starter defaults if missing.
func (r *userRepository) GetProfile(userID uint) (*models.Profile, error) {
	return models.GetOrCreateProfile(r.db, userID)
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Search searches for users by name or email
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name ILIKE ? OR email ILIKE ?", searchPattern, searchPattern).Find(&users).Error
	return users, err
}

// CountByPlan returns the number of profiles on each plan.
func (r *userRepository) CountByPlan() (map[string]int64, error) {
	var rows []struct {
		Plan  string
		Count int64
	}
	err := r.db.Model(&models.Profile{}).
		Select("plan, COUNT(*) as count").
		Group("plan").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Plan] = row.Count
	}
	return out, nil
}
