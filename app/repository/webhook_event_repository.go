package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fiftyscripts/zapscripts/app/models"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// Create appends a webhook log row
func (r *webhookEventRepository) Create(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

// GetByID retrieves a webhook event by its ID
func (r *webhookEventRepository) GetByID(id uint) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *webhookEventRepository) applyFilter(filter WebhookEventFilter) *gorm.DB {
	q := r.db.Model(&models.WebhookEvent{})
	if s := strings.TrimSpace(filter.Source); s != "" {
		q = q.Where("source = ?", strings.ToLower(s))
	}
	if s := strings.TrimSpace(filter.Status); s != "" {
		q = q.Where("status = ?", strings.ToLower(s))
	}
	if e := strings.TrimSpace(filter.Email); e != "" {
		q = q.Where("email_extracted = ?", strings.ToLower(e))
	}
	return q
}

// List returns filtered webhook events, newest first
func (r *webhookEventRepository) List(filter WebhookEventFilter) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	q := r.applyFilter(filter).Order("created_at DESC")
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&events).Error
	return events, err
}

// Count returns the number of events matching the filter
func (r *webhookEventRepository) Count(filter WebhookEventFilter) (int64, error) {
	var count int64
	err := r.applyFilter(filter).Count(&count).Error
	return count, err
}

// CountByStatus groups the whole log by status
func (r *webhookEventRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.WebhookEvent{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// ListArchivable returns terminal rows old enough for cold storage. Rows
// still waiting on the reprocessor are never archived.
func (r *webhookEventRepository) ListArchivable(olderThan time.Time, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	q := r.db.
		Where("archived_at IS NULL AND created_at < ? AND status NOT IN ?",
			olderThan, []string{models.WebhookStatusUnhandled, models.WebhookStatusIgnored}).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

// MarkArchived stamps rows that were copied to cold storage
func (r *webhookEventRepository) MarkArchived(ids []uint, archivedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.WebhookEvent{}).
		Where("id IN ?", ids).
		Update("archived_at", archivedAt).Error
}
