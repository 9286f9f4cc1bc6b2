package models

import "time"

// Webhook source constants used across webhook-related models.
const (
	WebhookSourceHotmart  = "hotmart"
	WebhookSourceKiwify   = "kiwify"
	WebhookSourcePagTrust = "pagtrust"
	WebhookSourceInternal = "internal"
	WebhookSourceSystem   = "system"
)

// Webhook log status taxonomy. The log is both the audit trail and the
// retry queue: the reprocessor scans unhandled/ignored rows and moves the
// ones it can resolve to reprocessed.
const (
	WebhookStatusSuccess     = "success"
	WebhookStatusError       = "error"
	WebhookStatusWarning     = "warning"
	WebhookStatusIgnored     = "ignored"
	WebhookStatusUnhandled   = "unhandled"
	WebhookStatusDuplicate   = "duplicate"
	WebhookStatusReprocessed = "reprocessed"
)

// WebhookEvent stores every received or reprocessed payment-platform event.
// Payload is immutable after insert; only status/error_message change, and
// only through the reprocessor.
type WebhookEvent struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Source         string     `gorm:"type:varchar(20);not null;index" json:"source"`
	EventType      string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON    string     `gorm:"type:text;not null" json:"payload_json"`
	PayloadHash    string     `gorm:"type:char(64);not null;default:'';index" json:"payload_hash"`
	EmailExtracted string     `gorm:"type:varchar(200);default:'';index" json:"email_extracted"`
	UserID         *uint      `gorm:"default:null;index" json:"user_id,omitempty"`
	PlanGranted    string     `gorm:"type:varchar(50);default:''" json:"plan_granted"`
	Status         string     `gorm:"type:varchar(20);not null;index" json:"status"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message"`
	ProcessedAt    *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ArchivedAt     *time.Time `gorm:"type:timestamp;default:null;index" json:"archived_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsRetryable reports whether the reprocessor considers this entry a
// candidate for another attempt.
func (e *WebhookEvent) IsRetryable() bool {
	return e.Status == WebhookStatusUnhandled || e.Status == WebhookStatusIgnored
}
