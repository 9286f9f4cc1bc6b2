package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Profile stores per-user subscription state and AI credit allotment.
// Plan fields are always written as a complete target state by the billing
// service, never incrementally, so concurrent writers stay last-write-wins.
type Profile struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"uniqueIndex" json:"user_id"`
	Plan               string         `gorm:"type:varchar(50);default:'starter';index" json:"plan"`
	PlanStartedAt      *time.Time     `gorm:"type:timestamp;default:null" json:"plan_started_at,omitempty"`
	PlanExpiresAt      *time.Time     `gorm:"type:timestamp;default:null;index" json:"plan_expires_at,omitempty"`
	AICreditsRemaining int            `gorm:"default:0" json:"ai_credits_remaining"`
	AICreditsMonthly   int            `gorm:"default:0" json:"ai_credits_monthly"`
	APIKeyHash         string         `gorm:"type:char(64);default:''" json:"-"`
	APIKeyPrefix       string         `gorm:"type:varchar(20);default:''" json:"api_key_prefix"`
	APIKeyCreatedAt    *time.Time     `json:"api_key_created_at"`
	APIKeyLastUsedAt   *time.Time     `json:"api_key_last_used_at"`
	APIKeyRevokedAt    *time.Time     `json:"api_key_revoked_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "zap_"

// GetOrCreateProfile returns existing profile or creates starter defaults
func GetOrCreateProfile(db *gorm.DB, userID uint) (*Profile, error) {
	var p Profile
	if err := db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			p = Profile{UserID: userID, Plan: "starter"}
			if err := db.Create(&p).Error; err != nil {
				return nil, err
			}
			return &p, nil
		}
		return nil, err
	}
	return &p, nil
}

// HasUnlimitedCredits reports whether the monthly allotment uses the
// unlimited sentinel.
func (p *Profile) HasUnlimitedCredits() bool {
	return p.AICreditsMonthly == -1
}

// IsExpired reports whether the plan window has passed. A nil expiry means
// the plan never expires.
func (p *Profile) IsExpired(now time.Time) bool {
	return p.PlanExpiresAt != nil && p.PlanExpiresAt.Before(now)
}

// HasActiveAPIKey reports whether the profile has an active API key configured
func (p *Profile) HasActiveAPIKey() bool {
	return p != nil && p.APIKeyHash != "" && p.APIKeyRevokedAt == nil
}

// IssueAPIKey generates a new API key, persists metadata on the struct, and returns the raw secret.
// Callers must persist the struct via the database after invoking this method.
func (p *Profile) IssueAPIKey() (string, error) {
	rawKey, prefix, hash, err := generateAPIKeyMaterial()
	if err != nil {
		return "", err
	}
	now := time.Now()
	p.APIKeyHash = hash
	p.APIKeyPrefix = prefix
	p.APIKeyCreatedAt = &now
	p.APIKeyRevokedAt = nil
	p.APIKeyLastUsedAt = nil
	return rawKey, nil
}

// RevokeAPIKey clears the stored API key metadata without deleting the record.
func (p *Profile) RevokeAPIKey() {
	p.APIKeyHash = ""
	p.APIKeyPrefix = ""
	now := time.Now()
	p.APIKeyRevokedAt = &now
	p.APIKeyLastUsedAt = nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateAPIKeyMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := strings.ToLower(apiKeyEncoding.EncodeToString(b))
	rawKey := apiKeyPrefix + encoded
	if len(rawKey) < 12 {
		return "", "", "", fmt.Errorf("api key generation failed: key too short")
	}
	prefix := rawKey[:min(len(rawKey), 16)]
	hash := HashAPIKey(rawKey)
	return rawKey, prefix, hash, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
