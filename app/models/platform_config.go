package models

import "time"

// PlatformConfigKey returns the config row key for a platform source.
func PlatformConfigKey(platform string) string {
	return "platform_" + platform
}

// PlatformConfig holds the per-platform webhook token and the product-id to
// plan mapping. The database row is the source of truth; environment
// variables fill any field left empty here. Not versioned, last-write-wins
// on admin edits.
type PlatformConfig struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ConfigKey        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"config_key"`
	Token            string    `gorm:"type:varchar(255);default:''" json:"-"`
	StarterProductID string    `gorm:"type:varchar(100);default:''" json:"starter_product_id"`
	ProProductID     string    `gorm:"type:varchar(100);default:''" json:"pro_product_id"`
	PremiumProductID string    `gorm:"type:varchar(100);default:''" json:"premium_product_id"`
	CopilotProductID string    `gorm:"type:varchar(100);default:''" json:"copilot_product_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
