package s3archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
)

// Config holds webhook log archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
	ArchiveAfter    time.Duration
	BatchSize       int
}

// LoadConfig loads archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnvBool("S3_ARCHIVE_ENABLED", false),
		ArchiveAfter:    time.Duration(env.GetEnvInt("WEBHOOK_ARCHIVE_AFTER_DAYS", 90)) * 24 * time.Hour,
		BatchSize:       env.GetEnvInt("WEBHOOK_ARCHIVE_BATCH_SIZE", 500),
	}

	// Validate required fields if archiving is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the webhook archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the webhook archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the webhook archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the webhook archive is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// GetObjectKey generates the S3 key for one archive batch.
// Format: webhook-events/YYYY/MM/batch-<unix-nanos>.json
func (c *Config) GetObjectKey(t time.Time) string {
	return fmt.Sprintf("webhook-events/%04d/%02d/batch-%d.json", t.Year(), int(t.Month()), t.UnixNano())
}
