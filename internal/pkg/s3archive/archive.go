package s3archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fiftyscripts/zapscripts/app/repository"
)

// Summary reports one archive run.
type Summary struct {
	Scanned  int    `json:"scanned"`
	Archived int    `json:"archived"`
	Object   string `json:"object,omitempty"`
}

// Enabled reports whether the archive is configured. A broken config
// counts as disabled; the error surfaces again when a run is attempted.
func Enabled() bool {
	cfg, err := LoadConfig()
	return err == nil && cfg.IsEnabled()
}

// Run exports one batch of aged terminal webhook log rows as a JSON object
// to the archive bucket and stamps them archived. Rows still waiting on
// the reprocessor are excluded by the repository query. The DB rows are
// kept (marked, not deleted) so the log stays queryable; pruning archived
// rows is a manual operation.
func Run(ctx context.Context) (*Summary, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("webhook archive is disabled")
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	repo := repository.GetGlobalFactory().GetWebhookEventRepository()
	cutoff := time.Now().Add(-cfg.ArchiveAfter)
	events, err := repo.ListArchivable(cutoff, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Scanned: len(events)}
	if len(events) == 0 {
		return summary, nil
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	objectKey := cfg.GetObjectKey(now)
	if err := client.UploadBatch(ctx, objectKey, payload); err != nil {
		return nil, err
	}

	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if err := repo.MarkArchived(ids, now); err != nil {
		// The batch is already in the bucket; rerunning re-uploads these
		// rows under a new key, which is harmless duplication.
		log.Errorf("[S3Archive] uploaded %s but failed to mark %d rows: %v", objectKey, len(ids), err)
		return nil, err
	}

	summary.Archived = len(ids)
	summary.Object = objectKey
	return summary, nil
}
