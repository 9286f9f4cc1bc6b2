package counter

import (
	"context"
	"strconv"

	"github.com/fiftyscripts/zapscripts/internal/pkg/cache"
)

const (
	receivedKey  = "webhook:counters:received"
	processedKey = "webhook:counters:processed"
	failedKey    = "webhook:counters:failed"
	logErrorsKey = "webhook:counters:log_errors"
)

// AddWebhookReceived increments the received counter for a platform in Redis
func AddWebhookReceived(source string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, receivedKey, source, 1).Err()
}

// AddWebhookProcessed increments the processed counter for a platform in Redis
func AddWebhookProcessed(source string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, processedKey, source, 1).Err()
}

// AddWebhookFailed increments the failure counter for a platform in Redis
func AddWebhookFailed(source string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, failedKey, source, 1).Err()
}

// AddWebhookLogError counts audit rows that could not be written. The row
// itself is lost, so the counter is the only trace left for operators.
func AddWebhookLogError(source string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, logErrorsKey, source, 1).Err()
}

// Snapshot returns all webhook counters grouped by metric then platform.
func Snapshot() (map[string]map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	out := make(map[string]map[string]int64, 4)
	for name, key := range map[string]string{
		"received":   receivedKey,
		"processed":  processedKey,
		"failed":     failedKey,
		"log_errors": logErrorsKey,
	} {
		data, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		fields := make(map[string]int64, len(data))
		for source, v := range data {
			n, perr := strconv.ParseInt(v, 10, 64)
			if perr != nil {
				continue
			}
			fields[source] = n
		}
		out[name] = fields
	}
	return out, nil
}
