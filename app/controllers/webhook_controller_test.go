package controllers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fiftyscripts/zapscripts/internal/pkg/cache"
	"github.com/fiftyscripts/zapscripts/internal/pkg/database"
	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
)

// resolveTestRedis finds a reachable redis endpoint for counter assertions
// and skips the test when none is available.
func resolveTestRedis(t *testing.T) (string, string, string) {
	t.Helper()

	hosts := []string{
		env.GetEnv("CACHE_HOST", ""),
		"localhost",
		"127.0.0.1",
	}
	port := env.GetEnv("CACHE_PORT", "6379")
	password := env.GetEnv("CACHE_PASSWORD", "")

	var lastErr error
	for _, host := range hosts {
		if host == "" {
			continue
		}
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", host, port),
			Password: password,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		_, err := client.Ping(ctx).Result()
		cancel()
		_ = client.Close()
		if err == nil {
			return host, port, password
		}
		lastErr = err
	}

	t.Skipf("Skipping redis-dependent test: no reachable redis endpoint (%v)", lastErr)
	return "", "", ""
}

func counterValue(t *testing.T, client *redis.Client, key, field string) int64 {
	t.Helper()
	val, err := client.HGet(context.Background(), key, field).Result()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		t.Fatalf("reading counter %s/%s failed: %v", key, field, err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		t.Fatalf("counter %s/%s is not a number: %v", key, field, err)
	}
	return n
}

// offlineDB returns a handle whose queries fail with a connection error,
// which pushes the handler onto its env-fallback config path.
func offlineDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=test dbname=test sslmode=disable"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening offline gorm handle failed: %v", err)
	}
	return db
}

func TestPlatformWebhook_ReceivedCounterOnlyMovesAfterTokenVerify(t *testing.T) {
	host, port, password := resolveTestRedis(t)
	t.Setenv("CACHE_HOST", host)
	t.Setenv("CACHE_PORT", port)
	t.Setenv("CACHE_PASSWORD", password)
	cache.SetupCache()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
	})
	defer client.Close()

	t.Setenv("HOTMART_WEBHOOK_TOKEN", "tok-123")
	database.DB = offlineDB(t)

	app := fiber.New()
	app.Post("/webhooks/hotmart", HandleHotmartWebhook)

	const receivedKey = "webhook:counters:received"
	payload := `{"event":"PURCHASE_APPROVED","data":{"buyer":{"email":"cliente@example.com"},"product":{"id":4412}}}`

	before := counterValue(t, client, receivedKey, "hotmart")

	req := httptest.NewRequest("POST", "/webhooks/hotmart", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hotmart-Hottok", "wrong-token")
	resp, err := app.Test(req, 15000)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
	if after := counterValue(t, client, receivedKey, "hotmart"); after != before {
		t.Fatalf("received counter moved on a rejected delivery: before=%d after=%d", before, after)
	}

	// An authenticated delivery is counted even when the dead database
	// turns the reconciliation into a 500.
	req = httptest.NewRequest("POST", "/webhooks/hotmart", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hotmart-Hottok", "tok-123")
	resp, err = app.Test(req, 15000)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusInternalServerError)
	}
	if after := counterValue(t, client, receivedKey, "hotmart"); after != before+1 {
		t.Fatalf("received counter should move once for the authenticated delivery: before=%d after=%d", before, after)
	}
}
