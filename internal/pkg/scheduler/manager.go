package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fiftyscripts/zapscripts/internal/pkg/billing"
	"github.com/fiftyscripts/zapscripts/internal/pkg/database"
	"github.com/fiftyscripts/zapscripts/internal/pkg/env"
	"github.com/fiftyscripts/zapscripts/internal/pkg/s3archive"
)

// Manager runs the periodic maintenance jobs in-process: webhook
// reprocessing, plan expiry and log archival. Deployments with an external
// cron hit the /cron endpoints instead and leave SCHEDULER_ENABLED off;
// the jobs are idempotent, so running both does no harm.
type Manager struct {
	reprocessTicker *time.Ticker
	expiryTicker    *time.Ticker
	archiveTicker   *time.Ticker
	stopCh          chan struct{}
	wg              sync.WaitGroup
	mu              sync.Mutex
	running         bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global scheduler manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background maintenance workers
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Scheduler] Starting background maintenance workers")

	reprocessInterval := time.Duration(env.GetEnvInt("REPROCESS_INTERVAL_MINUTES", 10)) * time.Minute
	expiryInterval := time.Duration(env.GetEnvInt("EXPIRY_INTERVAL_HOURS", 24)) * time.Hour
	archiveInterval := time.Duration(env.GetEnvInt("ARCHIVE_INTERVAL_HOURS", 24)) * time.Hour

	m.reprocessTicker = time.NewTicker(reprocessInterval)
	m.wg.Add(1)
	go m.reprocessWorker()

	m.expiryTicker = time.NewTicker(expiryInterval)
	m.wg.Add(1)
	go m.expiryWorker()

	m.archiveTicker = time.NewTicker(archiveInterval)
	m.wg.Add(1)
	go m.archiveWorker()

	log.Info("[Scheduler] Started successfully")
}

// Stop stops the background workers and waits for them to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Scheduler] Stopping background maintenance workers...")

	if m.reprocessTicker != nil {
		m.reprocessTicker.Stop()
	}
	if m.expiryTicker != nil {
		m.expiryTicker.Stop()
	}
	if m.archiveTicker != nil {
		m.archiveTicker.Stop()
	}

	close(m.stopCh)
	m.running = false

	m.wg.Wait()

	log.Info("[Scheduler] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) reprocessWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Scheduler] Reprocess worker stopping")
			return
		case <-m.reprocessTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			svc := billing.NewServiceFromDB(database.GetDB())
			summary, err := svc.ReprocessPending(ctx, billing.ReprocessBatchSize)
			cancel()
			if err != nil {
				log.Errorf("[Scheduler] Reprocess run failed: %v", err)
				continue
			}
			if summary.Scanned > 0 {
				log.Infof("[Scheduler] Reprocess run: scanned=%d reprocessed=%d failed=%d",
					summary.Scanned, summary.Reprocessed, summary.Failed)
			}
		}
	}
}

func (m *Manager) expiryWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Scheduler] Expiry worker stopping")
			return
		case <-m.expiryTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			svc := billing.NewServiceFromDB(database.GetDB())
			summary, err := svc.ExpirePlans(ctx)
			cancel()
			if err != nil {
				log.Errorf("[Scheduler] Expiry run failed: %v", err)
				continue
			}
			if summary.Expired > 0 {
				log.Infof("[Scheduler] Expiry run: downgraded %d profiles", summary.Expired)
			}
		}
	}
}

func (m *Manager) archiveWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Scheduler] Archive worker stopping")
			return
		case <-m.archiveTicker.C:
			if !s3archive.Enabled() {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			summary, err := s3archive.Run(ctx)
			cancel()
			if err != nil {
				log.Errorf("[Scheduler] Archive run failed: %v", err)
				continue
			}
			if summary.Archived > 0 {
				log.Infof("[Scheduler] Archive run: archived %d rows to %s", summary.Archived, summary.Object)
			}
		}
	}
}
