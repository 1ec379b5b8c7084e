// Package scheduler runs periodic background jobs via cron.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okarpenko/podhaven/internal/config"
	"github.com/okarpenko/podhaven/internal/database/podcasts"
	"github.com/okarpenko/podhaven/internal/tasks"
)

// CatalogRefreshScheduler periodically enqueues refresh tasks for stale
// catalog mirrors, so liked podcasts keep tracking their upstream entries.
type CatalogRefreshScheduler struct {
	repo   *podcasts.Repository
	queue  *tasks.Client
	config config.CatalogRefresh

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCatalogRefreshScheduler creates a new scheduler instance.
func NewCatalogRefreshScheduler(repo *podcasts.Repository, queue *tasks.Client, cfg config.CatalogRefresh) *CatalogRefreshScheduler {
	return &CatalogRefreshScheduler{
		repo:   repo,
		queue:  queue,
		config: cfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if catalog refresh is enabled.
func (s *CatalogRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Catalog refresh scheduler: disabled")
		return nil
	}
	if s.queue == nil {
		log.Printf("Catalog refresh scheduler: task queue not configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule catalog refresh job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Catalog refresh scheduler: started with schedule '%s'", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *CatalogRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Catalog refresh scheduler: stopped")
}

// RunNow triggers an immediate refresh pass.
func (s *CatalogRefreshScheduler) RunNow() {
	go s.runRefresh()
}

// IsRunning returns whether the scheduler is active.
func (s *CatalogRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next refresh pass will occur.
func (s *CatalogRefreshScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runRefresh finds stale mirrors and enqueues one refresh task per record.
func (s *CatalogRefreshScheduler) runRefresh() {
	cutoff := time.Now().Add(-s.config.StaleAfter)

	stale, err := s.repo.StaleMaterialized(cutoff)
	if err != nil {
		log.Printf("Catalog refresh: failed to query stale mirrors: %v", err)
		return
	}
	if len(stale) == 0 {
		log.Printf("Catalog refresh: no stale mirrors")
		return
	}

	var enqueued int
	for _, record := range stale {
		if _, err := s.queue.Add(tasks.RefreshPodcastTask{PodcastID: record.ID}).Save(); err != nil {
			log.Printf("Catalog refresh: failed to enqueue refresh for podcast %d: %v", record.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Catalog refresh: enqueued %d of %d stale mirrors", enqueued, len(stale))
}
