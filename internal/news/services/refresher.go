package services

import (
	"context"
	"sync"
	"time"

	"newsdeck/internal/core"
)

// Refresher keeps the headline cache warm by re-fetching page 1 of each
// configured category on a fixed interval. Every cycle goes through the
// repository's merge path, so favorites survive background refreshes the same
// way they survive on-demand ones.
type Refresher struct {
	repository *SyncRepository
	logger     *core.Logger
	config     *core.RefreshConfig
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewRefresher creates a new background refresher
func NewRefresher(repository *SyncRepository, logger *core.Logger, config *core.RefreshConfig) *Refresher {
	return &Refresher{
		repository: repository,
		logger:     logger,
		config:     config,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the refresh loop. A zero interval disables background
// refreshes; RefreshAll still works for on-demand cycles.
func (s *Refresher) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		s.logger.Info("Background refresh disabled")
		return nil
	}

	s.logger.Info("Starting headline refresher",
		"interval", s.config.Interval, "categories", s.config.Categories)

	s.wg.Add(1)
	go s.refreshLoop(ctx)

	return nil
}

// Stop gracefully stops the refresh loop.
func (s *Refresher) Stop(ctx context.Context) error {
	s.logger.Info("Stopping headline refresher")
	close(s.stopChan)
	s.wg.Wait()
	return nil
}

func (s *Refresher) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Warm the cache once at startup, then on every tick.
	s.RefreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresher context cancelled")
			return
		case <-s.stopChan:
			s.logger.Info("Refresher stop signal received")
			return
		case <-ticker.C:
			s.RefreshAll(ctx)
		}
	}
}

// RefreshAll runs one refresh cycle over every configured category and
// returns when the cycle completes. Per-category failures are logged and
// skipped; one unreachable category must not starve the others.
func (s *Refresher) RefreshAll(ctx context.Context) {
	if len(s.config.Categories) == 0 {
		return
	}

	s.logger.Info("Starting refresh cycle", "categories", len(s.config.Categories))

	categoryChan := make(chan string, len(s.config.Categories))
	var wg sync.WaitGroup

	workers := s.config.MaxWorkers
	if workers > len(s.config.Categories) {
		workers = len(s.config.Categories)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.categoryWorker(ctx, categoryChan, &wg)
	}

	for _, category := range s.config.Categories {
		categoryChan <- category
	}
	close(categoryChan)

	wg.Wait()
	s.logger.Info("Refresh cycle completed")
}

func (s *Refresher) categoryWorker(ctx context.Context, categoryChan <-chan string, wg *sync.WaitGroup) {
	defer wg.Done()

	for category := range categoryChan {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.repository.FetchHeadlines(ctx, category, 1); err != nil {
			s.logger.Error("Failed to refresh category", "category", category, "error", err)
		}
	}
}
