package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"social-search-platform/internal/config"
	"social-search-platform/internal/logger"
)

// RetentionScheduler runs the periodic cleanup of usage events, history
// entries and stored result sets past their retention windows.
type RetentionScheduler struct {
	scheduler *gocron.Scheduler
	cfg       *config.Config
	usage     *UsageService
	history   *HistoryService
	store     *ResultStore
}

func NewRetentionScheduler(cfg *config.Config, usage *UsageService, history *HistoryService, store *ResultStore) *RetentionScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &RetentionScheduler{
		scheduler: s,
		cfg:       cfg,
		usage:     usage,
		history:   history,
		store:     store,
	}
}

// Start registers the cleanup job and starts the scheduler in the
// background. Cleanup runs nightly at 03:00 UTC when traffic is lowest.
func (s *RetentionScheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At("03:00").Tag("retention-cleanup").Do(s.runCleanup)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logger.Info("Retention scheduler started",
		"usage_retention_days", s.cfg.UsageRetentionDays,
		"history_retention_days", s.cfg.HistoryRetentionDays)
	return nil
}

func (s *RetentionScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *RetentionScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()

	usageCutoff := now.AddDate(0, 0, -s.cfg.UsageRetentionDays)
	if deleted, err := s.usage.PruneOlderThan(ctx, usageCutoff); err != nil {
		logger.Error("Usage event cleanup failed", "error", err)
	} else if deleted > 0 {
		logger.Info("Pruned usage events", "deleted", deleted, "cutoff", usageCutoff)
	}

	historyCutoff := now.AddDate(0, 0, -s.cfg.HistoryRetentionDays)
	if deleted, err := s.history.PruneOlderThan(ctx, historyCutoff); err != nil {
		logger.Error("Search history cleanup failed", "error", err)
	} else if deleted > 0 {
		logger.Info("Pruned search history", "deleted", deleted, "cutoff", historyCutoff)
	}

	if deleted, err := s.store.PruneOlderThan(ctx, historyCutoff); err != nil {
		logger.Error("Result set cleanup failed", "error", err)
	} else if deleted > 0 {
		logger.Info("Pruned result sets", "deleted", deleted, "cutoff", historyCutoff)
	}
}
