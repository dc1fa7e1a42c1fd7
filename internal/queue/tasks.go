package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"social-search-platform/internal/logger"
	"social-search-platform/services"
)

const (
	TaskBulkSearch = "search:bulk"
)

// BulkSearchPayload is the unit of work for one username of a bulk batch.
// Each username is its own task so a single failing profile never sinks
// the whole batch.
type BulkSearchPayload struct {
	UserID       string `json:"user_id"`
	BulkID       string `json:"bulk_id"`
	ResultID     string `json:"result_id"`
	Username     string `json:"username"`
	Platform     string `json:"platform"`
	MaxItems     int    `json:"max_items"`
	SelectedDate string `json:"selected_date"`
	Location     string `json:"location"`
}

// NewBulkSearchTask creates one queued scrape for a bulk batch entry.
func NewBulkSearchTask(payload BulkSearchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskBulkSearch,
		data,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor executes queued scrapes in the worker process.
type TaskProcessor struct {
	scraper *services.ScraperService
	store   *services.ResultStore
}

func NewTaskProcessor(scraper *services.ScraperService, store *services.ResultStore) *TaskProcessor {
	return &TaskProcessor{
		scraper: scraper,
		store:   store,
	}
}

// ProcessBulkSearch scrapes one profile and fills in its pending result
// row. Scraper outages are retried; on final failure the row is marked
// failed so the dashboard can show a per-username error.
func (p *TaskProcessor) ProcessBulkSearch(ctx context.Context, t *asynq.Task) error {
	var payload BulkSearchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing bulk search task",
		"bulk_id", payload.BulkID, "username", payload.Username, "platform", payload.Platform)

	posts, err := p.scraper.ScrapeProfile(ctx, payload.Platform, services.SearchOptions{
		Username:     payload.Username,
		MaxItems:     payload.MaxItems,
		SelectedDate: payload.SelectedDate,
		Location:     payload.Location,
	})
	if err != nil {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if retried >= maxRetry || errors.Is(err, context.Canceled) {
			if failErr := p.store.Fail(ctx, payload.ResultID, err.Error()); failErr != nil {
				logger.Error("Failed to mark result set failed",
					"result_id", payload.ResultID, "error", failErr)
			}
		}
		return err
	}

	if err := p.store.Complete(ctx, payload.ResultID, posts); err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}

	logger.Info("Bulk search task completed",
		"bulk_id", payload.BulkID, "username", payload.Username, "posts", len(posts))
	return nil
}
