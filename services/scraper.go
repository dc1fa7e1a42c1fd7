package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"social-search-platform/internal/config"
	"social-search-platform/internal/logger"
	"social-search-platform/internal/results"
	"social-search-platform/internal/telemetry"
	"social-search-platform/models"
)

// ErrScraperUnavailable is returned while the circuit breaker is open.
// Callers map it to a 503 and the caller's quota is not consumed.
var ErrScraperUnavailable = errors.New("scraper temporarily unavailable")

// ScraperService calls the hosted scraping actors (Apify run-sync API) and
// normalizes their raw records into the canonical post shape. One upstream
// call per profile; the breaker protects against the actor platform going
// down and burning everyone's request timeouts.
type ScraperService struct {
	cfg         *config.Config
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	metrics     *telemetry.Metrics
}

// SearchOptions carries the caller-supplied scrape parameters after
// validation and plan capping.
type SearchOptions struct {
	Username     string
	MaxItems     int
	SelectedDate string
	Location     string
}

// actorPayload is the request body the hosted actors accept.
type actorPayload struct {
	DateRange string   `json:"dateRange"`
	Location  string   `json:"location"`
	MaxItems  int      `json:"maxItems"`
	StartURLs []string `json:"startUrls"`
}

type scraperErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewScraperService(cfg *config.Config, metrics *telemetry.Metrics) *ScraperService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ScraperAPI",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.RecordCircuitBreakerState(name, to.String())
			}
		},
	})

	// Slight buffer below the upstream per-minute cap
	limit := rate.Limit(float64(cfg.ScraperRequestsPM) * 0.9 / 60.0)
	burst := cfg.ScraperRequestsPM / 10
	if burst < 1 {
		burst = 1
	}

	return &ScraperService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.ScraperTimeout) * time.Second,
		},
		breaker:     breaker,
		rateLimiter: rate.NewLimiter(limit, burst),
		metrics:     metrics,
	}
}

// ScrapeProfile runs the platform's actor for one profile and returns the
// normalized posts, newest first as delivered by the actor.
func (s *ScraperService) ScrapeProfile(ctx context.Context, platform string, opts SearchOptions) ([]results.Post, error) {
	tracer := otel.Tracer("scraper-service")
	ctx, span := tracer.Start(ctx, "scraper.scrape_profile")
	defer span.End()

	span.SetAttributes(
		attribute.String("scrape.platform", platform),
		attribute.String("scrape.username", opts.Username),
		attribute.Int("scrape.max_items", opts.MaxItems),
	)

	if err := s.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("scrape.rate_limited", true))
		return nil, err
	}

	start := time.Now()
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.runActor(ctx, platform, opts)
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("scrape.circuit_breaker_open", true))
			s.recordScrape(platform, duration, "breaker_open")
			return nil, ErrScraperUnavailable
		}
		span.SetAttributes(attribute.Bool("scrape.error", true))
		s.recordScrape(platform, duration, "error")
		return nil, err
	}

	posts := result.([]results.Post)
	span.SetAttributes(attribute.Int("scrape.posts", len(posts)))
	s.recordScrape(platform, duration, "success")
	return posts, nil
}

func (s *ScraperService) recordScrape(platform string, duration float64, status string) {
	if s.metrics != nil {
		s.metrics.RecordScrape(platform, duration, status)
	}
}

// runActor performs the actual run-sync call and decodes the dataset items.
func (s *ScraperService) runActor(ctx context.Context, platform string, opts SearchOptions) ([]results.Post, error) {
	actor := s.cfg.InstagramActor
	profileURL := fmt.Sprintf("https://www.instagram.com/%s/", opts.Username)
	if platform == models.PlatformTikTok {
		actor = s.cfg.TikTokActor
		profileURL = fmt.Sprintf("https://www.tiktok.com/@%s", opts.Username)
	}

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = s.cfg.DefaultVideoCount
	}

	location := opts.Location
	if location == "" {
		location = "US"
	}

	payload := actorPayload{
		DateRange: dateRange(opts.SelectedDate),
		Location:  location,
		MaxItems:  maxItems,
		StartURLs: []string{profileURL},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		s.cfg.ScraperAPIURL, actor, url.QueryEscape(s.cfg.ScraperAPIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scraper response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody scraperErrorBody
		if json.Unmarshal(raw, &errBody) == nil && errBody.Message != "" {
			return nil, fmt.Errorf("scraper returned %d: %s", resp.StatusCode, errBody.Message)
		}
		return nil, fmt.Errorf("scraper returned status %d", resp.StatusCode)
	}

	return decodePosts(platform, raw, opts.Username)
}

// decodePosts normalizes raw dataset items into canonical posts. Records
// that fail to decode are skipped rather than failing the batch; actors
// occasionally emit partial rows for deleted or private posts.
func decodePosts(platform string, raw []byte, username string) ([]results.Post, error) {
	switch platform {
	case models.PlatformTikTok:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("unexpected scraper response shape: %w", err)
		}
		posts := make([]results.Post, 0, len(items))
		for _, item := range items {
			var rec results.TikTokRawPost
			if err := json.Unmarshal(item, &rec); err != nil {
				logger.Warn("Skipping undecodable TikTok record", "error", err)
				continue
			}
			posts = append(posts, results.NormalizeTikTok(rec, username))
		}
		return posts, nil
	default:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("unexpected scraper response shape: %w", err)
		}
		posts := make([]results.Post, 0, len(items))
		for _, item := range items {
			var rec results.InstagramRawPost
			if err := json.Unmarshal(item, &rec); err != nil {
				logger.Warn("Skipping undecodable Instagram record", "error", err)
				continue
			}
			posts = append(posts, results.NormalizeInstagram(rec))
		}
		return posts, nil
	}
}

// dateRange maps the dashboard's date presets to the actors' range values.
func dateRange(selected string) string {
	switch selected {
	case "THIS_WEEK":
		return "THIS_WEEK"
	case "THIS_MONTH":
		return "THIS_MONTH"
	default:
		return "LAST_SIX_MONTHS"
	}
}
