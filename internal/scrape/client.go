// Package scrape turns the league's live-scoring page into a DailyRecord.
// The page is plain server-rendered HTML, so a retrying GET plus a goquery
// pass is all the ingestion this system needs.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"

	"github.com/rs/zerolog/log"
)

// Client fetches the nightly scoreboard page.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a scoreboard client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// FetchDay fetches and parses one date's scoreboard. The returned record
// carries Period 0; the caller assigns the period from the definitions
// table.
func (c *Client) FetchDay(ctx context.Context, date time.Time) (*models.DailyRecord, error) {
	start := time.Now()

	body, err := c.get(ctx, date)
	if err != nil {
		metrics.RecordScrape("error", time.Since(start).Seconds())
		return nil, err
	}

	rec, err := ParseScoreboard(body, date)
	if err != nil {
		metrics.RecordScrape("parse_error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordScrape("success", time.Since(start).Seconds())
	log.Info().
		Str("date", date.Format(models.DateLayout)).
		Int("teams", len(rec.Teams)).
		Msg("Scoreboard scraped")

	return rec, nil
}

// get performs the GET with retry logic: exponential backoff on network
// errors and retryable statuses, immediate failure otherwise.
func (c *Client) get(ctx context.Context, date time.Time) (io.Reader, error) {
	url := fmt.Sprintf("%s?date=%s", c.baseURL, date.Format(models.DateLayout))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying scoreboard request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "text/html")
		req.Header.Set("User-Agent", "fhl-nightly/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("scoreboard request failed: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read scoreboard response: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return bytesReader(body), nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("scoreboard returned retryable status %d", resp.StatusCode)
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		default:
			return nil, fmt.Errorf("scoreboard returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}
