// Package archive is the read-only accessor over the league's multi-year
// historical dataset. The dataset is fetched over HTTP once per process
// lifetime and memoized; a Redis cache in front keeps it warm across
// restarts. Query methods return empty results for "no data" and error only
// on transport failure.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"fhl/nightly/internal/cache"
	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"

	"github.com/rs/zerolog/log"
)

const cacheKey = "fhl:archive:dataset"

// Client fetches and queries the historical archive.
type Client struct {
	baseURL    string
	httpClient *http.Client
	redis      *cache.RedisCache
	cacheTTL   time.Duration

	mu   sync.Mutex
	data *models.ArchiveData
}

// NewClient creates an archive client. redisCache may be nil; the client
// then relies on in-process memoization alone.
func NewClient(baseURL string, timeout time.Duration, redisCache *cache.RedisCache, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		redis:      redisCache,
		cacheTTL:   cacheTTL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Data returns the archive dataset, fetching it on first use. The mutex is
// held across the fetch so concurrent callers await the in-flight request
// instead of issuing duplicates. A failed fetch is not memoized; the next
// caller retries.
func (c *Client) Data(ctx context.Context) (*models.ArchiveData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}

	data, err := c.fetch(ctx)
	if err != nil {
		metrics.RecordArchiveFetch("error")
		return nil, err
	}

	metrics.RecordArchiveFetch("success")
	c.data = data
	return data, nil
}

func (c *Client) fetch(ctx context.Context) (*models.ArchiveData, error) {
	// Warm path: Redis copy from a previous process.
	if c.redis != nil {
		if body, err := c.redis.Get(ctx, cacheKey); err == nil {
			var data models.ArchiveData
			if err := json.Unmarshal(body, &data); err == nil {
				metrics.RecordCacheHit()
				log.Debug().Int("seasons", len(data.Seasons)).Msg("Archive dataset loaded from cache")
				return &data, nil
			}
			log.Warn().Err(err).Msg("Cached archive dataset is corrupt, refetching")
		} else if !cache.IsMiss(err) {
			log.Warn().Err(err).Msg("Archive cache read failed")
		} else {
			metrics.RecordCacheMiss()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive returned status %d: %s", resp.StatusCode, string(body))
	}

	var data models.ArchiveData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archive dataset: %w", err)
	}

	log.Info().Int("seasons", len(data.Seasons)).Msg("Archive dataset fetched")

	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache archive dataset")
		}
	}

	return &data, nil
}

// SeasonTotal is one archived season's cumulative points through a period.
type SeasonTotal struct {
	Season string
	Pts    float64
}

// PeriodRecord is a league-wide extreme for one period number.
type PeriodRecord struct {
	Franchise string
	Season    string
	Pts       float64
}

// CareerTotal sums the franchise's points across every archived season and
// period. Zero with no data.
func (c *Client) CareerTotal(ctx context.Context, franchise string) (float64, error) {
	data, err := c.Data(ctx)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, season := range data.Seasons {
		for _, p := range season.Periods {
			if t, ok := p.Totals[franchise]; ok {
				total += t.FPts
			}
		}
	}
	return total, nil
}

// SeasonTotalsThroughPeriod returns, per archived season, the franchise's
// cumulative points across periods 1..periodNumber. Seasons with no data for
// the franchise are omitted.
func (c *Client) SeasonTotalsThroughPeriod(ctx context.Context, franchise string, periodNumber int) ([]SeasonTotal, error) {
	data, err := c.Data(ctx)
	if err != nil {
		return nil, err
	}

	var totals []SeasonTotal
	for _, season := range data.Seasons {
		var pts float64
		found := false
		for _, p := range season.Periods {
			if p.Number > periodNumber {
				continue
			}
			if t, ok := p.Totals[franchise]; ok {
				pts += t.FPts
				found = true
			}
		}
		if found {
			totals = append(totals, SeasonTotal{Season: season.Season, Pts: pts})
		}
	}
	return totals, nil
}

// PeriodWins counts how many archived runnings of periodNumber the franchise
// won outright, and how many it appeared in.
func (c *Client) PeriodWins(ctx context.Context, franchise string, periodNumber int) (wins, appearances int, err error) {
	data, err := c.Data(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, season := range data.Seasons {
		for _, p := range season.Periods {
			if p.Number != periodNumber {
				continue
			}
			if _, ok := p.Totals[franchise]; ok {
				appearances++
			}
			if p.Winner == franchise {
				wins++
			}
		}
	}
	return wins, appearances, nil
}

// HeadToHead counts matchup outcomes between two franchises across the whole
// archive: periods where one was the recorded winner and the other the loser.
func (c *Client) HeadToHead(ctx context.Context, a, b string) (winsA, winsB int, err error) {
	data, err := c.Data(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, season := range data.Seasons {
		for _, p := range season.Periods {
			switch {
			case p.Winner == a && p.Loser == b:
				winsA++
			case p.Winner == b && p.Loser == a:
				winsB++
			}
		}
	}
	return winsA, winsB, nil
}

// MatchupOutcomes returns the winners of every archived matchup between two
// franchises, in season-then-period order. Used for cross-period streaks.
func (c *Client) MatchupOutcomes(ctx context.Context, a, b string) ([]string, error) {
	data, err := c.Data(ctx)
	if err != nil {
		return nil, err
	}

	var winners []string
	for _, season := range data.Seasons {
		for _, p := range season.Periods {
			if (p.Winner == a && p.Loser == b) || (p.Winner == b && p.Loser == a) {
				winners = append(winners, p.Winner)
			}
		}
	}
	return winners, nil
}

// PeriodRecords returns the all-time league best and worst period totals for
// a period number. Nil records with no data.
func (c *Client) PeriodRecords(ctx context.Context, periodNumber int) (best, worst *PeriodRecord, err error) {
	data, err := c.Data(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, season := range data.Seasons {
		for _, p := range season.Periods {
			if p.Number != periodNumber {
				continue
			}
			for f, t := range p.Totals {
				if best == nil || t.FPts > best.Pts {
					best = &PeriodRecord{Franchise: f, Season: season.Season, Pts: t.FPts}
				}
				if worst == nil || t.FPts < worst.Pts {
					worst = &PeriodRecord{Franchise: f, Season: season.Season, Pts: t.FPts}
				}
			}
		}
	}
	return best, worst, nil
}

// FranchisePeriodExtremes returns the franchise's own archived best and
// worst totals for a period number. Nil with no data.
func (c *Client) FranchisePeriodExtremes(ctx context.Context, franchise string, periodNumber int) (best, worst *float64, err error) {
	data, err := c.Data(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, season := range data.Seasons {
		for _, p := range season.Periods {
			if p.Number != periodNumber {
				continue
			}
			if t, ok := p.Totals[franchise]; ok {
				pts := t.FPts
				if best == nil || pts > *best {
					v := pts
					best = &v
				}
				if worst == nil || pts < *worst {
					v := pts
					worst = &v
				}
			}
		}
	}
	return best, worst, nil
}
