package archive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fhl/nightly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() models.ArchiveData {
	return models.ArchiveData{
		Seasons: []models.ArchiveSeason{
			{
				Season: "2023-24",
				Periods: []models.ArchivePeriod{
					{
						Number: 1,
						Totals: map[string]models.ArchiveTotals{
							"GRN": {FPts: 100, FPG: 5, GP: 20},
							"ICE": {FPts: 80, FPG: 4, GP: 20},
						},
						Winner: "GRN",
						Loser:  "ICE",
					},
					{
						Number: 2,
						Totals: map[string]models.ArchiveTotals{
							"GRN": {FPts: 90, FPG: 4.5, GP: 20},
							"ICE": {FPts: 110, FPG: 5.5, GP: 20},
						},
						Winner: "ICE",
						Loser:  "GRN",
					},
				},
			},
			{
				Season: "2024-25",
				Periods: []models.ArchivePeriod{
					{
						Number: 1,
						Totals: map[string]models.ArchiveTotals{
							"GRN": {FPts: 120, FPG: 6, GP: 20},
							"ICE": {FPts: 60, FPG: 3, GP: 20},
						},
						Winner: "GRN",
						Loser:  "ICE",
					},
				},
			},
		},
	}
}

func newTestClient(t *testing.T, hits *atomic.Int32) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		require.NoError(t, json.NewEncoder(w).Encode(testDataset()))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil, 0)
}

func TestData_MemoizedAcrossCallers(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Data(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load(), "one fetch shared by all callers")
}

func TestData_FailedFetchRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(testDataset()))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second, nil, 0)
	ctx := context.Background()

	_, err := c.Data(ctx)
	require.Error(t, err, "non-200 is a transport failure")
	assert.Contains(t, err.Error(), "502")

	data, err := c.Data(ctx)
	require.NoError(t, err, "failure is not memoized")
	assert.Len(t, data.Seasons, 2)
}

func TestCareerTotal(t *testing.T) {
	c := newTestClient(t, nil)
	ctx := context.Background()

	total, err := c.CareerTotal(ctx, "GRN")
	require.NoError(t, err)
	assert.Equal(t, 310.0, total)

	// No data is zero, not an error.
	total, err = c.CareerTotal(ctx, "WLF")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSeasonTotalsThroughPeriod(t *testing.T) {
	c := newTestClient(t, nil)

	totals, err := c.SeasonTotalsThroughPeriod(context.Background(), "GRN", 1)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, SeasonTotal{Season: "2023-24", Pts: 100}, totals[0])
	assert.Equal(t, SeasonTotal{Season: "2024-25", Pts: 120}, totals[1])

	totals, err = c.SeasonTotalsThroughPeriod(context.Background(), "GRN", 2)
	require.NoError(t, err)
	assert.Equal(t, 190.0, totals[0].Pts)
}

func TestPeriodWins(t *testing.T) {
	c := newTestClient(t, nil)

	wins, apps, err := c.PeriodWins(context.Background(), "GRN", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, wins)
	assert.Equal(t, 2, apps)

	wins, apps, err = c.PeriodWins(context.Background(), "ICE", 1)
	require.NoError(t, err)
	assert.Zero(t, wins)
	assert.Equal(t, 2, apps)
}

func TestHeadToHeadAndOutcomes(t *testing.T) {
	c := newTestClient(t, nil)
	ctx := context.Background()

	winsA, winsB, err := c.HeadToHead(ctx, "GRN", "ICE")
	require.NoError(t, err)
	assert.Equal(t, 2, winsA)
	assert.Equal(t, 1, winsB)

	winners, err := c.MatchupOutcomes(ctx, "GRN", "ICE")
	require.NoError(t, err)
	assert.Equal(t, []string{"GRN", "ICE", "GRN"}, winners)

	winners, err = c.MatchupOutcomes(ctx, "GRN", "WLF")
	require.NoError(t, err)
	assert.Empty(t, winners, "no shared matchups is empty, not an error")
}

func TestPeriodRecords(t *testing.T) {
	c := newTestClient(t, nil)

	best, worst, err := c.PeriodRecords(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, best)
	require.NotNil(t, worst)
	assert.Equal(t, PeriodRecord{Franchise: "GRN", Season: "2024-25", Pts: 120}, *best)
	assert.Equal(t, PeriodRecord{Franchise: "ICE", Season: "2024-25", Pts: 60}, *worst)

	best, worst, err = c.PeriodRecords(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, best)
	assert.Nil(t, worst)
}

func TestFranchisePeriodExtremes(t *testing.T) {
	c := newTestClient(t, nil)

	best, worst, err := c.FranchisePeriodExtremes(context.Background(), "GRN", 1)
	require.NoError(t, err)
	require.NotNil(t, best)
	require.NotNil(t, worst)
	assert.Equal(t, 120.0, *best)
	assert.Equal(t, 100.0, *worst)
}
