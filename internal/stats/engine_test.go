package stats

import (
	"testing"
	"time"

	"fhl/nightly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, date string, period int, teams ...models.TeamDay) models.DailyRecord {
	t.Helper()
	d, err := time.Parse(models.DateLayout, date)
	require.NoError(t, err)
	return models.DailyRecord{Date: d, Period: period, Teams: teams}
}

func line(f string, pts float64, gp int) models.TeamDay {
	return models.TeamDay{Franchise: f, DayPts: pts, GamesPlayed: gp}
}

func testPeriods(t *testing.T) *models.PeriodSet {
	t.Helper()
	start := func(s string) time.Time {
		d, err := time.Parse(models.DateLayout, s)
		require.NoError(t, err)
		return d
	}
	return models.NewPeriodSet([]models.PeriodDefinition{
		{Number: 1, Start: start("2025-10-01"), End: start("2025-10-14")},
		{Number: 2, Start: start("2025-10-20"), End: start("2025-11-02")},
	})
}

func TestRollingAvgPPG_Window(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 10, 2)),
		day(t, "2025-10-02", 1, line("GRN", 20, 2)),
		day(t, "2025-10-03", 1, line("GRN", 30, 2)),
		day(t, "2025-10-04", 1, line("GRN", 40, 2)),
	}, testPeriods(t))

	// Last 3 records only: (20+30+40)/(2+2+2)
	got := e.RollingAvgPPG("GRN", 3)
	require.NotNil(t, got)
	assert.InDelta(t, 15.0, *got, 0.001)
}

func TestRollingAvgPPG_SkipsAbsentDays(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 12, 3)),
		day(t, "2025-10-02", 1, line("ICE", 8, 2)), // GRN absent, not zero-filled
		day(t, "2025-10-03", 1, line("GRN", 6, 1)),
	}, testPeriods(t))

	got := e.RollingAvgPPG("GRN", 3)
	require.NotNil(t, got)
	assert.InDelta(t, 4.5, *got, 0.001) // (12+6)/(3+1)
}

func TestRollingAvgPPG_FallbackPerRecord(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 9, 0)),
		day(t, "2025-10-02", 1, line("GRN", 3, 0)),
	}, testPeriods(t))

	got := e.RollingAvgPPG("GRN", 7)
	require.NotNil(t, got)
	assert.InDelta(t, 6.0, *got, 0.001) // no gp: (9+3)/2 records
}

func TestRollingAvgPPG_NoRecords(t *testing.T) {
	e := NewEngine(nil, testPeriods(t))
	assert.Nil(t, e.RollingAvgPPG("GRN", 3))
	assert.Nil(t, e.SeasonPPG("GRN"))
}

func TestSeasonPPG_AgreesWithWideWindow(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 10.5, 2)),
		day(t, "2025-10-02", 1, line("GRN", 7.25, 1)),
		day(t, "2025-10-03", 1, line("GRN", 13, 3)),
	}, testPeriods(t))

	season := e.SeasonPPG("GRN")
	rolling := e.RollingAvgPPG("GRN", 50)
	require.NotNil(t, season)
	require.NotNil(t, rolling)
	assert.Equal(t, *season, *rolling)
}

func TestZeroPointDaysExcluded(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 10, 2), line("ICE", 4, 1)),
		day(t, "2025-10-02", 1, line("GRN", 0, 0), line("ICE", 0, 0)), // no games
		day(t, "2025-10-03", 1, line("GRN", 20, 2), line("ICE", 6, 1)),
	}, testPeriods(t))

	assert.Len(t, e.Records(), 2)
	got := e.SeasonPPG("GRN")
	require.NotNil(t, got)
	assert.InDelta(t, 7.5, *got, 0.001)
}

func TestProjectPeriodFinish_Example(t *testing.T) {
	// 14-day period, 7 days played at 10 pts/day: projected 140.
	records := make([]models.DailyRecord, 0, 7)
	for i := 0; i < 7; i++ {
		d := time.Date(2025, 10, 1+i, 0, 0, 0, 0, time.UTC)
		records = append(records, models.DailyRecord{
			Date: d, Period: 1, Teams: []models.TeamDay{line("GRN", 10, 2)},
		})
	}
	e := NewEngine(records, testPeriods(t))

	proj := e.ProjectPeriodFinish("GRN", 1)
	require.NotNil(t, proj)
	assert.Equal(t, 70.0, proj.PeriodPts)
	assert.Equal(t, 7, proj.DaysPlayed)
	assert.Equal(t, 7, proj.DaysRemaining)
	assert.Equal(t, 140.0, proj.Projected)
}

func TestProjectPeriodFinish_NilCases(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 10, 2)),
	}, testPeriods(t))

	assert.Nil(t, e.ProjectPeriodFinish("GRN", 99), "unknown period")
	assert.Nil(t, e.ProjectPeriodFinish("ICE", 1), "no records in period")
}

func TestProjectPeriodFinish_ProjectedAtLeastPeriodPts(t *testing.T) {
	e := NewEngine([]models.DailyRecord{
		day(t, "2025-10-01", 1, line("GRN", 12.5, 2)),
		day(t, "2025-10-02", 1, line("GRN", 4, 1)),
	}, testPeriods(t))

	proj := e.ProjectPeriodFinish("GRN", 1)
	require.NotNil(t, proj)
	assert.GreaterOrEqual(t, proj.Projected, proj.PeriodPts)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, Round2(10.0/3.0))
	assert.Equal(t, 2.5, Round2(2.5))
}
