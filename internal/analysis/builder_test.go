package analysis

import (
	"context"
	"testing"
	"time"

	"fhl/nightly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func testPeriods(t *testing.T) *models.PeriodSet {
	t.Helper()
	return models.NewPeriodSet([]models.PeriodDefinition{
		{Number: 1, Start: day(t, "2025-10-01"), End: day(t, "2025-10-14")},
	})
}

func rec(t *testing.T, dateStr string, period int, teams ...models.TeamDay) models.DailyRecord {
	t.Helper()
	return models.DailyRecord{
		Date:      day(t, dateStr),
		Period:    period,
		ScrapedAt: day(t, dateStr).Add(23 * time.Hour),
		Teams:     teams,
	}
}

func line(f string, pts float64, gp int) models.TeamDay {
	return models.TeamDay{Franchise: f, DayPts: pts, GamesPlayed: gp}
}

func TestBuild_RanksArePermutations(t *testing.T) {
	b := NewBuilder(testPeriods(t), nil)
	today := rec(t, "2025-10-03", 1,
		line("GRN", 10, 2), line("ICE", 10, 2), line("PUK", 15, 3), line("SNP", 2, 1),
	)
	history := []models.DailyRecord{
		rec(t, "2025-10-01", 1, line("GRN", 8, 2), line("ICE", 4, 2), line("PUK", 6, 2), line("SNP", 9, 2)),
		rec(t, "2025-10-02", 1, line("GRN", 5, 2), line("ICE", 7, 2), line("PUK", 3, 2), line("SNP", 6, 2)),
	}

	out := b.Build(context.Background(), today, history)
	require.Len(t, out.Teams, 4)
	require.Len(t, out.SeasonRanked, 4)

	seenDay := map[int]bool{}
	seenSeason := map[int]bool{}
	for i, ts := range out.Teams {
		assert.Equal(t, i+1, ts.DayRank, "teams list is day-ranked")
		seenDay[ts.DayRank] = true
	}
	for i, ts := range out.SeasonRanked {
		assert.Equal(t, i+1, ts.SeasonRank)
		seenSeason[ts.SeasonRank] = true
	}
	for r := 1; r <= 4; r++ {
		assert.True(t, seenDay[r], "day rank %d present", r)
		assert.True(t, seenSeason[r], "season rank %d present", r)
	}

	// Tie on 10 pts between GRN and ICE: input order decides.
	assert.Equal(t, "PUK", out.Teams[0].Franchise)
	assert.Equal(t, "GRN", out.Teams[1].Franchise)
	assert.Equal(t, "ICE", out.Teams[2].Franchise)

	// Both views carry both ranks.
	for _, ts := range out.Teams {
		assert.NotZero(t, ts.SeasonRank)
	}
	for _, ts := range out.SeasonRanked {
		assert.NotZero(t, ts.DayRank)
	}
}

func TestBuild_SeasonTotalsIdempotent(t *testing.T) {
	b := NewBuilder(testPeriods(t), nil)
	today := rec(t, "2025-10-03", 1, line("GRN", 10, 2), line("ICE", 5, 2))
	history := []models.DailyRecord{
		rec(t, "2025-10-01", 1, line("GRN", 8, 2), line("ICE", 4, 2)),
		rec(t, "2025-10-02", 1, line("GRN", 5, 2), line("ICE", 7, 2)),
	}

	withoutToday := b.Build(context.Background(), today, history)
	withToday := b.Build(context.Background(), today, append(history, today))

	require.Len(t, withoutToday.Teams, 2)
	for i := range withoutToday.Teams {
		assert.Equal(t, withoutToday.Teams[i].SeasonPts, withToday.Teams[i].SeasonPts,
			"season totals must not double-count an already-stored date")
	}
	assert.Equal(t, 23.0, withoutToday.Teams[0].SeasonPts)
	assert.Equal(t, withoutToday.TotalSeasonDays, withToday.TotalSeasonDays)
}

func TestBuild_EmptyTeamList(t *testing.T) {
	b := NewBuilder(testPeriods(t), nil)
	out := b.Build(context.Background(), rec(t, "2025-10-03", 1), nil)

	assert.Empty(t, out.Teams)
	assert.Empty(t, out.SeasonRanked)
	assert.Equal(t, 1, out.Period)
}

func TestBuild_UnknownPeriodNullsProjections(t *testing.T) {
	b := NewBuilder(testPeriods(t), nil)
	today := rec(t, "2025-10-20", 99, line("GRN", 10, 2), line("ICE", 5, 2))
	history := []models.DailyRecord{
		rec(t, "2025-10-01", 1, line("GRN", 8, 2), line("ICE", 4, 2)),
	}

	out := b.Build(context.Background(), today, history)
	for _, ts := range out.Teams {
		assert.Nil(t, ts.Projection, "%s: unknown period yields no projection", ts.Franchise)
		assert.Nil(t, ts.VsProj)
	}
}

func TestBuild_StatsBundle(t *testing.T) {
	b := NewBuilder(testPeriods(t), nil)
	today := rec(t, "2025-10-03", 1, line("GRN", 14, 2), line("ICE", 7, 2))
	history := []models.DailyRecord{
		rec(t, "2025-10-01", 1, line("GRN", 10, 2), line("ICE", 5, 2)),
		rec(t, "2025-10-02", 1, line("GRN", 12, 2), line("ICE", 6, 2)),
	}

	out := b.Build(context.Background(), today, history)
	require.Len(t, out.Teams, 2)
	grn := out.Teams[0]
	require.Equal(t, "GRN", grn.Franchise)

	assert.Equal(t, 36.0, grn.SeasonPts)
	require.NotNil(t, grn.PPG)
	assert.Equal(t, 6.0, *grn.PPG)
	require.NotNil(t, grn.Avg3d)
	assert.Equal(t, 6.0, *grn.Avg3d)

	require.NotNil(t, grn.Projection)
	assert.Equal(t, 36.0, grn.Projection.PeriodPts)
	assert.Equal(t, 3, grn.Projection.DaysPlayed)
	assert.Equal(t, 11, grn.Projection.DaysRemaining)
	assert.Equal(t, 168.0, grn.Projection.Projected)

	// vsProj compares today's score against the period's daily pace.
	require.NotNil(t, grn.VsProj)
	assert.Equal(t, 2.0, *grn.VsProj)

	require.NotEmpty(t, grn.Narratives, "two days of prior history guarantee a narrative")
	assert.LessOrEqual(t, len(grn.Narratives), 2)

	assert.Equal(t, 3, out.PeriodDaysPlayed)
	assert.Equal(t, 3, out.TotalSeasonDays)
}

func TestBuild_UnresolvedNameKeptVerbatim(t *testing.T) {
	b := NewBuilder(testPeriods(t), nil)
	today := rec(t, "2025-10-02", 1, line("GRN", 10, 2), line("Zzqx Nobody", 5, 2))
	history := []models.DailyRecord{
		rec(t, "2025-10-01", 1, line("GRN", 8, 2)),
	}

	out := b.Build(context.Background(), today, history)
	require.Len(t, out.Teams, 2)
	assert.Equal(t, "Zzqx Nobody", out.Teams[1].Franchise,
		"unresolved names pass through rather than mis-attributing")
}
