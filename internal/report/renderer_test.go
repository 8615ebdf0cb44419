package report

import (
	"testing"
	"time"

	"fhl/nightly/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTextRenderer(t *testing.T) {
	ppg := 6.0
	a := &models.NightlyAnalysis{
		Date:             time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
		Period:           1,
		PeriodDaysPlayed: 3,
		TotalSeasonDays:  3,
		Teams: []models.TeamNightlyStats{
			{
				Franchise: "GRN", DayPts: 14, SeasonPts: 36, PPG: &ppg,
				DayRank: 1, SeasonRank: 1,
				Narratives: []string{"3-day win streak: top score every night"},
			},
			{
				Franchise: "ICE", DayPts: 7, SeasonPts: 18,
				DayRank: 2, SeasonRank: 2,
				Narratives: []string{"⚠️ Stuck in the bottom half 3 nights straight"},
			},
		},
		SeasonRanked: []models.TeamNightlyStats{
			{Franchise: "GRN", SeasonPts: 36, SeasonRank: 1, DayRank: 1},
			{Franchise: "ICE", SeasonPts: 18, SeasonRank: 2, DayRank: 2},
		},
	}

	out := NewTextRenderer().Render(a)

	assert.Contains(t, out, "Friday, Oct 3 2025")
	assert.Contains(t, out, "(Period 1, day 3)")
	assert.Contains(t, out, "1. Green Machine — 14.0 pts")
	assert.Contains(t, out, "3-day win streak")
	assert.Contains(t, out, "⚠️ Stuck in the bottom half")
	assert.Contains(t, out, "Season standings:")
	assert.Contains(t, out, "Day 3 of the season.")
}

func TestTextRenderer_EmptyAnalysis(t *testing.T) {
	a := &models.NightlyAnalysis{Date: time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)}
	out := NewTextRenderer().Render(a)
	assert.Contains(t, out, "No games tonight.")
}
