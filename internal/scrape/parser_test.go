package scrape

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardHTML = `
<html><body>
<table class="scoreboard">
  <thead><tr><th>Team</th><th>Pts</th><th>GP</th></tr></thead>
  <tbody>
    <tr><td class="team">Green Machine</td><td class="pts">14.5</td><td class="gp">3</td></tr>
    <tr><td class="team">Ice Hogs</td><td class="pts">7</td><td class="gp">2</td></tr>
    <tr><td class="team">Puck Dynasty</td><td class="pts">0</td><td class="gp">0</td></tr>
    <tr><td class="team">Some Unknown Squad Qzx</td><td class="pts">9</td><td class="gp">1</td></tr>
    <tr><td class="team">Top Shelf Snipers</td><td class="pts">not-a-number</td><td class="gp">1</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseScoreboard(t *testing.T) {
	date := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)

	rec, err := ParseScoreboard(strings.NewReader(scoreboardHTML), date)
	require.NoError(t, err)

	// Unknown team and unparseable points row are skipped, not fatal.
	require.Len(t, rec.Teams, 3)

	assert.Equal(t, "GRN", rec.Teams[0].Franchise)
	assert.Equal(t, 14.5, rec.Teams[0].DayPts)
	assert.Equal(t, 3, rec.Teams[0].GamesPlayed)

	assert.Equal(t, "ICE", rec.Teams[1].Franchise)
	assert.Equal(t, 7.0, rec.Teams[1].DayPts)

	// Zero-point rows stay in the record; aggregation filters no-games days.
	assert.Equal(t, "PUK", rec.Teams[2].Franchise)
	assert.Zero(t, rec.Teams[2].DayPts)

	assert.True(t, rec.Date.Equal(date))
	assert.False(t, rec.ScrapedAt.IsZero())
	assert.Zero(t, rec.Period, "period assignment belongs to the caller")
}

func TestParseScoreboard_EmptyTable(t *testing.T) {
	date := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)

	_, err := ParseScoreboard(strings.NewReader("<html><body></body></html>"), date)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no team rows")
}
