// Package report turns a finished nightly analysis into display text. The
// analysis is display-ready; rendering formats, it never recomputes.
package report

import (
	"fmt"
	"strings"

	"fhl/nightly/internal/franchise"
	"fhl/nightly/internal/models"
)

// Renderer formats one analysis run for a delivery channel.
type Renderer interface {
	Render(analysis *models.NightlyAnalysis) string
}

// TextRenderer produces the plain-text nightly report: header, day-ranked
// team blocks with narratives, season standings footer.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Render(a *models.NightlyAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏒 FHL Nightly Report — %s", a.Date.Format("Monday, Jan 2 2006"))
	if a.Period > 0 {
		fmt.Fprintf(&b, " (Period %d, day %d)", a.Period, a.PeriodDaysPlayed)
	}
	b.WriteString("\n\n")

	if len(a.Teams) == 0 {
		b.WriteString("No games tonight.\n")
		return b.String()
	}

	for _, ts := range a.Teams {
		fmt.Fprintf(&b, "%d. %s — %.1f pts", ts.DayRank, franchise.DisplayName(ts.Franchise), ts.DayPts)
		if ts.PPG != nil {
			fmt.Fprintf(&b, " (season: %.1f pts, %.2f ppg)", ts.SeasonPts, *ts.PPG)
		} else {
			fmt.Fprintf(&b, " (season: %.1f pts)", ts.SeasonPts)
		}
		b.WriteString("\n")
		for _, n := range ts.Narratives {
			fmt.Fprintf(&b, "   • %s\n", n)
		}
	}

	b.WriteString("\nSeason standings:\n")
	for _, ts := range a.SeasonRanked {
		fmt.Fprintf(&b, "%d. %s — %.1f pts\n", ts.SeasonRank, franchise.DisplayName(ts.Franchise), ts.SeasonPts)
	}

	fmt.Fprintf(&b, "\nDay %d of the season.\n", a.TotalSeasonDays)

	return b.String()
}
