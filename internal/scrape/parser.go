package scrape

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fhl/nightly/internal/franchise"
	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// ParseScoreboard extracts one night's team scores from the scoreboard HTML.
// Rows with unresolvable team names or unparseable numbers are logged and
// skipped; the rest of the table still counts.
func ParseScoreboard(r io.Reader, date time.Time) (*models.DailyRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scoreboard HTML: %w", err)
	}

	rec := &models.DailyRecord{
		Date:      date,
		ScrapedAt: time.Now().UTC(),
	}

	doc.Find("table.scoreboard tbody tr").Each(func(i int, s *goquery.Selection) {
		rawName := strings.TrimSpace(s.Find("td.team").Text())
		if rawName == "" {
			return
		}

		fr, ok := franchise.Resolve(rawName)
		if !ok {
			metrics.UnresolvedTeamNames.Inc()
			log.Warn().
				Str("raw_name", rawName).
				Str("date", date.Format(models.DateLayout)).
				Msg("Skipping unresolvable team name on scoreboard")
			return
		}

		pts, err := strconv.ParseFloat(strings.TrimSpace(s.Find("td.pts").Text()), 64)
		if err != nil {
			log.Warn().
				Str("franchise", fr).
				Str("raw", s.Find("td.pts").Text()).
				Msg("Skipping row with unparseable points")
			return
		}

		gp := 0
		if raw := strings.TrimSpace(s.Find("td.gp").Text()); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				gp = v
			}
		}

		rec.Teams = append(rec.Teams, models.TeamDay{
			Franchise:   fr,
			DayPts:      pts,
			GamesPlayed: gp,
		})
	})

	if len(rec.Teams) == 0 {
		return nil, fmt.Errorf("no team rows found on scoreboard for %s", date.Format(models.DateLayout))
	}

	return rec, nil
}
