package models

import "time"

// DateLayout is the canonical key format for a scoring day.
const DateLayout = "2006-01-02"

// TeamDay is one franchise's line in a daily scoring snapshot.
type TeamDay struct {
	Franchise   string  `json:"franchise" db:"franchise"`
	DayPts      float64 `json:"day_pts" db:"day_pts"`
	GamesPlayed int     `json:"gp" db:"gp"`
}

// DailyRecord is one calendar date's scoring snapshot. Records are created
// once by ingestion and immutable afterwards; every downstream computation
// folds over them.
type DailyRecord struct {
	Date      time.Time `json:"date" db:"score_date"`
	Period    int       `json:"period" db:"period"`
	ScrapedAt time.Time `json:"scraped_at" db:"scraped_at"`
	Teams     []TeamDay `json:"teams"`
}

// DateKey returns the record's date in canonical YYYY-MM-DD form.
func (r *DailyRecord) DateKey() string {
	return r.Date.Format(DateLayout)
}

// HasGames reports whether any team scored on this date. A record with
// all-zero day points is a "no games" day: it may still be persisted but is
// excluded from historical aggregation.
func (r *DailyRecord) HasGames() bool {
	for _, t := range r.Teams {
		if t.DayPts > 0 {
			return true
		}
	}
	return false
}

// TeamLine returns the franchise's line for this date, if present.
func (r *DailyRecord) TeamLine(franchise string) (TeamDay, bool) {
	for _, t := range r.Teams {
		if t.Franchise == franchise {
			return t, true
		}
	}
	return TeamDay{}, false
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Format(DateLayout) == b.Format(DateLayout)
}
