package models

// ArchiveTotals is one franchise's archival aggregate for a single
// (season, period).
type ArchiveTotals struct {
	FPts float64 `json:"fpts"`
	FPG  float64 `json:"fpg"`
	GP   int     `json:"gp"`
}

// ArchivePeriod is one scoring period of an archived season: per-franchise
// totals plus the matchup outcome.
type ArchivePeriod struct {
	Number int                      `json:"number"`
	Totals map[string]ArchiveTotals `json:"totals"`
	Winner string                   `json:"winner,omitempty"`
	Loser  string                   `json:"loser,omitempty"`
}

// ArchiveSeason is one fully archived season.
type ArchiveSeason struct {
	Season  string          `json:"season"`
	Periods []ArchivePeriod `json:"periods"`
}

// ArchiveData is the multi-year historical dataset. Fetched once per process
// lifetime and read-only afterwards.
type ArchiveData struct {
	Seasons []ArchiveSeason `json:"seasons"`
}
