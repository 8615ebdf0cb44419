package models

import "time"

// PeriodProjection is a linear-extrapolation projection of a franchise's
// period finish. No regression, no recency weighting: the formula has to be
// explainable to end users.
type PeriodProjection struct {
	PeriodPts     float64 `json:"period_pts"`
	Projected     float64 `json:"projected"`
	DaysPlayed    int     `json:"days_played"`
	DaysRemaining int     `json:"days_remaining"`
}

// TeamNightlyStats is the display-ready per-franchise bundle for one
// analysis run. Derived, never persisted directly; the renderer must not
// need to recompute anything.
type TeamNightlyStats struct {
	Franchise  string            `json:"franchise"`
	DayPts     float64           `json:"day_pts"`
	SeasonPts  float64           `json:"season_pts"`
	PPG        *float64          `json:"ppg,omitempty"`
	Avg3d      *float64          `json:"avg_3d,omitempty"`
	Avg7d      *float64          `json:"avg_7d,omitempty"`
	VsProj     *float64          `json:"vs_proj,omitempty"`
	DayRank    int               `json:"day_rank"`
	SeasonRank int               `json:"season_rank"`
	Projection *PeriodProjection `json:"projection,omitempty"`
	Narratives []string          `json:"narratives"`
}

// NightlyAnalysis is the Nightly Analysis Builder's complete output for one
// date: the day-ranked team list, the season-ranked view, and run context.
type NightlyAnalysis struct {
	Date             time.Time          `json:"date"`
	Period           int                `json:"period"`
	ScrapedAt        time.Time          `json:"scraped_at"`
	Teams            []TeamNightlyStats `json:"teams"`
	SeasonRanked     []TeamNightlyStats `json:"season_ranked"`
	PeriodDaysPlayed int                `json:"period_days_played"`
	TotalSeasonDays  int                `json:"total_season_days"`
}
