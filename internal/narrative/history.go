package narrative

import (
	"sort"

	"fhl/nightly/internal/models"
)

// history is the precomputed view of the daily score snapshot the detectors
// read from. Built once per analysis run and shared across franchises; all
// fields are immutable after construction.
type history struct {
	records []models.DailyRecord
	periods *models.PeriodSet

	// dayRanks[i] maps franchise -> 1-based rank by day points on records[i].
	// Ties break by input order (stable sort).
	dayRanks []map[string]int
}

func newHistory(records []models.DailyRecord, periods *models.PeriodSet) *history {
	h := &history{
		records:  records,
		periods:  periods,
		dayRanks: make([]map[string]int, len(records)),
	}
	for i, r := range records {
		h.dayRanks[i] = rankTeams(r.Teams)
	}
	return h
}

// rankTeams ranks a day's lines by points descending, 1-based, stable.
func rankTeams(teams []models.TeamDay) map[string]int {
	idx := make([]int, len(teams))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return teams[idx[a]].DayPts > teams[idx[b]].DayPts
	})

	ranks := make(map[string]int, len(teams))
	for pos, i := range idx {
		ranks[teams[i].Franchise] = pos + 1
	}
	return ranks
}

// len returns the number of records.
func (h *history) len() int {
	return len(h.records)
}

// last returns the most recent record ("today") and its index.
func (h *history) last() (models.DailyRecord, int) {
	i := len(h.records) - 1
	return h.records[i], i
}

// daysPresent counts records in which the franchise appears.
func (h *history) daysPresent(franchise string) int {
	n := 0
	for _, r := range h.records {
		if _, ok := r.TeamLine(franchise); ok {
			n++
		}
	}
	return n
}

// rankOn returns the franchise's day rank on records[i], or 0 if absent.
func (h *history) rankOn(i int, franchise string) int {
	return h.dayRanks[i][franchise]
}

// streakFrom counts consecutive most-recent records (walking backwards from
// the last) on which pred holds for the franchise's day rank. A day the
// franchise is absent breaks the streak.
func (h *history) streakFrom(franchise string, pred func(rank, teams int) bool) int {
	streak := 0
	for i := len(h.records) - 1; i >= 0; i-- {
		rank := h.rankOn(i, franchise)
		if rank == 0 || !pred(rank, len(h.records[i].Teams)) {
			break
		}
		streak++
	}
	return streak
}

// periodStanding is one row of a cumulative period table.
type periodStanding struct {
	Franchise string
	Pts       float64
	Rank      int
}

// periodStandingsAt computes the cumulative period standings for the given
// period number using records up to and including index upto. Ranks are
// 1-based, ties broken by first-appearance order.
func (h *history) periodStandingsAt(period, upto int) []periodStanding {
	totals := make(map[string]float64)
	var order []string
	for i := 0; i <= upto && i < len(h.records); i++ {
		r := h.records[i]
		if r.Period != period {
			continue
		}
		for _, t := range r.Teams {
			if _, seen := totals[t.Franchise]; !seen {
				order = append(order, t.Franchise)
			}
			totals[t.Franchise] += t.DayPts
		}
	}

	standings := make([]periodStanding, 0, len(order))
	for _, f := range order {
		standings = append(standings, periodStanding{Franchise: f, Pts: totals[f]})
	}
	sort.SliceStable(standings, func(a, b int) bool {
		return standings[a].Pts > standings[b].Pts
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// periodRankAt returns the franchise's cumulative period rank using records
// up to index upto, or 0 if it has no period records yet.
func (h *history) periodRankAt(period, upto int, franchise string) int {
	for _, s := range h.periodStandingsAt(period, upto) {
		if s.Franchise == franchise {
			return s.Rank
		}
	}
	return 0
}

// periodElapsedFrac returns how much of the period definition had elapsed by
// the record at index i, in (0, 1].
func (h *history) periodElapsedFrac(def *models.PeriodDefinition, i int) float64 {
	if def == nil {
		return 0
	}
	total := def.TotalDays()
	if total <= 0 {
		return 0
	}
	elapsed := int(h.records[i].Date.Sub(def.Start).Hours()/24) + 1
	if elapsed < 0 {
		return 0
	}
	frac := float64(elapsed) / float64(total)
	if frac > 1 {
		frac = 1
	}
	return frac
}

// topHalf reports whether rank is in the top half of n teams.
func topHalf(rank, n int) bool {
	return rank <= (n+1)/2
}
