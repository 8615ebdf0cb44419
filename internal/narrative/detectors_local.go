package narrative

import (
	"fmt"
	"math"
	"sort"

	"fhl/nightly/internal/models"
	"fhl/nightly/internal/stats"
)

// Local detectors compute purely from the loaded score history. Each either
// abstains (nil) or emits one candidate. Scoring constants are empirical and
// tuned in production; they are grouped per detector and not derived from
// any model.

// Win streak
const (
	winStreakMin     = 2
	winStreakBase    = 40.0
	winStreakPerDay  = 15.0
	winStreakCap     = 95.0
)

// Podium streak (suppressed while a win streak claims the moment)
const (
	podiumStreakMin    = 3
	podiumStreakBase   = 25.0
	podiumStreakPerDay = 10.0
	podiumStreakCap    = 90.0
)

// Bottom-half streak
const (
	bottomStreakMin    = 5
	bottomStreakBase   = 30.0
	bottomStreakPerDay = 7.0
	bottomStreakCap    = 85.0
)

// Best day this period
const (
	bestDayMinElapsed = 0.5
	bestDayBase       = 30.0
	bestDaySpan       = 35.0
)

// Period-rank change
const (
	rankChangeBase      = 20.0
	rankChangePerRank   = 8.0
	rankChangeEdgeBonus = 12.0
	rankChangeCap       = 80.0
)

// Day PPG vs period PPG
const (
	dayVsPeriodMinDev = 0.30
	dayVsPeriodBase   = 25.0
	dayVsPeriodScale  = 100.0
	dayVsPeriodCap    = 75.0
)

// Season rank extremes
const (
	seasonLeaderScore = 35.0
	seasonLastScore   = 30.0
)

// 3-day trend vs season average
const (
	trendWeakDev    = 0.08
	trendStrongDev  = 0.20
	trendWeakScore  = 30.0
	trendStrongBase = 45.0
	trendStrongScale = 50.0
	trendCap        = 70.0
)

// Consistency over the last 7 days
const (
	consistencyWindow   = 7
	consistencyHighMin  = 6
	consistencyLowMax   = 1
	consistencyHighScore = 45.0
	consistencyLowScore  = 40.0
)

// Period pace vs own season history
const (
	paceMargin     = 0.05
	paceBestScore  = 55.0
	paceWorstScore = 50.0
)

// Mid-period comeback / collapse
const (
	midPeriodMinShift     = 3
	midPeriodComebackScore = 55.0
	midPeriodCollapseScore = 50.0
)

// Drought (suppressed by the bottom-half streak to avoid double-counting
// the same negative run)
const (
	droughtMin    = 8
	droughtBase   = 30.0
	droughtPerDay = 3.0
	droughtCap    = 60.0
)

// Personal best proximity within this season's periods
const (
	personalBestRatio = 0.90
	personalBestScore = 50.0
)

// teamContext carries everything the detectors need for one franchise.
type teamContext struct {
	franchise string
	h         *history
	st        *stats.Engine
	todayIdx  int
	today     models.DailyRecord
	todayLine models.TeamDay
	period    *models.PeriodDefinition // today's period definition, may be nil
}

// localDetectors is the fixed catalogue. Order carries no meaning; only
// score determines output.
var localDetectors = []func(*teamContext) *Candidate{
	detectWinStreak,
	detectPodiumStreak,
	detectBottomHalfStreak,
	detectBestDayThisPeriod,
	detectPeriodRankChange,
	detectDayVsPeriodPPG,
	detectSeasonRankExtreme,
	detectThreeDayTrend,
	detectConsistency,
	detectPeriodPace,
	detectMidPeriodSwing,
	detectDrought,
	detectPersonalBestProximity,
}

func detectWinStreak(tc *teamContext) *Candidate {
	streak := tc.h.streakFrom(tc.franchise, func(rank, _ int) bool { return rank == 1 })
	if streak < winStreakMin {
		return nil
	}
	score := math.Min(winStreakCap, winStreakBase+winStreakPerDay*float64(streak))
	return &Candidate{
		Score: score,
		Text:  fmt.Sprintf("%d-day win streak: top score every night", streak),
	}
}

func detectPodiumStreak(tc *teamContext) *Candidate {
	// A live win streak already claims the moment.
	winStreak := tc.h.streakFrom(tc.franchise, func(rank, _ int) bool { return rank == 1 })
	if winStreak >= winStreakMin {
		return nil
	}
	streak := tc.h.streakFrom(tc.franchise, func(rank, _ int) bool { return rank <= 3 })
	if streak < podiumStreakMin {
		return nil
	}
	score := math.Min(podiumStreakCap, podiumStreakBase+podiumStreakPerDay*float64(streak))
	return &Candidate{
		Score: score,
		Text:  fmt.Sprintf("Top-3 finish %d nights running", streak),
	}
}

func detectBottomHalfStreak(tc *teamContext) *Candidate {
	streak := tc.h.streakFrom(tc.franchise, func(rank, n int) bool { return !topHalf(rank, n) })
	if streak < bottomStreakMin {
		return nil
	}
	score := math.Min(bottomStreakCap, bottomStreakBase+bottomStreakPerDay*float64(streak))
	return &Candidate{
		Score: score,
		Text:  fmt.Sprintf("Stuck in the bottom half %d nights straight", streak),
		Bad:   true,
	}
}

func detectBestDayThisPeriod(tc *teamContext) *Candidate {
	if tc.period == nil {
		return nil
	}
	elapsed := tc.h.periodElapsedFrac(tc.period, tc.todayIdx)
	if elapsed < bestDayMinElapsed {
		return nil
	}

	var best float64
	priorDays := 0
	for i := 0; i < tc.todayIdx; i++ {
		r := tc.h.records[i]
		if r.Period != tc.today.Period {
			continue
		}
		if line, ok := r.TeamLine(tc.franchise); ok {
			priorDays++
			if line.DayPts > best {
				best = line.DayPts
			}
		}
	}
	if priorDays == 0 || tc.todayLine.DayPts < best {
		return nil
	}

	return &Candidate{
		Score: bestDayBase + bestDaySpan*elapsed,
		Text:  fmt.Sprintf("Best day of the period so far (%.1f pts)", tc.todayLine.DayPts),
	}
}

func detectPeriodRankChange(tc *teamContext) *Candidate {
	if tc.period == nil || tc.todayIdx == 0 {
		return nil
	}
	cur := tc.h.periodRankAt(tc.today.Period, tc.todayIdx, tc.franchise)
	prev := tc.h.periodRankAt(tc.today.Period, tc.todayIdx-1, tc.franchise)
	if cur == 0 || prev == 0 || cur == prev {
		return nil
	}

	delta := prev - cur // positive means climbed
	mag := math.Abs(float64(delta))
	elapsed := tc.h.periodElapsedFrac(tc.period, tc.todayIdx)

	n := len(tc.h.periodStandingsAt(tc.today.Period, tc.todayIdx))
	score := (rankChangeBase + rankChangePerRank*mag) * elapsed
	if crossesEdge(prev, cur, n) {
		score += rankChangeEdgeBonus
	}
	score = math.Min(rankChangeCap, score)

	if delta > 0 {
		return &Candidate{
			Score: score,
			Text:  fmt.Sprintf("Climbed from #%d to #%d in the period standings", prev, cur),
		}
	}
	return &Candidate{
		Score: score,
		Text:  fmt.Sprintf("Slipped from #%d to #%d in the period standings", prev, cur),
		Bad:   true,
	}
}

// crossesEdge reports whether the move reached or left the top 2 or the
// bottom 2 positions.
func crossesEdge(prev, cur, n int) bool {
	inTop := func(r int) bool { return r <= 2 }
	inBottom := func(r int) bool { return n > 2 && r >= n-1 }
	return inTop(prev) != inTop(cur) || inBottom(prev) != inBottom(cur)
}

func detectDayVsPeriodPPG(tc *teamContext) *Candidate {
	if tc.todayLine.GamesPlayed == 0 {
		return nil
	}

	var pts float64
	var gp int
	for i := 0; i < tc.todayIdx; i++ {
		r := tc.h.records[i]
		if r.Period != tc.today.Period {
			continue
		}
		if line, ok := r.TeamLine(tc.franchise); ok {
			pts += line.DayPts
			gp += line.GamesPlayed
		}
	}
	if gp == 0 {
		return nil
	}

	periodRate := pts / float64(gp)
	if periodRate <= 0 {
		return nil
	}
	todayRate := tc.todayLine.DayPts / float64(tc.todayLine.GamesPlayed)
	dev := (todayRate - periodRate) / periodRate
	if math.Abs(dev) < dayVsPeriodMinDev {
		return nil
	}

	score := math.Min(dayVsPeriodCap, dayVsPeriodBase+dayVsPeriodScale*math.Abs(dev))
	if dev > 0 {
		return &Candidate{
			Score: score,
			Text:  fmt.Sprintf("Tonight's %.1f pts/game is %.0f%% above their period rate", todayRate, dev*100),
		}
	}
	return &Candidate{
		Score: score,
		Text:  fmt.Sprintf("Tonight's %.1f pts/game is %.0f%% below their period rate", todayRate, -dev*100),
		Bad:   true,
	}
}

func detectSeasonRankExtreme(tc *teamContext) *Candidate {
	standings := seasonStandings(tc.h)
	var rank, n int
	for _, s := range standings {
		n++
		if s.Franchise == tc.franchise {
			rank = s.Rank
		}
	}
	if n < 2 {
		return nil
	}
	switch rank {
	case 1:
		return &Candidate{Score: seasonLeaderScore, Text: "Leads the league in season points"}
	case n:
		return &Candidate{Score: seasonLastScore, Text: "Sits last in season points", Bad: true}
	}
	return nil
}

// seasonStandings ranks all franchises by cumulative season points.
func seasonStandings(h *history) []periodStanding {
	totals := make(map[string]float64)
	var order []string
	for _, r := range h.records {
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

func detectThreeDayTrend(tc *teamContext) *Candidate {
	avg3 := tc.st.RollingAvgPPG(tc.franchise, 3)
	season := tc.st.SeasonPPG(tc.franchise)
	if avg3 == nil || season == nil || *season <= 0 {
		return nil
	}

	dev := (*avg3 - *season) / *season
	abs := math.Abs(dev)
	if abs < trendWeakDev {
		return nil
	}

	if abs >= trendStrongDev {
		score := math.Min(trendCap, trendStrongBase+trendStrongScale*(abs-trendStrongDev))
		if dev > 0 {
			return &Candidate{
				Score: score,
				Text:  fmt.Sprintf("Surging: 3-day rate %.0f%% above season average", dev*100),
			}
		}
		return &Candidate{
			Score: score,
			Text:  fmt.Sprintf("Slumping: 3-day rate %.0f%% below season average", -dev*100),
			Bad:   true,
		}
	}

	if dev > 0 {
		return &Candidate{Score: trendWeakScore, Text: "Trending slightly above season form"}
	}
	return &Candidate{Score: trendWeakScore, Text: "Trending slightly below season form", Bad: true}
}

func detectConsistency(tc *teamContext) *Candidate {
	if tc.h.len() < consistencyWindow {
		return nil
	}

	podiums := 0
	counted := 0
	for i := tc.h.len() - 1; i >= 0 && counted < consistencyWindow; i-- {
		rank := tc.h.rankOn(i, tc.franchise)
		if rank == 0 {
			continue
		}
		counted++
		if rank <= 3 {
			podiums++
		}
	}
	if counted < consistencyWindow {
		return nil
	}

	if podiums >= consistencyHighMin {
		return &Candidate{
			Score: consistencyHighScore,
			Text:  fmt.Sprintf("Top-3 in %d of the last 7 nights", podiums),
		}
	}
	if podiums <= consistencyLowMax {
		return &Candidate{
			Score: consistencyLowScore,
			Text:  fmt.Sprintf("Top-3 in just %d of the last 7 nights", podiums),
			Bad:   true,
		}
	}
	return nil
}

func detectPeriodPace(tc *teamContext) *Candidate {
	if tc.period == nil {
		return nil
	}
	proj := tc.st.ProjectPeriodFinish(tc.franchise, tc.today.Period)
	if proj == nil {
		return nil
	}

	best, worst, others := seasonPeriodExtremes(tc)
	if others == 0 {
		return nil
	}

	if proj.Projected > best*(1+paceMargin) {
		return &Candidate{
			Score:    paceBestScore,
			Text:     fmt.Sprintf("On pace for %.0f pts, ahead of their best period this season", proj.Projected),
			Category: CategoryProj,
		}
	}
	if proj.Projected < worst*(1-paceMargin) {
		return &Candidate{
			Score:    paceWorstScore,
			Text:     fmt.Sprintf("On pace for %.0f pts, below their worst period this season", proj.Projected),
			Bad:      true,
			Category: CategoryProj,
		}
	}
	return nil
}

// seasonPeriodExtremes returns the franchise's best and worst totals across
// this season's other periods, and how many other periods it has.
func seasonPeriodExtremes(tc *teamContext) (best, worst float64, others int) {
	totals := make(map[int]float64)
	for _, r := range tc.h.records {
		if r.Period == tc.today.Period || r.Period == 0 {
			continue
		}
		if line, ok := r.TeamLine(tc.franchise); ok {
			totals[r.Period] += line.DayPts
		}
	}
	for _, pts := range totals {
		if others == 0 || pts > best {
			best = pts
		}
		if others == 0 || pts < worst {
			worst = pts
		}
		others++
	}
	return best, worst, others
}

func detectMidPeriodSwing(tc *teamContext) *Candidate {
	if tc.period == nil {
		return nil
	}
	midIdx := -1
	for i := 0; i <= tc.todayIdx; i++ {
		if tc.h.records[i].Period != tc.today.Period {
			continue
		}
		if tc.h.periodElapsedFrac(tc.period, i) >= 0.5 {
			midIdx = i
			break
		}
	}
	if midIdx < 0 || midIdx == tc.todayIdx {
		return nil
	}

	midRank := tc.h.periodRankAt(tc.today.Period, midIdx, tc.franchise)
	curRank := tc.h.periodRankAt(tc.today.Period, tc.todayIdx, tc.franchise)
	if midRank == 0 || curRank == 0 {
		return nil
	}

	shift := midRank - curRank
	if shift >= midPeriodMinShift {
		return &Candidate{
			Score: midPeriodComebackScore,
			Text:  fmt.Sprintf("Mid-period comeback: #%d at the midpoint, #%d now", midRank, curRank),
		}
	}
	if shift <= -midPeriodMinShift {
		return &Candidate{
			Score: midPeriodCollapseScore,
			Text:  fmt.Sprintf("Fading: #%d at the midpoint, #%d now", midRank, curRank),
			Bad:   true,
		}
	}
	return nil
}

func detectDrought(tc *teamContext) *Candidate {
	// The bottom-half streak already covers this negative run.
	bottomStreak := tc.h.streakFrom(tc.franchise, func(rank, n int) bool { return !topHalf(rank, n) })
	if bottomStreak >= bottomStreakMin {
		return nil
	}
	streak := tc.h.streakFrom(tc.franchise, func(rank, _ int) bool { return rank > 3 })
	if streak < droughtMin {
		return nil
	}
	score := math.Min(droughtCap, droughtBase+droughtPerDay*float64(streak))
	return &Candidate{
		Score: score,
		Text:  fmt.Sprintf("%d nights without a top-3 finish", streak),
		Bad:   true,
	}
}

func detectPersonalBestProximity(tc *teamContext) *Candidate {
	if tc.period == nil {
		return nil
	}
	periodPts, daysPlayed := tc.st.PeriodPts(tc.franchise, tc.today.Period)
	if daysPlayed == 0 {
		return nil
	}

	best, _, others := seasonPeriodExtremes(tc)
	if others == 0 || best <= 0 {
		return nil
	}
	if periodPts < best*personalBestRatio || periodPts >= best {
		return nil
	}

	return &Candidate{
		Score:    personalBestScore,
		Text:     fmt.Sprintf("%.0f pts shy of their best period this season", best-periodPts),
		Category: CategoryProj,
	}
}
