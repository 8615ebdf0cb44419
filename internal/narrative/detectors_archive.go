package narrative

import (
	"context"
	"fmt"
	"math"

	"fhl/nightly/internal/archive"
)

// ArchiveQuerier is the slice of the archive client the detectors consume.
// Methods return empty results for "no data" and error only on transport
// failure; a failure degrades the whole tier, never the run.
type ArchiveQuerier interface {
	CareerTotal(ctx context.Context, franchise string) (float64, error)
	SeasonTotalsThroughPeriod(ctx context.Context, franchise string, periodNumber int) ([]archive.SeasonTotal, error)
	PeriodWins(ctx context.Context, franchise string, periodNumber int) (wins, appearances int, err error)
	HeadToHead(ctx context.Context, a, b string) (winsA, winsB int, err error)
	MatchupOutcomes(ctx context.Context, a, b string) ([]string, error)
	PeriodRecords(ctx context.Context, periodNumber int) (best, worst *archive.PeriodRecord, err error)
	FranchisePeriodExtremes(ctx context.Context, franchise string, periodNumber int) (best, worst *float64, err error)
}

// Career milestone proximity
var careerMilestones = []float64{1000, 2500, 5000, 10000, 25000, 50000, 100000}

const (
	milestoneNearBand   = 20.0
	milestoneMidBand    = 50.0
	milestoneFarBand    = 100.0
	milestoneNearScore  = 85.0
	milestoneMidScore   = 70.0
	milestoneFarScore   = 55.0
	milestoneCrossScore = 90.0
)

// Season pace vs own archived seasons
const (
	seasonPaceBestScore  = 65.0
	seasonPaceNearScore  = 55.0
	seasonPaceWorstScore = 50.0
	seasonPaceNearRatio  = 0.95
)

// Period dominance
const (
	dominanceMinWins     = 2
	dominanceBase        = 35.0
	dominancePerWin      = 5.0
	dominanceCap         = 55.0
	dominanceNeverMinApp = 3
	dominanceNeverScore  = 40.0
)

// Head-to-head framing
const (
	h2hNeverBeatenBase = 55.0
	h2hNeverLostScore  = 58.0
	h2hCap             = 60.0
)

// Cross-period matchup streak
const (
	matchupStreakMin    = 3
	matchupStreakBase   = 40.0
	matchupStreakPerWin = 8.0
	matchupStreakCap    = 78.0
)

// Projection confidence ramp: early-period extrapolations must not produce
// loud record claims. 0.3 at day 2, 1.0 from day 10.
const (
	projConfMinDays  = 2
	projConfFullDays = 10
	projConfFloor    = 0.3
)

const (
	projLeagueBestScore  = 80.0
	projLeagueWorstScore = 70.0
	projOwnBestScore     = 60.0
	projOwnWorstScore    = 55.0
)

// archiveDetectors is the historical tier. Each detector returns its
// candidates (often none) plus any transport error.
type archiveDetector func(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error)

var archiveDetectors = []archiveDetector{
	detectCareerMilestone,
	detectSeasonPace,
	detectPeriodDominance,
	detectHeadToHead,
	detectMatchupStreak,
	detectProjectedVsRecords,
}

func detectCareerMilestone(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error) {
	archiveTotal, err := q.CareerTotal(ctx, tc.franchise)
	if err != nil {
		return nil, err
	}
	if archiveTotal == 0 {
		return nil, nil
	}
	career := archiveTotal + tc.st.SeasonPts(tc.franchise)

	// Crossed one today?
	for i := len(careerMilestones) - 1; i >= 0; i-- {
		m := careerMilestones[i]
		if career >= m && career-tc.todayLine.DayPts < m {
			return []Candidate{{
				Score: milestoneCrossScore,
				Text:  fmt.Sprintf("Crossed %.0f career points tonight", m),
			}}, nil
		}
	}

	// Only the nearest unmet milestone is reported.
	for _, m := range careerMilestones {
		if career >= m {
			continue
		}
		dist := m - career
		var score float64
		switch {
		case dist <= milestoneNearBand:
			score = milestoneNearScore
		case dist <= milestoneMidBand:
			score = milestoneMidScore
		case dist <= milestoneFarBand:
			score = milestoneFarScore
		default:
			return nil, nil
		}
		return []Candidate{{
			Score: score,
			Text:  fmt.Sprintf("%.0f pts from %.0f career points", dist, m),
		}}, nil
	}
	return nil, nil
}

func detectSeasonPace(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error) {
	if tc.period == nil {
		return nil, nil
	}
	totals, err := q.SeasonTotalsThroughPeriod(ctx, tc.franchise, tc.today.Period)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, nil
	}

	best, worst := totals[0].Pts, totals[0].Pts
	for _, t := range totals[1:] {
		if t.Pts > best {
			best = t.Pts
		}
		if t.Pts < worst {
			worst = t.Pts
		}
	}

	cur := tc.st.SeasonPts(tc.franchise)
	switch {
	case cur > best:
		return []Candidate{{
			Score: seasonPaceBestScore,
			Text:  fmt.Sprintf("Best start through period %d in franchise history", tc.today.Period),
		}}, nil
	case cur >= best*seasonPaceNearRatio:
		return []Candidate{{
			Score: seasonPaceNearScore,
			Text:  fmt.Sprintf("Near their best-ever pace through period %d", tc.today.Period),
		}}, nil
	case cur < worst:
		return []Candidate{{
			Score: seasonPaceWorstScore,
			Text:  fmt.Sprintf("Worst start through period %d in franchise history", tc.today.Period),
			Bad:   true,
		}}, nil
	}
	return nil, nil
}

func detectPeriodDominance(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error) {
	if tc.period == nil {
		return nil, nil
	}
	wins, appearances, err := q.PeriodWins(ctx, tc.franchise, tc.today.Period)
	if err != nil {
		return nil, err
	}

	if wins >= dominanceMinWins {
		score := math.Min(dominanceCap, dominanceBase+dominancePerWin*float64(wins))
		return []Candidate{{
			Score: score,
			Text:  fmt.Sprintf("Has won period %d outright %d times", tc.today.Period, wins),
		}}, nil
	}
	if wins == 0 && appearances >= dominanceNeverMinApp {
		return []Candidate{{
			Score: dominanceNeverScore,
			Text:  fmt.Sprintf("Has never won period %d", tc.today.Period),
			Bad:   true,
		}}, nil
	}
	return nil, nil
}

// topTwoRival returns the other top-2 franchise of the current period
// standings when ours is also in the top 2. Keeps rivalry framings relevant.
func topTwoRival(tc *teamContext) (string, bool) {
	standings := tc.h.periodStandingsAt(tc.today.Period, tc.todayIdx)
	if len(standings) < 2 {
		return "", false
	}
	switch tc.franchise {
	case standings[0].Franchise:
		return standings[1].Franchise, true
	case standings[1].Franchise:
		return standings[0].Franchise, true
	}
	return "", false
}

func detectHeadToHead(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error) {
	rival, ok := topTwoRival(tc)
	if !ok {
		return nil, nil
	}
	ourWins, rivalWins, err := q.HeadToHead(ctx, tc.franchise, rival)
	if err != nil {
		return nil, err
	}

	if ourWins == 0 && rivalWins > 0 {
		score := math.Min(h2hCap, h2hNeverBeatenBase+float64(rivalWins))
		return []Candidate{{
			Score: score,
			Text:  fmt.Sprintf("Has never beaten %s in a period matchup (0-%d)", rival, rivalWins),
			Bad:   true,
		}}, nil
	}
	if rivalWins == 0 && ourWins > 0 {
		return []Candidate{{
			Score: h2hNeverLostScore,
			Text:  fmt.Sprintf("%s has never beaten them in a period matchup (%d-0)", rival, ourWins),
		}}, nil
	}
	return nil, nil
}

func detectMatchupStreak(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error) {
	rival, ok := topTwoRival(tc)
	if !ok {
		return nil, nil
	}
	winners, err := q.MatchupOutcomes(ctx, tc.franchise, rival)
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return nil, nil
	}

	leader := winners[len(winners)-1]
	streak := 0
	for i := len(winners) - 1; i >= 0 && winners[i] == leader; i-- {
		streak++
	}
	if streak < matchupStreakMin {
		return nil, nil
	}

	score := math.Min(matchupStreakCap, matchupStreakBase+matchupStreakPerWin*float64(streak))
	if leader == tc.franchise {
		return []Candidate{{
			Score: score,
			Text:  fmt.Sprintf("Won their last %d matchups against %s", streak, rival),
		}}, nil
	}
	return []Candidate{{
		Score: score,
		Text:  fmt.Sprintf("Dropped their last %d matchups against %s", streak, rival),
		Bad:   true,
	}}, nil
}

// projectionConfidence ramps from 0.3 at day 2 of the period to 1.0 by day
// 10 or later. Below day 2 the projection detectors abstain entirely.
func projectionConfidence(daysPlayed int) float64 {
	if daysPlayed < projConfMinDays {
		return 0
	}
	if daysPlayed >= projConfFullDays {
		return 1
	}
	span := float64(projConfFullDays - projConfMinDays)
	return projConfFloor + (1-projConfFloor)*float64(daysPlayed-projConfMinDays)/span
}

func detectProjectedVsRecords(ctx context.Context, q ArchiveQuerier, tc *teamContext) ([]Candidate, error) {
	if tc.period == nil {
		return nil, nil
	}
	proj := tc.st.ProjectPeriodFinish(tc.franchise, tc.today.Period)
	if proj == nil {
		return nil, nil
	}
	conf := projectionConfidence(proj.DaysPlayed)
	if conf == 0 {
		return nil, nil
	}

	leagueBest, leagueWorst, err := q.PeriodRecords(ctx, tc.today.Period)
	if err != nil {
		return nil, err
	}
	ownBest, ownWorst, err := q.FranchisePeriodExtremes(ctx, tc.franchise, tc.today.Period)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	if leagueBest != nil && proj.Projected > leagueBest.Pts {
		out = append(out, Candidate{
			Score:    projLeagueBestScore * conf,
			Text:     fmt.Sprintf("On pace to break the all-time period %d record (%.0f)", tc.today.Period, leagueBest.Pts),
			Category: CategoryProj,
		})
	}
	if leagueWorst != nil && proj.Projected < leagueWorst.Pts {
		out = append(out, Candidate{
			Score:    projLeagueWorstScore * conf,
			Text:     fmt.Sprintf("On pace for the worst period %d total ever recorded (%.0f)", tc.today.Period, leagueWorst.Pts),
			Bad:      true,
			Category: CategoryProj,
		})
	}
	if ownBest != nil && proj.Projected > *ownBest {
		out = append(out, Candidate{
			Score:    projOwnBestScore * conf,
			Text:     fmt.Sprintf("On pace to top their personal period %d best (%.0f)", tc.today.Period, *ownBest),
			Category: CategoryProj,
		})
	}
	if ownWorst != nil && proj.Projected < *ownWorst {
		out = append(out, Candidate{
			Score:    projOwnWorstScore * conf,
			Text:     fmt.Sprintf("On pace to undercut their personal period %d worst (%.0f)", tc.today.Period, *ownWorst),
			Bad:      true,
			Category: CategoryProj,
		})
	}
	return out, nil
}
