package narrative

import (
	"context"
	"fmt"
	"sort"

	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/stats"

	"github.com/rs/zerolog/log"
)

// maxNarratives is the number of display slots per franchise.
const maxNarratives = 2

// Engine selects the best narratives for each franchise of an analysis run.
// It is built once per run over the immutable history snapshot; Select can
// be called concurrently for different franchises.
type Engine struct {
	st      *stats.Engine
	h       *history
	archive ArchiveQuerier // nil disables the historical tier
}

// NewEngine builds a selection engine over the stats engine's filtered
// history. The archive querier may be nil.
func NewEngine(st *stats.Engine, arch ArchiveQuerier) *Engine {
	return &Engine{
		st:      st,
		h:       newHistory(st.Records(), st.Periods()),
		archive: arch,
	}
}

type scoredCandidate struct {
	Candidate
	tier string
}

// Select returns the franchise's narratives, at most two display strings.
// Output is empty only when the franchise has fewer than two days of
// history; past that point the fallback cascade guarantees at least one
// line.
func (e *Engine) Select(ctx context.Context, fr string) []string {
	if e.h.len() == 0 || e.h.daysPresent(fr) < 2 {
		return nil
	}

	today, todayIdx := e.h.last()
	line, _ := today.TeamLine(fr)
	tc := &teamContext{
		franchise: fr,
		h:         e.h,
		st:        e.st,
		todayIdx:  todayIdx,
		today:     today,
		todayLine: line,
		period:    e.st.Periods().ByNumber(today.Period),
	}

	candidates := e.gather(ctx, tc)

	// Highest score first; ties keep catalogue order, which carries no
	// meaning either way.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	var out []string
	used := make(map[Category]bool)
	for _, c := range candidates {
		if len(out) == maxNarratives {
			break
		}
		if c.Category != CategoryNone && used[c.Category] {
			continue
		}
		used[c.Category] = true
		out = append(out, render(c.Candidate))
		metrics.RecordNarrative(c.tier)
	}

	if len(out) < maxNarratives {
		out = e.fallbacks(tc, out)
	}
	if len(out) == 0 {
		out = append(out, e.guaranteedLine(tc))
		metrics.RecordNarrative("fallback")
	}
	return out
}

// gather runs both detector tiers. A transport failure in the archive tier
// degrades it to "no candidates": logged, counted, never fatal.
func (e *Engine) gather(ctx context.Context, tc *teamContext) []scoredCandidate {
	var candidates []scoredCandidate
	for _, detect := range localDetectors {
		if c := detect(tc); c != nil {
			candidates = append(candidates, scoredCandidate{Candidate: *c, tier: "local"})
		}
	}

	if e.archive == nil {
		return candidates
	}
	for _, detect := range archiveDetectors {
		found, err := detect(ctx, e.archive, tc)
		if err != nil {
			log.Warn().Err(err).
				Str("franchise", tc.franchise).
				Msg("Archive tier unavailable, using local detectors only")
			metrics.ArchiveTierUnavailable.Inc()
			break
		}
		for _, c := range found {
			candidates = append(candidates, scoredCandidate{Candidate: c, tier: "archive"})
		}
	}
	return candidates
}

// fallbacks runs the strictly ordered lens battery, appending non-duplicate
// lines until the slots are filled or the lenses exhaust.
func (e *Engine) fallbacks(tc *teamContext, out []string) []string {
	for _, lens := range []func(*teamContext) string{
		lensDayRank,
		lensVsRollingAvg,
		lensPeriodStanding,
		lensPeriodVsOwnPeriods,
	} {
		if len(out) == maxNarratives {
			break
		}
		text := lens(tc)
		if text == "" || contains(out, text) {
			continue
		}
		out = append(out, text)
		metrics.RecordNarrative("fallback")
	}
	return out
}

// guaranteedLine always produces something: the period projection when one
// exists, the season scoring rate otherwise.
func (e *Engine) guaranteedLine(tc *teamContext) string {
	if proj := e.st.ProjectPeriodFinish(tc.franchise, tc.today.Period); proj != nil {
		return fmt.Sprintf("On pace for %.0f pts this period", proj.Projected)
	}
	ppg := e.st.SeasonPPG(tc.franchise)
	if ppg == nil {
		// Unreachable with >=2 days of history, but never emit nothing.
		return "No scoring data yet"
	}
	return fmt.Sprintf("Averaging %.2f pts per game this season", *ppg)
}

func lensDayRank(tc *teamContext) string {
	rank := tc.h.rankOn(tc.todayIdx, tc.franchise)
	if rank == 0 {
		return ""
	}
	return fmt.Sprintf("Finished #%d of %d tonight with %.1f pts",
		rank, len(tc.today.Teams), tc.todayLine.DayPts)
}

func lensVsRollingAvg(tc *teamContext) string {
	avg7 := tc.st.RollingAvgPPG(tc.franchise, 7)
	if avg7 == nil || tc.todayLine.GamesPlayed == 0 {
		return ""
	}
	rate := tc.todayLine.DayPts / float64(tc.todayLine.GamesPlayed)
	if rate >= *avg7 {
		return fmt.Sprintf("Tonight's %.2f pts/game tops their 7-day average of %.2f", rate, *avg7)
	}
	return fmt.Sprintf("Tonight's %.2f pts/game trails their 7-day average of %.2f", rate, *avg7)
}

func lensPeriodStanding(tc *teamContext) string {
	if tc.period == nil {
		return ""
	}
	standings := tc.h.periodStandingsAt(tc.today.Period, tc.todayIdx)
	for _, s := range standings {
		if s.Franchise == tc.franchise {
			return fmt.Sprintf("Sits #%d of %d in the period %d standings",
				s.Rank, len(standings), tc.today.Period)
		}
	}
	return ""
}

func lensPeriodVsOwnPeriods(tc *teamContext) string {
	if tc.period == nil {
		return ""
	}
	curPts, curDays := tc.st.PeriodPts(tc.franchise, tc.today.Period)
	if curDays == 0 {
		return ""
	}

	var otherPts float64
	var otherDays int
	for _, r := range tc.h.records {
		if r.Period == tc.today.Period || r.Period == 0 {
			continue
		}
		if l, ok := r.TeamLine(tc.franchise); ok {
			otherPts += l.DayPts
			otherDays++
		}
	}
	if otherDays == 0 {
		return ""
	}

	curRate := curPts / float64(curDays)
	otherRate := otherPts / float64(otherDays)
	if curRate >= otherRate {
		return fmt.Sprintf("Scoring %.1f pts/day this period, up from %.1f across earlier periods", curRate, otherRate)
	}
	return fmt.Sprintf("Scoring %.1f pts/day this period, down from %.1f across earlier periods", curRate, otherRate)
}

// render formats a selected candidate for display.
func render(c Candidate) string {
	if c.Bad {
		return "⚠️ " + c.Text
	}
	return c.Text
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
