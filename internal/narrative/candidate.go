// Package narrative generates and ranks "interesting fact" observations
// about one franchise's current situation. A fixed catalogue of detectors
// independently emits scored candidates; selection keeps the top 2 under
// category-diversity constraints, with a strictly ordered fallback cascade
// behind it.
package narrative

// Category tags candidates that would sound redundant together. Selection
// accepts at most one candidate per non-empty category.
type Category string

const (
	// CategoryNone marks candidates with no redundancy constraint.
	CategoryNone Category = ""

	// CategoryProj tags projection-and-record comparisons; two different
	// record-comparison flavors reading off the same extrapolation must not
	// fill both slots.
	CategoryProj Category = "proj"
)

// Candidate is one detector's scored observation. Detectors that have
// nothing to say abstain instead of emitting a low-score candidate.
type Candidate struct {
	Score    float64
	Text     string
	Bad      bool
	Category Category
}
