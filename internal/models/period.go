package models

import "time"

// PeriodDefinition is one named scoring-period interval. The season is an
// ordered, non-overlapping, possibly gapped sequence of these; gaps are
// breaks with no scoring.
type PeriodDefinition struct {
	Number int       `json:"number" db:"number"`
	Start  time.Time `json:"start" db:"start_date"`
	End    time.Time `json:"end" db:"end_date"`
}

// TotalDays is the inclusive day-span of the period.
func (p *PeriodDefinition) TotalDays() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Contains reports whether the date falls inside the period (inclusive).
func (p *PeriodDefinition) Contains(date time.Time) bool {
	d := date.Format(DateLayout)
	return d >= p.Start.Format(DateLayout) && d <= p.End.Format(DateLayout)
}

// PeriodSet is the season's ordered period table.
type PeriodSet struct {
	periods []PeriodDefinition
}

// NewPeriodSet builds a set from definitions ordered by period number.
func NewPeriodSet(periods []PeriodDefinition) *PeriodSet {
	return &PeriodSet{periods: periods}
}

// ByNumber returns the definition for a period number, or nil if unknown.
func (s *PeriodSet) ByNumber(number int) *PeriodDefinition {
	if s == nil {
		return nil
	}
	for i := range s.periods {
		if s.periods[i].Number == number {
			return &s.periods[i]
		}
	}
	return nil
}

// ByDate returns the period containing the date, or nil during a break.
func (s *PeriodSet) ByDate(date time.Time) *PeriodDefinition {
	if s == nil {
		return nil
	}
	for i := range s.periods {
		if s.periods[i].Contains(date) {
			return &s.periods[i]
		}
	}
	return nil
}

// All returns the ordered definitions.
func (s *PeriodSet) All() []PeriodDefinition {
	if s == nil {
		return nil
	}
	return s.periods
}
