// Package franchise resolves raw team-name strings from the scoring page to
// canonical franchise abbreviations. Scraped names arrive noisy: typos,
// renamed teams, corrupted unicode. Resolution is a fixed cascade of
// strategies over a static lookup table and fails closed for unknown names.
package franchise

import (
	"strings"
	"unicode"
)

// Franchise is one entry of the static league table.
type Franchise struct {
	Abbr     string
	Name     string
	Keywords []string
}

// League is the canonical franchise table. Keywords cover historical names
// and the fragments that survive common scrape corruption.
var League = []Franchise{
	{Abbr: "GRN", Name: "Green Machine", Keywords: []string{"green", "machine"}},
	{Abbr: "ICE", Name: "Ice Hogs", Keywords: []string{"hogs", "icehogs"}},
	{Abbr: "PUK", Name: "Puck Dynasty", Keywords: []string{"dynasty", "puck"}},
	{Abbr: "SNP", Name: "Top Shelf Snipers", Keywords: []string{"snipers", "shelf"}},
	{Abbr: "BLZ", Name: "Blue Line Blazers", Keywords: []string{"blazers", "blueline"}},
	{Abbr: "MTN", Name: "Mountain Men", Keywords: []string{"mountain"}},
	{Abbr: "HSR", Name: "High Stick Riders", Keywords: []string{"riders", "highstick"}},
	{Abbr: "WLF", Name: "Timber Wolves", Keywords: []string{"timber", "wolves"}},
}

// Resolve maps a raw team name to its canonical abbreviation. The cascade is
// exact normalized match, then substring match in either direction, then
// keyword fallback. Unknown names return ok=false; the resolver never
// guesses.
func Resolve(raw string) (string, bool) {
	norm := Normalize(raw)
	if norm == "" {
		return "", false
	}

	// Exact normalized match on abbreviation or full name.
	for _, f := range League {
		if norm == Normalize(f.Abbr) || norm == Normalize(f.Name) {
			return f.Abbr, true
		}
	}

	// Substring match, either direction. Catches truncated and padded
	// scrapes alike.
	for _, f := range League {
		name := Normalize(f.Name)
		if strings.Contains(name, norm) || strings.Contains(norm, name) {
			return f.Abbr, true
		}
	}

	// Keyword fallback for renamed or badly mangled entries.
	for _, f := range League {
		for _, kw := range f.Keywords {
			if strings.Contains(norm, Normalize(kw)) {
				return f.Abbr, true
			}
		}
	}

	return "", false
}

// IsKnown reports whether abbr is a canonical abbreviation.
func IsKnown(abbr string) bool {
	for _, f := range League {
		if f.Abbr == abbr {
			return true
		}
	}
	return false
}

// DisplayName returns the full name for a canonical abbreviation, or the
// abbreviation itself if unknown.
func DisplayName(abbr string) string {
	for _, f := range League {
		if f.Abbr == abbr {
			return f.Name
		}
	}
	return abbr
}

// Normalize lowercases and strips everything but letters and digits, so that
// spacing, punctuation, and stray non-ASCII bytes never affect matching.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
