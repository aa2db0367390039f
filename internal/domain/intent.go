package domain

import (
	"regexp"
	"strings"
)

// IntentFlags is the set of independent boolean signals derived from a
// free-text query. Flags are non-exclusive: one query can set several,
// which is intentional fan-out, not a classification.
type IntentFlags struct {
	WantsProfile     bool `json:"wants_profile"`
	WantsSurface     bool `json:"wants_surface"`
	WantsTime        bool `json:"wants_time"`
	WantsSalinity    bool `json:"wants_salinity"`
	WantsTemperature bool `json:"wants_temperature"`
	WantsHistogram   bool `json:"wants_histogram"`
}

var (
	// profileRe matches depth-profile phrasings, including the
	// "temperature vs pressure" pairing.
	profileRe = regexp.MustCompile(`profile|vs\.?\s+pressure|temperature\s+(?:and|against|vs\.?)\s+pressure`)

	// surfaceRe matches near-surface references, including a
	// "0-10 dbar" style depth band.
	surfaceRe = regexp.MustCompile(`surface|shallow|0\s*(?:-|to)\s*10\s*dbar`)

	timeRe = regexp.MustCompile(`trend|time\s+series|over\s+time|monthly|daily`)

	salinityRe    = regexp.MustCompile(`salinity|psal`)
	temperatureRe = regexp.MustCompile(`temperature|\btemp\b`)

	histogramRe = regexp.MustCompile(`hist|bar\s+chart`)
)

// ClassifyIntent derives intent flags from free text, case-insensitively.
// This is a best-effort substring heuristic, not a grammar: ambiguous
// phrasing may under- or over-trigger, and an empty or unmatched string
// yields all flags false.
func ClassifyIntent(text string) IntentFlags {
	t := strings.ToLower(text)
	return IntentFlags{
		WantsProfile:     profileRe.MatchString(t),
		WantsSurface:     surfaceRe.MatchString(t),
		WantsTime:        timeRe.MatchString(t),
		WantsSalinity:    salinityRe.MatchString(t),
		WantsTemperature: temperatureRe.MatchString(t),
		WantsHistogram:   histogramRe.MatchString(t),
	}
}
