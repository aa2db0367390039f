package domain

import (
	"sort"
	"strings"
)

// RankCharts reorders candidate specs against the classified intent.
// When a histogram was explicitly requested and at least one histogram
// candidate exists, every non-histogram spec is discarded first. The
// remainder is sorted by descending intent score; ties keep their input
// order (stable sort), which is the only tie-break and must be
// reproducible. Specs are never created or mutated here.
func RankCharts(specs []ChartSpec, flags IntentFlags) []ChartSpec {
	if flags.WantsHistogram && hasChartKind(specs, ChartHistogram) {
		only := make([]ChartSpec, 0, len(specs))
		for _, s := range specs {
			if s.Kind == ChartHistogram {
				only = append(only, s)
			}
		}
		specs = only
	}

	ranked := make([]ChartSpec, len(specs))
	copy(ranked, specs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return chartScore(ranked[i], flags) > chartScore(ranked[j], flags)
	})
	return ranked
}

// chartScore matches the chart title against the intent flags. Weights
// favor depth profiles and time series when asked for explicitly.
func chartScore(spec ChartSpec, flags IntentFlags) int {
	title := strings.ToLower(spec.Title)
	score := 0
	if flags.WantsProfile && strings.Contains(title, "pressure") {
		score += 3
	}
	if flags.WantsSalinity && strings.Contains(title, "salinity") {
		score += 2
	}
	if flags.WantsTemperature && strings.Contains(title, "temperature") {
		score += 2
	}
	if flags.WantsTime && strings.Contains(title, "time") {
		score += 3
	}
	if flags.WantsSurface && (strings.Contains(title, "surface") || strings.Contains(title, "distribution")) {
		score += 2
	}
	return score
}
