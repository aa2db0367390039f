package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spec(kind ChartKind, title string) ChartSpec {
	return ChartSpec{Kind: kind, Title: title}
}

func TestRankCharts_HistogramOnlyFilter(t *testing.T) {
	specs := []ChartSpec{
		spec(ChartScatter, "Temperature vs Pressure Profile"),
		spec(ChartHistogram, "Surface Temperature Distribution"),
		spec(ChartBar, "Dataset Overview"),
		spec(ChartHistogram, "Surface Salinity Distribution"),
	}

	t.Run("discards non-histograms when requested", func(t *testing.T) {
		ranked := RankCharts(specs, IntentFlags{WantsHistogram: true})

		require.Len(t, ranked, 2)
		for _, s := range ranked {
			assert.Equal(t, ChartHistogram, s.Kind)
		}
	})

	t.Run("no histogram candidates leaves set intact", func(t *testing.T) {
		noHist := []ChartSpec{
			spec(ChartScatter, "Temperature vs Pressure Profile"),
			spec(ChartBar, "Dataset Overview"),
		}
		ranked := RankCharts(noHist, IntentFlags{WantsHistogram: true})
		assert.Equal(t, chartTitles(noHist), chartTitles(ranked))
	})

	t.Run("no filter without the flag", func(t *testing.T) {
		ranked := RankCharts(specs, IntentFlags{})
		assert.Len(t, ranked, 4)
	})
}

func TestRankCharts_Scoring(t *testing.T) {
	tests := []struct {
		name     string
		spec     ChartSpec
		flags    IntentFlags
		expected int
	}{
		{"no flags", spec(ChartScatter, "Temperature vs Pressure Profile"), IntentFlags{}, 0},
		{
			"pressure with profile intent",
			spec(ChartScatter, "Temperature vs Pressure Profile"),
			IntentFlags{WantsProfile: true},
			3,
		},
		{
			"profile plus temperature",
			spec(ChartScatter, "Temperature vs Pressure Profile"),
			IntentFlags{WantsProfile: true, WantsTemperature: true},
			5,
		},
		{
			"salinity title",
			spec(ChartScatter, "Salinity vs Pressure Profile"),
			IntentFlags{WantsSalinity: true},
			2,
		},
		{
			"time title",
			spec(ChartScatter, "Temperature Over Time"),
			IntentFlags{WantsTime: true},
			3,
		},
		{
			"surface and distribution both count once each",
			spec(ChartHistogram, "Surface Temperature Distribution"),
			IntentFlags{WantsSurface: true},
			2,
		},
		{
			"flag without title mention scores nothing",
			spec(ChartBar, "Dataset Overview"),
			IntentFlags{WantsProfile: true, WantsTime: true, WantsSalinity: true},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chartScore(tt.spec, tt.flags))
		})
	}
}

func TestRankCharts_OrdersByScoreDescending(t *testing.T) {
	specs := []ChartSpec{
		spec(ChartBar, "Dataset Overview"),                    // 0
		spec(ChartScatter, "Temperature Over Time"),           // 3
		spec(ChartScatter, "Salinity vs Pressure Profile"),    // 2
		spec(ChartScatter, "Temperature vs Pressure Profile"), // 0 (no profile flag)
	}
	flags := IntentFlags{WantsTime: true, WantsSalinity: true}

	ranked := RankCharts(specs, flags)

	assert.Equal(t, []string{
		"Temperature Over Time",
		"Salinity vs Pressure Profile",
		"Dataset Overview",
		"Temperature vs Pressure Profile",
	}, chartTitles(ranked))
}

func TestRankCharts_StableOnTies(t *testing.T) {
	// All zero scores: output order must equal input order exactly.
	specs := []ChartSpec{
		spec(ChartScatter, "A"),
		spec(ChartScatter, "B"),
		spec(ChartScatter, "C"),
		spec(ChartScatter, "D"),
	}

	ranked := RankCharts(specs, IntentFlags{})
	assert.Equal(t, []string{"A", "B", "C", "D"}, chartTitles(ranked))

	// Mixed: tied specs keep relative order among themselves.
	mixed := []ChartSpec{
		spec(ChartScatter, "First Plain"),
		spec(ChartScatter, "Temperature Over Time"),
		spec(ChartScatter, "Second Plain"),
	}
	ranked = RankCharts(mixed, IntentFlags{WantsTime: true})
	assert.Equal(t, []string{"Temperature Over Time", "First Plain", "Second Plain"}, chartTitles(ranked))
}

func TestRankCharts_DoesNotMutateInput(t *testing.T) {
	specs := []ChartSpec{
		spec(ChartScatter, "Plain"),
		spec(ChartScatter, "Temperature Over Time"),
	}

	ranked := RankCharts(specs, IntentFlags{WantsTime: true})

	assert.Equal(t, []string{"Temperature Over Time", "Plain"}, chartTitles(ranked))
	assert.Equal(t, []string{"Plain", "Temperature Over Time"}, chartTitles(specs))
}
