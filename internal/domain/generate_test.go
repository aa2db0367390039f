package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileDataset builds n normalized records with TEMP/PSAL/PRES set and,
// when withTime is true, a TIME spread across two months.
func profileDataset(t *testing.T, n int, withTime bool) Dataset {
	t.Helper()
	raw := make([]RawRecord, 0, n)
	for i := 0; i < n; i++ {
		r := RawRecord{
			"temp": 10.0 + float64(i%15),
			"psal": 34.0 + float64(i%10)/10,
			"pres": float64(i * 5),
		}
		if withTime {
			r["juld"] = time.Date(2023, time.Month(1+i%2), 1+i%27, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		}
		raw = append(raw, r)
	}
	return NormalizeRecords(raw)
}

func chartTitles(specs []ChartSpec) []string {
	titles := make([]string, len(specs))
	for i, s := range specs {
		titles[i] = s.Title
	}
	return titles
}

func TestGenerateCharts_Researcher(t *testing.T) {
	t.Run("full dataset emits profiles and time series", func(t *testing.T) {
		ds := profileDataset(t, 10, true)

		specs := GenerateCharts(ds, PersonaResearcher, IntentFlags{})

		// Three persona charts plus the monthly box plot: the helper
		// spreads timestamps across two months, which passes the
		// box-plot gate.
		require.Len(t, specs, 4)
		assert.Equal(t, "Temperature vs Pressure Profile", specs[0].Title)
		assert.Equal(t, "Salinity vs Pressure Profile", specs[1].Title)
		assert.Equal(t, "Temperature Over Time", specs[2].Title)
		assert.Equal(t, ChartBox, specs[3].Kind)

		assert.Equal(t, ChartScatter, specs[0].Kind)
		assert.True(t, specs[0].YReversed, "depth profile draws surface at top")
		assert.Equal(t, FieldTemp, specs[0].Series[0].ColorHint)
		assert.Len(t, specs[0].Series[0].X, 10)
	})

	t.Run("temperature and pressure only", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"temperature_c": 18.0, "pressure_dbar": 5.0},
			{"temperature_c": 17.0, "pressure_dbar": 50.0},
		})

		specs := GenerateCharts(ds, PersonaResearcher, IntentFlags{})

		require.Len(t, specs, 1)
		assert.Equal(t, "Temperature vs Pressure Profile", specs[0].Title)
	})

	t.Run("missing temperature plots as zero in time series", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"juld": "2023-01-05", "temp": 12.0},
			{"juld": "2023-01-06"}, // no temperature: charted as 0 by policy
		})

		specs := GenerateCharts(ds, PersonaResearcher, IntentFlags{})

		require.Len(t, specs, 1)
		spec := specs[0]
		assert.Equal(t, "Temperature Over Time", spec.Title)
		require.Len(t, spec.Series[0].Y, 2)
		assert.Equal(t, 12.0, spec.Series[0].Y[0])
		assert.Equal(t, 0.0, spec.Series[0].Y[1])
	})

	t.Run("unparsable timestamps excluded", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"juld": "garbage", "temp": 12.0},
			{"juld": "2023-01-06", "temp": 13.0},
		})

		specs := GenerateCharts(ds, PersonaResearcher, IntentFlags{})

		require.Len(t, specs, 1)
		assert.Len(t, specs[0].Series[0].X, 1)
	})
}

func TestGenerateCharts_Fisherman(t *testing.T) {
	t.Run("surface band filtering", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"temp": 20.0, "psal": 35.0, "pres": 5.0},   // in band
			{"temp": 21.0, "psal": 35.1, "pres": 10.0},  // boundary, in band
			{"temp": 22.0, "psal": 35.2, "pres": 200.0}, // deep, excluded
			{"temp": 23.0, "psal": 35.3},                // missing PRES counts as surface
		})

		specs := GenerateCharts(ds, PersonaFisherman, IntentFlags{})

		require.Len(t, specs, 2)
		assert.Equal(t, "Surface Temperature Distribution", specs[0].Title)
		assert.Equal(t, "Surface Salinity Distribution", specs[1].Title)
		assert.Equal(t, ChartHistogram, specs[0].Kind)

		assert.ElementsMatch(t, []any{20.0, 21.0, 23.0}, specs[0].Series[0].X)
		assert.ElementsMatch(t, []any{35.0, 35.1, 35.3}, specs[1].Series[0].X)
	})

	t.Run("no surface values emits nothing", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"pres": 500.0, "temp": 4.0},
		})

		specs := GenerateCharts(ds, PersonaFisherman, IntentFlags{})
		assert.Empty(t, specs)
	})
}

func TestGenerateCharts_Policymaker(t *testing.T) {
	t.Run("overview bar", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"temp": 10.0, "psal": 34.0},
			{"temp": 20.0, "psal": 36.0},
			{"platform_number": "x"},
		})

		specs := GenerateCharts(ds, PersonaPolicymaker, IntentFlags{})

		require.Len(t, specs, 1)
		spec := specs[0]
		assert.Equal(t, ChartBar, spec.Kind)
		assert.Equal(t, "Dataset Overview", spec.Title)
		require.Len(t, spec.Series, 1)
		assert.Equal(t, []float64{3, 15, 35}, spec.Series[0].Y)
	})

	t.Run("no numeric values coerces means to zero", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"platform_number": "a"},
			{"platform_number": "b"},
		})

		specs := GenerateCharts(ds, PersonaPolicymaker, IntentFlags{})

		require.Len(t, specs, 1)
		// A bar needs a numeric axis value, so the mean is 0 here even
		// though the KPI aggregator reports null for the same dataset.
		assert.Equal(t, []float64{2, 0, 0}, specs[0].Series[0].Y)
	})
}

func TestGenerateCharts_Student(t *testing.T) {
	t.Run("both series share one plot", func(t *testing.T) {
		ds := profileDataset(t, 5, false)

		specs := GenerateCharts(ds, PersonaStudent, IntentFlags{})

		require.Len(t, specs, 1)
		assert.Equal(t, "Temperature & Salinity vs Pressure", specs[0].Title)
		assert.Len(t, specs[0].Series, 2)
		assert.True(t, specs[0].YReversed)
	})

	t.Run("only temperature available", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"temp": 10.0, "pres": 5.0},
		})

		specs := GenerateCharts(ds, PersonaStudent, IntentFlags{})

		require.Len(t, specs, 1)
		assert.Len(t, specs[0].Series, 1)
	})

	t.Run("no profile data emits nothing", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{{"juld": "2023-01-01"}})
		assert.Empty(t, GenerateCharts(ds, PersonaStudent, IntentFlags{}))
	})
}

func TestGenerateCharts_HistogramOverride(t *testing.T) {
	flags := IntentFlags{WantsHistogram: true}

	t.Run("front-inserted for non-histogram personas", func(t *testing.T) {
		ds := profileDataset(t, 5, false)

		specs := GenerateCharts(ds, PersonaResearcher, flags)

		require.GreaterOrEqual(t, len(specs), 3)
		assert.Equal(t, ChartHistogram, specs[0].Kind)
		assert.Equal(t, ChartHistogram, specs[1].Kind)
		assert.Equal(t, "Temperature vs Pressure Profile", specs[2].Title)
	})

	t.Run("suppressed when persona already emits a histogram", func(t *testing.T) {
		ds := profileDataset(t, 5, false)

		specs := GenerateCharts(ds, PersonaFisherman, flags)

		// Dedup is by kind presence, not content: only the fisherman's
		// two histograms remain.
		require.Len(t, specs, 2)
		assert.Equal(t, "Surface Temperature Distribution", specs[0].Title)
	})

	t.Run("prefers surface subset above threshold", func(t *testing.T) {
		raw := make([]RawRecord, 0, 12)
		for i := 0; i < 12; i++ {
			raw = append(raw, RawRecord{"temp": float64(i), "pres": 2.0})
		}
		ds := NormalizeRecords(raw)

		specs := GenerateCharts(ds, PersonaPolicymaker, flags)

		require.NotEmpty(t, specs)
		assert.Equal(t, "Surface Temperature Distribution", specs[0].Title)
		assert.Len(t, specs[0].Series[0].X, 12)
	})

	t.Run("falls back to all depths at threshold", func(t *testing.T) {
		// Exactly 10 surface records: not "more than 10", so the full
		// subset is used and the title says so.
		raw := make([]RawRecord, 0, 15)
		for i := 0; i < 10; i++ {
			raw = append(raw, RawRecord{"temp": float64(i), "pres": 2.0})
		}
		for i := 0; i < 5; i++ {
			raw = append(raw, RawRecord{"temp": float64(i), "pres": 100.0})
		}
		ds := NormalizeRecords(raw)

		specs := GenerateCharts(ds, PersonaPolicymaker, flags)

		require.NotEmpty(t, specs)
		assert.Equal(t, "Temperature Distribution (All Depths)", specs[0].Title)
		assert.Len(t, specs[0].Series[0].X, 15)
	})
}

func TestGenerateCharts_TSDiagramGating(t *testing.T) {
	build := func(n int) Dataset {
		raw := make([]RawRecord, 0, n)
		for i := 0; i < n; i++ {
			raw = append(raw, RawRecord{"temp": float64(i), "psal": 34.0})
		}
		return NormalizeRecords(raw)
	}

	t.Run("20 valid pairs produce no diagram", func(t *testing.T) {
		specs := GenerateCharts(build(20), PersonaResearcher, IntentFlags{})
		for _, s := range specs {
			assert.NotContains(t, s.Title, "T-S")
		}
	})

	t.Run("21 valid pairs produce exactly one", func(t *testing.T) {
		specs := GenerateCharts(build(21), PersonaResearcher, IntentFlags{})
		count := 0
		for _, s := range specs {
			if s.Title == "Temperature vs Salinity (T-S Diagram)" {
				count++
				assert.Equal(t, ChartScatter, s.Kind)
				assert.Len(t, s.Series[0].X, 21)
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestGenerateCharts_TimeDepthHeatmap(t *testing.T) {
	ds := profileDataset(t, 30, true)

	specs := GenerateCharts(ds, PersonaPolicymaker, IntentFlags{})

	var heatmap *ChartSpec
	for i := range specs {
		if specs[i].Kind == ChartHeatmap {
			heatmap = &specs[i]
		}
	}
	require.NotNil(t, heatmap)
	assert.Equal(t, "Temperature Heatmap (Time vs Depth)", heatmap.Title)
	assert.Len(t, heatmap.Series[0].X, 30)
	assert.Len(t, heatmap.Series[0].Z, 30)

	// 21 qualifying records is the smallest set that passes the gate.
	small := GenerateCharts(profileDataset(t, 21, true), PersonaPolicymaker, IntentFlags{})
	assert.True(t, hasChartKind(small, ChartHeatmap))

	atGate := GenerateCharts(profileDataset(t, 20, true), PersonaPolicymaker, IntentFlags{})
	assert.False(t, hasChartKind(atGate, ChartHeatmap))

	t.Run("caps at 5000 points from the first qualifying records", func(t *testing.T) {
		// 5050 qualifying records interleaved with records that lack a
		// timestamp. Skipped records must not count against the cap.
		raw := make([]RawRecord, 0, 5061)
		for i := 0; i < 5050; i++ {
			if i%500 == 0 {
				raw = append(raw, RawRecord{"temp": -1.0, "pres": 5.0})
			}
			raw = append(raw, RawRecord{
				"juld": "2023-03-15T06:00:00Z",
				"pres": float64(i),
				"temp": float64(i),
			})
		}
		ds := NormalizeRecords(raw)

		specs := GenerateCharts(ds, PersonaPolicymaker, IntentFlags{})

		var heatmap *ChartSpec
		for i := range specs {
			if specs[i].Kind == ChartHeatmap {
				heatmap = &specs[i]
			}
		}
		require.NotNil(t, heatmap)

		series := heatmap.Series[0]
		require.Len(t, series.X, 5000)
		require.Len(t, series.Y, 5000)
		require.Len(t, series.Z, 5000)
		// Dataset order is preserved: the first 5000 qualifying records
		// survive, everything after is truncated.
		assert.Equal(t, 0.0, series.Z[0])
		assert.Equal(t, 4999.0, series.Z[4999])
	})
}

func TestGenerateCharts_MonthlyBoxPlot(t *testing.T) {
	t.Run("same month groups together", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"juld": "2023-01-05", "temp": 10.0},
			{"juld": "2023-01-20", "temp": 12.0},
			{"juld": "2023-02-01", "temp": 14.0},
		})

		specs := GenerateCharts(ds, PersonaPolicymaker, IntentFlags{})

		var box *ChartSpec
		for i := range specs {
			if specs[i].Kind == ChartBox {
				box = &specs[i]
			}
		}
		require.NotNil(t, box)
		require.Len(t, box.Series, 2)
		assert.Equal(t, "2023-01", box.Series[0].Label)
		assert.Equal(t, []float64{10.0, 12.0}, box.Series[0].Y)
		assert.Equal(t, "2023-02", box.Series[1].Label)
	})

	t.Run("single month is below threshold", func(t *testing.T) {
		ds := NormalizeRecords([]RawRecord{
			{"juld": "2023-01-05", "temp": 10.0},
			{"juld": "2023-01-20", "temp": 12.0},
		})

		specs := GenerateCharts(ds, PersonaPolicymaker, IntentFlags{})
		assert.False(t, hasChartKind(specs, ChartBox))
	})

	t.Run("months sorted ascending", func(t *testing.T) {
		raw := []RawRecord{}
		for m := 12; m >= 1; m-- {
			raw = append(raw, RawRecord{
				"juld": fmt.Sprintf("2023-%02d-15", m),
				"temp": float64(m),
			})
		}
		ds := NormalizeRecords(raw)

		specs := GenerateCharts(ds, PersonaStudent, IntentFlags{})

		var box *ChartSpec
		for i := range specs {
			if specs[i].Kind == ChartBox {
				box = &specs[i]
			}
		}
		require.NotNil(t, box)
		require.Len(t, box.Series, 12)
		assert.Equal(t, "2023-01", box.Series[0].Label)
		assert.Equal(t, "2023-12", box.Series[11].Label)
	})
}

func TestGenerateCharts_EmptyDataset(t *testing.T) {
	for _, persona := range []Persona{PersonaResearcher, PersonaFisherman, PersonaPolicymaker, PersonaStudent} {
		t.Run(string(persona), func(t *testing.T) {
			assert.Empty(t, GenerateCharts(Dataset{}, persona, IntentFlags{}))
			assert.Empty(t, GenerateCharts(Dataset{}, persona, IntentFlags{WantsHistogram: true}))
		})
	}
}

func TestGenerateCharts_Deterministic(t *testing.T) {
	ds := profileDataset(t, 25, true)
	flags := ClassifyIntent("surface temperature histogram over time")

	first := GenerateCharts(ds, PersonaResearcher, flags)
	second := GenerateCharts(ds, PersonaResearcher, flags)

	assert.Equal(t, chartTitles(first), chartTitles(second))
}
