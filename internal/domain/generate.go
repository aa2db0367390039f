package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Chart selection thresholds. The heatmap cap is a cost bound on rendering,
// not a statistical choice.
const (
	surfacePresMax      = 10.0 // dbar; inclusive near-surface band
	surfaceHistogramMin = 10   // surface subset must exceed this to be preferred
	advancedChartMin    = 20   // qualifying records must exceed this
	heatmapMaxPoints    = 5000
	boxPlotMinMonths    = 2
)

// Axis label literals shared across rules.
const (
	axisTemp = "Temperature (°C)"
	axisPsal = "Salinity (PSU)"
	axisPres = "Pressure (dbar)"
	axisTime = "Time"
)

// chartRule emits at most one chart for a dataset. Rules are pure; a nil
// result means the rule's data requirements are not met.
type chartRule func(ds Dataset) *ChartSpec

// personaRules maps each persona to its ordered rule list. Adding a
// persona is a table edit, not a new branch.
var personaRules = map[Persona][]chartRule{
	PersonaResearcher:  {tempProfileChart, salinityProfileChart, tempOverTimeChart},
	PersonaFisherman:   {surfaceTempHistogram, surfaceSalinityHistogram},
	PersonaPolicymaker: {datasetOverviewBar},
	PersonaStudent:     {combinedProfileChart},
}

// GenerateCharts produces the ordered candidate chart list for a dataset,
// persona, and classified intent. Persona rules run first in table order,
// then the histogram intent override, then the domain-general advanced
// charts. Deterministic: identical inputs yield identical output order.
func GenerateCharts(ds Dataset, persona Persona, flags IntentFlags) []ChartSpec {
	specs := make([]ChartSpec, 0, 8)
	for _, rule := range personaRules[persona] {
		if spec := rule(ds); spec != nil {
			specs = append(specs, *spec)
		}
	}

	// Histogram intent override: front-inserted, deduplicated by kind
	// presence only. A persona that already emitted any histogram
	// suppresses the override entirely.
	if flags.WantsHistogram && !hasChartKind(specs, ChartHistogram) {
		specs = append(intentHistograms(ds), specs...)
	}

	specs = append(specs, advancedCharts(ds)...)
	return specs
}

// --- availability predicates ---

func hasTempProfile(ds Dataset) bool { return anyWithBoth(ds, FieldTemp, FieldPres) }
func hasSalProfile(ds Dataset) bool  { return anyWithBoth(ds, FieldPsal, FieldPres) }

func hasTime(ds Dataset) bool {
	for _, r := range ds {
		if v, ok := r[FieldTime]; ok && v != nil {
			return true
		}
	}
	return false
}

func anyWithBoth(ds Dataset, a, b string) bool {
	for _, r := range ds {
		if _, ok := fieldFloat(r, a); !ok {
			continue
		}
		if _, ok := fieldFloat(r, b); ok {
			return true
		}
	}
	return false
}

// --- persona rules ---

func tempProfileChart(ds Dataset) *ChartSpec {
	return profileChart(ds, FieldTemp, "Temperature vs Pressure Profile", axisTemp)
}

func salinityProfileChart(ds Dataset) *ChartSpec {
	return profileChart(ds, FieldPsal, "Salinity vs Pressure Profile", axisPsal)
}

// profileChart builds a value-vs-pressure scatter over records where both
// fields are defined, color-mapped by the value and depth-inverted so the
// surface draws at the top.
func profileChart(ds Dataset, field, title, xLabel string) *ChartSpec {
	var xs []any
	var ys []float64
	for _, r := range ds {
		v, ok := fieldFloat(r, field)
		if !ok {
			continue
		}
		p, ok := fieldFloat(r, FieldPres)
		if !ok {
			continue
		}
		xs = append(xs, v)
		ys = append(ys, p)
	}
	if len(xs) == 0 {
		return nil
	}
	return &ChartSpec{
		Kind:       ChartScatter,
		Series:     []Series{{X: xs, Y: ys, Label: xLabel, ColorHint: field}},
		Title:      title,
		AxisLabels: AxisLabels{X: xLabel, Y: axisPres},
		Height:     heightProfile,
		YReversed:  true,
	}
}

// tempOverTimeChart plots TEMP against TIME for records with a defined,
// parsable timestamp. A missing temperature plots as 0: a carried-over
// source quirk, kept until the product decides to exclude such records.
func tempOverTimeChart(ds Dataset) *ChartSpec {
	if !hasTime(ds) {
		return nil
	}
	var xs []any
	var ys []float64
	for _, r := range ds {
		t, ok := fieldTime(r)
		if !ok {
			continue
		}
		v, ok := fieldFloat(r, FieldTemp)
		if !ok {
			v = 0
		}
		xs = append(xs, t)
		ys = append(ys, v)
	}
	if len(xs) == 0 {
		return nil
	}
	return &ChartSpec{
		Kind:       ChartScatter,
		Series:     []Series{{X: xs, Y: ys, Label: axisTemp}},
		Title:      "Temperature Over Time",
		AxisLabels: AxisLabels{X: axisTime, Y: axisTemp},
		Height:     heightProfile,
	}
}

func surfaceTempHistogram(ds Dataset) *ChartSpec {
	return surfaceHistogram(ds, FieldTemp, "Surface Temperature Distribution", axisTemp)
}

func surfaceSalinityHistogram(ds Dataset) *ChartSpec {
	return surfaceHistogram(ds, FieldPsal, "Surface Salinity Distribution", axisPsal)
}

func surfaceHistogram(ds Dataset, field, title, xLabel string) *ChartSpec {
	values := surfaceValues(ds, field)
	if len(values) == 0 {
		return nil
	}
	return histogramSpec(values, title, xLabel)
}

// surfaceValues collects field values from the near-surface subset
// (PRES <= 10 dbar). A record with no PRES counts as pressure 0 and is
// included; see the missing-value policy in the package doc.
func surfaceValues(ds Dataset, field string) []float64 {
	var values []float64
	for _, r := range ds {
		p, ok := fieldFloat(r, FieldPres)
		if ok && p > surfacePresMax {
			continue
		}
		if v, ok := fieldFloat(r, field); ok {
			values = append(values, v)
		}
	}
	return values
}

// allValues collects every defined value of a field across the dataset.
func allValues(ds Dataset, field string) []float64 {
	var values []float64
	for _, r := range ds {
		if v, ok := fieldFloat(r, field); ok {
			values = append(values, v)
		}
	}
	return values
}

func histogramSpec(values []float64, title, xLabel string) *ChartSpec {
	xs := make([]any, len(values))
	for i, v := range values {
		xs[i] = v
	}
	return &ChartSpec{
		Kind:       ChartHistogram,
		Series:     []Series{{X: xs, Label: xLabel}},
		Title:      title,
		AxisLabels: AxisLabels{X: xLabel, Y: "Count"},
		Height:     heightHistogram,
	}
}

// datasetOverviewBar emits the policymaker summary: record count, mean
// temperature, and mean salinity as three bars. Means divide by at least 1
// to avoid division by zero, and a non-finite result is coerced to 0
// because a bar needs a numeric value; the KPI aggregator reports null in
// the same situation by design.
func datasetOverviewBar(ds Dataset) *ChartSpec {
	if len(ds) == 0 {
		return nil
	}
	return &ChartSpec{
		Kind: ChartBar,
		Series: []Series{{
			X: []any{"Records", "Avg Temperature (°C)", "Avg Salinity (PSU)"},
			Y: []float64{
				float64(len(ds)),
				meanOrZero(allValues(ds, FieldTemp)),
				meanOrZero(allValues(ds, FieldPsal)),
			},
			Label: "Dataset Overview",
		}},
		Title:      "Dataset Overview",
		AxisLabels: AxisLabels{X: "Indicator", Y: "Value"},
		Height:     heightBar,
	}
}

func meanOrZero(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / math.Max(float64(len(values)), 1)
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0
	}
	return m
}

// combinedProfileChart emits the student view: temperature and salinity
// profiles sharing one plot, each series present only when its data is.
func combinedProfileChart(ds Dataset) *ChartSpec {
	var series []Series
	if spec := tempProfileChart(ds); spec != nil {
		series = append(series, spec.Series...)
	}
	if spec := salinityProfileChart(ds); spec != nil {
		series = append(series, spec.Series...)
	}
	if len(series) == 0 {
		return nil
	}
	return &ChartSpec{
		Kind:       ChartScatter,
		Series:     series,
		Title:      "Temperature & Salinity vs Pressure",
		AxisLabels: AxisLabels{X: "Value", Y: axisPres},
		Height:     heightProfile,
		YReversed:  true,
	}
}

// --- intent override ---

// intentHistograms builds temperature and salinity histograms for an
// explicit histogram request, independently of persona. Each prefers the
// near-surface subset when it holds more than surfaceHistogramMin records
// and falls back to all depths otherwise; the title names the subset used.
func intentHistograms(ds Dataset) []ChartSpec {
	quantities := []struct {
		field  string
		name   string
		xLabel string
	}{
		{FieldTemp, "Temperature", axisTemp},
		{FieldPsal, "Salinity", axisPsal},
	}

	var specs []ChartSpec
	for _, q := range quantities {
		values := surfaceValues(ds, q.field)
		title := fmt.Sprintf("Surface %s Distribution", q.name)
		if len(values) <= surfaceHistogramMin {
			values = allValues(ds, q.field)
			title = fmt.Sprintf("%s Distribution (All Depths)", q.name)
		}
		if len(values) == 0 {
			continue
		}
		specs = append(specs, *histogramSpec(values, title, q.xLabel))
	}
	return specs
}

// --- domain-general advanced charts ---

// advancedCharts evaluates the threshold-gated charts that apply to every
// persona: the T-S diagram, the time-depth temperature heatmap, and the
// monthly temperature box plot.
func advancedCharts(ds Dataset) []ChartSpec {
	var specs []ChartSpec
	if spec := tsDiagram(ds); spec != nil {
		specs = append(specs, *spec)
	}
	if spec := timeDepthHeatmap(ds); spec != nil {
		specs = append(specs, *spec)
	}
	if spec := monthlyTempBoxPlot(ds); spec != nil {
		specs = append(specs, *spec)
	}
	return specs
}

// tsDiagram builds the water-mass identification scatter of temperature
// against salinity, included only when more than advancedChartMin records
// define both.
func tsDiagram(ds Dataset) *ChartSpec {
	var xs []any
	var ys []float64
	for _, r := range ds {
		temp, ok := fieldFloat(r, FieldTemp)
		if !ok {
			continue
		}
		sal, ok := fieldFloat(r, FieldPsal)
		if !ok {
			continue
		}
		xs = append(xs, sal)
		ys = append(ys, temp)
	}
	if len(xs) <= advancedChartMin {
		return nil
	}
	return &ChartSpec{
		Kind:       ChartScatter,
		Series:     []Series{{X: xs, Y: ys, Label: "T-S", ColorHint: FieldTemp}},
		Title:      "Temperature vs Salinity (T-S Diagram)",
		AxisLabels: AxisLabels{X: axisPsal, Y: axisTemp},
		Height:     heightProfile,
	}
}

// timeDepthHeatmap builds a 2-D density view of temperature over time and
// depth. The subset is capped at the first heatmapMaxPoints qualifying
// records to bound rendering cost, and the capped subset must exceed
// advancedChartMin.
func timeDepthHeatmap(ds Dataset) *ChartSpec {
	var xs []any
	var ys, zs []float64
	for _, r := range ds {
		if len(xs) >= heatmapMaxPoints {
			break
		}
		t, ok := fieldTime(r)
		if !ok {
			continue
		}
		p, ok := fieldFloat(r, FieldPres)
		if !ok {
			continue
		}
		v, ok := fieldFloat(r, FieldTemp)
		if !ok {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, p)
		zs = append(zs, v)
	}
	if len(xs) <= advancedChartMin {
		return nil
	}
	return &ChartSpec{
		Kind:       ChartHeatmap,
		Series:     []Series{{X: xs, Y: ys, Z: zs, Label: axisTemp, ColorHint: FieldTemp}},
		Title:      "Temperature Heatmap (Time vs Depth)",
		AxisLabels: AxisLabels{X: axisTime, Y: axisPres},
		Height:     heightHeatmap,
		YReversed:  true,
	}
}

// monthlyTempBoxPlot groups temperatures by UTC year-month and emits one
// box series per month, ascending. Lexicographic order on "YYYY-MM" keys
// equals chronological order. Included only with at least boxPlotMinMonths
// distinct months.
func monthlyTempBoxPlot(ds Dataset) *ChartSpec {
	groups := make(map[string][]float64)
	for _, r := range ds {
		t, ok := fieldTime(r)
		if !ok {
			continue
		}
		v, ok := fieldFloat(r, FieldTemp)
		if !ok {
			continue
		}
		key := t.Format("2006-01")
		groups[key] = append(groups[key], v)
	}
	if len(groups) < boxPlotMinMonths {
		return nil
	}

	months := make([]string, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]Series, 0, len(months))
	for _, m := range months {
		series = append(series, Series{Y: groups[m], Label: m})
	}
	return &ChartSpec{
		Kind:       ChartBox,
		Series:     series,
		Title:      "Monthly Temperature Distribution",
		AxisLabels: AxisLabels{X: "Month", Y: axisTemp},
		Height:     heightBox,
	}
}

// MonthKey returns the UTC year-month bucket used by the monthly box
// plot. Exposed for fixture validation.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
