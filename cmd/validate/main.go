// Command validate performs end-to-end integrity checks on the generated
// ARGO fixtures: raw records JSON and per-persona recommendation JSON. It
// verifies normalization invariants, chart gating thresholds, KPI
// consistency, and ranking reproducibility.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/argo_records.json \
//	  -rec-dir data/mock/recommendations
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/floatlab/argo-insight/internal/domain"
)

var personas = []domain.Persona{
	domain.PersonaResearcher,
	domain.PersonaFisherman,
	domain.PersonaPolicymaker,
	domain.PersonaStudent,
}

// recommendationFixture mirrors the genmock output file shape.
type recommendationFixture struct {
	Persona domain.Persona     `json:"profession"`
	Charts  []domain.ChartSpec `json:"charts"`
	KPIs    domain.KPISummary  `json:"kpis"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to the raw records JSON fixture")
	recDir := flag.String("rec-dir", "", "directory containing per-persona recommendation fixtures")
	flag.Parse()

	if *rawJSON == "" || *recDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *recDir); code != 0 {
		os.Exit(code)
	}
}

func run(rawJSONPath, recDir string) int {
	// Fixed clock matching genmock for reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2023, time.June, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== ARGO Fixture Integrity Validation ===")
	fmt.Println()

	records, err := loadJSON[[]domain.RawRecord](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	fixtures := make(map[domain.Persona]recommendationFixture, len(personas))
	for _, persona := range personas {
		path := filepath.Join(recDir, fmt.Sprintf("recommendation_%s.json", persona))
		fixture, err := loadJSON[recommendationFixture](path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s fixture: %v\n", persona, err)
			return 1
		}
		fixtures[persona] = fixture
	}

	dataset := domain.NormalizeRecords(records)

	phases := []*phase{
		validateNormalization(records, dataset),
		validateChartGating(dataset, fixtures),
		validateKPIConsistency(dataset, fixtures),
		validateRankReproducibility(dataset),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d normalized\n", len(records), len(dataset))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// ── Phase 1: Normalization ──
// Verifies canonical field presence, count preservation, and idempotence.

func validateNormalization(records []domain.RawRecord, dataset domain.Dataset) *phase {
	p := &phase{name: "Phase 1: Normalization invariants"}

	if len(dataset) != len(records) {
		p.errorf("record count changed: %d raw, %d normalized", len(records), len(dataset))
	}

	canonical := []string{domain.FieldTemp, domain.FieldPsal, domain.FieldPres, domain.FieldTime}
	for i, r := range dataset {
		for _, field := range canonical {
			if _, ok := r[field]; !ok {
				p.errorf("record %d: canonical key %s absent", i, field)
			}
		}
	}

	// Re-normalizing normalized output must be a no-op.
	raws := make([]domain.RawRecord, len(dataset))
	for i, r := range dataset {
		raws[i] = domain.RawRecord(r)
	}
	again := domain.NormalizeRecords(raws)
	if diff := cmp.Diff(dataset, again); diff != "" {
		p.errorf("normalization not idempotent (-first +second):\n%s", diff)
	}

	return p
}

// ── Phase 2: Chart gating ──
// Regenerates charts per persona and compares with fixtures, then checks
// the advanced chart thresholds hold in whatever was emitted.

func validateChartGating(dataset domain.Dataset, fixtures map[domain.Persona]recommendationFixture) *phase {
	p := &phase{name: "Phase 2: Chart gating (fixtures vs engine)"}

	for _, persona := range personas {
		flags := domain.ClassifyIntent("")
		charts := domain.RankCharts(domain.GenerateCharts(dataset, persona, flags), flags)
		fixture := fixtures[persona]

		if len(charts) != len(fixture.Charts) {
			p.errorf("%s: engine emitted %d charts, fixture has %d", persona, len(charts), len(fixture.Charts))
			continue
		}
		for i := range charts {
			if charts[i].Title != fixture.Charts[i].Title {
				p.errorf("%s chart %d: title mismatch: engine %q, fixture %q",
					persona, i, charts[i].Title, fixture.Charts[i].Title)
			}
			if charts[i].Kind != fixture.Charts[i].Kind {
				p.errorf("%s chart %d: kind mismatch: engine %q, fixture %q",
					persona, i, charts[i].Kind, fixture.Charts[i].Kind)
			}
		}

		checkChartShapes(p, persona, fixture.Charts)
	}
	return p
}

func checkChartShapes(p *phase, persona domain.Persona, charts []domain.ChartSpec) {
	for _, c := range charts {
		switch c.Kind {
		case domain.ChartHeatmap:
			for _, s := range c.Series {
				if len(s.X) > 5000 {
					p.errorf("%s %q: heatmap exceeds 5000 point cap (%d)", persona, c.Title, len(s.X))
				}
				if len(s.X) != len(s.Y) || len(s.X) != len(s.Z) {
					p.errorf("%s %q: heatmap series lengths diverge (x=%d y=%d z=%d)",
						persona, c.Title, len(s.X), len(s.Y), len(s.Z))
				}
			}
		case domain.ChartBox:
			if len(c.Series) < 2 {
				p.errorf("%s %q: box plot with %d month(s), minimum is 2", persona, c.Title, len(c.Series))
			}
			for i := 1; i < len(c.Series); i++ {
				if c.Series[i-1].Label >= c.Series[i].Label {
					p.errorf("%s %q: months out of order (%s >= %s)",
						persona, c.Title, c.Series[i-1].Label, c.Series[i].Label)
				}
			}
		case domain.ChartScatter, domain.ChartHistogram, domain.ChartBar:
			for _, s := range c.Series {
				if len(s.Y) > 0 && len(s.X) > 0 && len(s.X) != len(s.Y) {
					p.errorf("%s %q: series lengths diverge (x=%d y=%d)", persona, c.Title, len(s.X), len(s.Y))
				}
			}
		}
	}
}

// ── Phase 3: KPI consistency ──

func validateKPIConsistency(dataset domain.Dataset, fixtures map[domain.Persona]recommendationFixture) *phase {
	p := &phase{name: "Phase 3: KPI consistency"}

	expected := domain.AggregateKPIs(dataset)
	for _, persona := range personas {
		got := fixtures[persona].KPIs

		if got.RecordCount != expected.RecordCount {
			p.errorf("%s: record count: expected %d, got %d", persona, expected.RecordCount, got.RecordCount)
		}
		if !ptrFloatEq(got.AvgTemp, expected.AvgTemp) {
			p.errorf("%s: avg temperature mismatch", persona)
		}
		if !ptrFloatEq(got.AvgSalinity, expected.AvgSalinity) {
			p.errorf("%s: avg salinity mismatch", persona)
		}
		if (got.TimeSpan == nil) != (expected.TimeSpan == nil) {
			p.errorf("%s: time span presence mismatch", persona)
		} else if got.TimeSpan != nil {
			if !got.TimeSpan.Min.Equal(expected.TimeSpan.Min) || !got.TimeSpan.Max.Equal(expected.TimeSpan.Max) {
				p.errorf("%s: time span bounds mismatch", persona)
			}
			if got.TimeSpan.Max.Before(got.TimeSpan.Min) {
				p.errorf("%s: time span max precedes min", persona)
			}
		}
	}
	return p
}

// ── Phase 4: Rank reproducibility ──

func validateRankReproducibility(dataset domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Rank reproducibility"}

	intents := []string{"", "temperature profile", "salinity trend over time", "histogram of surface temp"}
	for _, intent := range intents {
		flags := domain.ClassifyIntent(intent)
		for _, persona := range personas {
			first := domain.RankCharts(domain.GenerateCharts(dataset, persona, flags), flags)
			second := domain.RankCharts(domain.GenerateCharts(dataset, persona, flags), flags)

			if len(first) != len(second) {
				p.errorf("%s intent %q: rank lengths diverge across runs", persona, intent)
				continue
			}
			for i := range first {
				if first[i].Title != second[i].Title {
					p.errorf("%s intent %q: position %d differs across runs (%q vs %q)",
						persona, intent, i, first[i].Title, second[i].Title)
				}
			}

			if flags.WantsHistogram {
				hasHist := false
				for _, c := range first {
					if c.Kind == domain.ChartHistogram {
						hasHist = true
						break
					}
				}
				if hasHist {
					for _, c := range first {
						if c.Kind != domain.ChartHistogram {
							p.errorf("%s intent %q: non-histogram %q survived histogram filter", persona, intent, c.Title)
						}
					}
				}
			}
		}
	}
	return p
}

// ── Helpers ──

func ptrFloatEq(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return math.Abs(*a-*b) < 1e-9
}
