// Command genmock generates synthetic ARGO float record fixtures plus the
// recommendations each persona would receive for them. It uses the actual
// domain package so fixture output matches real engine behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw-out data/mock/argo_records.json \
//	  -rec-dir data/mock/recommendations
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/floatlab/argo-insight/internal/domain"
)

// Fixture generation is seeded so reruns produce identical files.
const recordSeed = 42

var baseDate = time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)

var personas = []domain.Persona{
	domain.PersonaResearcher,
	domain.PersonaFisherman,
	domain.PersonaPolicymaker,
	domain.PersonaStudent,
}

// recommendationFixture is the per-persona output file shape.
type recommendationFixture struct {
	Persona domain.Persona     `json:"profession"`
	Charts  []domain.ChartSpec `json:"charts"`
	KPIs    domain.KPISummary  `json:"kpis"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawOut := flag.String("raw-out", "", "output path for the raw records JSON fixture")
	recDir := flag.String("rec-dir", "", "output directory for per-persona recommendation fixtures")
	count := flag.Int("count", 120, "number of records to generate")
	flag.Parse()

	if *rawOut == "" || *recDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -rec-dir")
	}

	// Fixed clock so generated_at style fields stay reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2023, time.June, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	records := generateRecords(*count)
	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s (%d records)", *rawOut, len(records))

	dataset := domain.NormalizeRecords(records)
	flags := domain.ClassifyIntent("")
	kpis := domain.AggregateKPIs(dataset)

	for _, persona := range personas {
		charts := domain.RankCharts(domain.GenerateCharts(dataset, persona, flags), flags)
		fixture := recommendationFixture{Persona: persona, Charts: charts, KPIs: kpis}

		path := filepath.Join(*recDir, fmt.Sprintf("recommendation_%s.json", persona))
		if err := writeJSON(path, fixture); err != nil {
			return fmt.Errorf("writing %s fixture: %w", persona, err)
		}
		log.Printf("wrote %s fixture: %s (%d charts)", persona, path, len(charts))
	}

	printStats(records, dataset, kpis)
	return nil
}

// generateRecords builds a dataset spanning the three upstream naming
// conventions, with deliberate gaps and string-encoded values so fixtures
// exercise the normalization and missing-value paths.
func generateRecords(count int) []domain.RawRecord {
	rng := rand.New(rand.NewSource(recordSeed))

	records := make([]domain.RawRecord, 0, count)
	for i := 0; i < count; i++ {
		pres := rng.Float64() * 1800
		temp := 22 - pres*0.01 + rng.Float64()*2
		psal := 34 + rng.Float64()*1.5
		ts := baseDate.Add(time.Duration(rng.Intn(90*24)) * time.Hour)

		var rec domain.RawRecord
		switch i % 3 {
		case 0: // canonical NetCDF-style
			rec = domain.RawRecord{
				"TEMP": temp,
				"PSAL": psal,
				"PRES": pres,
				"TIME": ts.Format(time.RFC3339),
			}
		case 1: // descriptive SQL column names, string-encoded numbers
			rec = domain.RawRecord{
				"temperature_c": fmt.Sprintf("%.3f", temp),
				"salinity_psu":  psal,
				"pressure_dbar": pres,
				"juld":          ts.Unix(),
			}
		default: // short lowercase names
			rec = domain.RawRecord{
				"temp": temp,
				"psal": psal,
				"pres": pres,
				"time": ts.Format("2006-01-02 15:04:05"),
			}
		}

		// Punch holes: every 7th record loses salinity, every 11th loses
		// pressure, every 13th loses its timestamp.
		if i%7 == 0 {
			deleteField(rec, "PSAL", "salinity_psu", "psal")
		}
		if i%11 == 0 {
			deleteField(rec, "PRES", "pressure_dbar", "pres")
		}
		if i%13 == 0 {
			deleteField(rec, "TIME", "juld", "time")
		}

		records = append(records, rec)
	}
	return records
}

func deleteField(rec domain.RawRecord, names ...string) {
	for _, n := range names {
		delete(rec, n)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.RawRecord, dataset domain.Dataset, kpis domain.KPISummary) {
	var withTemp, withPsal, withPres, withTime int
	for _, r := range dataset {
		if r[domain.FieldTemp] != nil {
			withTemp++
		}
		if r[domain.FieldPsal] != nil {
			withPsal++
		}
		if r[domain.FieldPres] != nil {
			withPres++
		}
		if r[domain.FieldTime] != nil {
			withTime++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d raw, %d normalized\n", len(records), len(dataset))
	fmt.Printf("Defined fields: TEMP=%d, PSAL=%d, PRES=%d, TIME=%d\n", withTemp, withPsal, withPres, withTime)
	fmt.Printf("KPI record count: %d\n", kpis.RecordCount)
	if kpis.AvgTemp != nil {
		fmt.Printf("Avg temperature: %.4f\n", *kpis.AvgTemp)
	}
	if kpis.AvgSalinity != nil {
		fmt.Printf("Avg salinity: %.4f\n", *kpis.AvgSalinity)
	}
	if kpis.TimeSpan != nil {
		fmt.Printf("Time span: %s .. %s\n",
			kpis.TimeSpan.Min.Format(time.RFC3339), kpis.TimeSpan.Max.Format(time.RFC3339))
	}

	for _, persona := range personas {
		charts := domain.GenerateCharts(dataset, persona, domain.IntentFlags{})
		fmt.Printf("%s charts:", persona)
		for _, c := range charts {
			fmt.Printf(" %q(%s)", c.Title, c.Kind)
		}
		fmt.Println()
	}
}
