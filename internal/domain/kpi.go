package domain

import "time"

// TimeSpan is the closed interval covered by a dataset's parsable
// timestamps.
type TimeSpan struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// KPISummary holds the headline indicators for a dataset. Nullable fields
// are pointers so consumers receive an explicit null to display as a
// placeholder, never a zero.
type KPISummary struct {
	RecordCount int       `json:"record_count"`
	AvgTemp     *float64  `json:"avg_temp"`
	AvgSalinity *float64  `json:"avg_salinity"`
	TimeSpan    *TimeSpan `json:"time_span"`
}

// AggregateKPIs computes the summary indicators over a dataset.
// RecordCount is the raw row count. Averages cover records where the field
// is defined and numeric, and are null with zero qualifying records.
// TimeSpan covers parsable timestamps only and is null when none exist.
func AggregateKPIs(ds Dataset) KPISummary {
	summary := KPISummary{
		RecordCount: len(ds),
		AvgTemp:     meanField(ds, FieldTemp),
		AvgSalinity: meanField(ds, FieldPsal),
	}

	var span *TimeSpan
	for _, r := range ds {
		t, ok := fieldTime(r)
		if !ok {
			continue
		}
		if span == nil {
			span = &TimeSpan{Min: t, Max: t}
			continue
		}
		if t.Before(span.Min) {
			span.Min = t
		}
		if t.After(span.Max) {
			span.Max = t
		}
	}
	summary.TimeSpan = span
	return summary
}

func meanField(ds Dataset, field string) *float64 {
	var sum float64
	var n int
	for _, r := range ds {
		if v, ok := fieldFloat(r, field); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}
