package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical field names shared by every normalized record.
const (
	FieldTemp = "TEMP" // temperature, degrees Celsius
	FieldPsal = "PSAL" // salinity, PSU
	FieldPres = "PRES" // pressure, dbar (depth proxy)
	FieldTime = "TIME" // observation timestamp
)

// RawRecord is one tabular row as it arrives from the query layer: flat
// string keys mapped to scalar values. Field names are not guaranteed
// canonical.
type RawRecord map[string]any

// NormalizedRecord is a RawRecord with the four canonical fields
// guaranteed present (possibly explicit nil). All original fields are
// preserved unchanged.
type NormalizedRecord map[string]any

// Dataset is an ordered sequence of normalized records. Insertion order
// is preserved throughout; it may carry meaning upstream.
type Dataset []NormalizedRecord

// floatValue coerces a scalar to a float64. It accepts Go numeric types
// and numeric strings, the two shapes JSON decoding produces in practice.
// NaN and infinities report false.
func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// fieldFloat reads a canonical field as a float, reporting false when the
// field is nil, absent, or not numeric.
func fieldFloat(r NormalizedRecord, field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	return floatValue(v)
}

// timeLayouts are tried in order when parsing string timestamps.
// juld values exported from the relational store use the space-separated
// form; bare dates appear in hand-edited fixtures.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeValue coerces a scalar to a UTC timestamp. Strings are tried against
// the known layouts and then as numeric epochs; numbers are epoch seconds,
// or milliseconds when at or above 1e12.
func timeValue(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epochTime(f), true
		}
		return time.Time{}, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		return epochTime(x), true
	case int:
		return epochTime(float64(x)), true
	case int64:
		return epochTime(float64(x)), true
	default:
		return time.Time{}, false
	}
}

// fieldTime reads the canonical TIME field, reporting false when it is
// nil, absent, or unparsable.
func fieldTime(r NormalizedRecord) (time.Time, bool) {
	v, ok := r[FieldTime]
	if !ok || v == nil {
		return time.Time{}, false
	}
	return timeValue(v)
}

func epochTime(f float64) time.Time {
	if math.Abs(f) >= 1e12 {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Unix(int64(f), 0).UTC()
}
