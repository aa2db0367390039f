// Package domain models ARGO float profile data and the visualization
// selection rules built on top of it.
//
// # Data Source
//
// Records originate from ARGO autonomous ocean probes, ingested upstream
// from NetCDF profiles into flat tabular rows. Depending on which ingestion
// path produced a row, the same physical quantity arrives under different
// column names:
//
//	Relational store:  temperature_c, salinity_psu, pressure_dbar, juld
//	Short form:        temp, psal, pres, time
//	Plain form:        temperature, salinity, pressure, time
//
// Normalization maps every row onto four canonical fields:
//
//	TEMP  temperature in degrees Celsius
//	PSAL  practical salinity in PSU
//	PRES  sea pressure in decibar, used as a depth proxy
//	TIME  observation timestamp
//
// The first alias with a defined value wins, in the priority order above.
// A canonical field already present on a row is never overwritten, and a
// field with no alias at all becomes an explicit null rather than a
// missing key, so downstream consumers can serialize rows as-is.
//
// # Timestamp Encoding
//
// TIME values are accepted as RFC 3339 strings, "YYYY-MM-DD HH:MM:SS",
// bare "YYYY-MM-DD" dates, or numeric epoch values. Epoch values at or
// above 1e12 are interpreted as milliseconds; smaller ones as seconds.
// Unparsable timestamps are excluded from time-based charts and from the
// KPI time span, never treated as errors.
//
// # Missing-Value Policy
//
// Two behaviors are carried over from the source system deliberately:
// a record with no PRES counts as a surface observation (pressure 0, so it
// is included in the 0-10 dbar band), and a record with no TEMP plots as 0
// in the researcher time-series chart. Whether those records should be
// excluded instead is an unresolved product decision.
//
// # Chart Selection
//
// Each persona maps to an ordered table of rules; each rule is a pure
// function from a dataset to at most one chart. Free-text intent is
// classified into independent boolean flags which gate a histogram
// override and drive ranking. Domain-general charts (T-S diagram,
// time-depth heatmap, monthly box plot) are threshold-gated on the number
// of qualifying records. See [GenerateCharts] and [RankCharts].
package domain
