package domain

// fieldAliases lists, per canonical field, the source column names checked
// in priority order. The first alias with a defined value wins. Column
// names follow the three upstream naming conventions (relational store,
// short form, plain form).
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{FieldTemp, []string{"temperature_c", "temp", "temperature"}},
	{FieldPsal, []string{"salinity_psu", "psal", "salinity"}},
	{FieldPres, []string{"pressure_dbar", "pres", "pressure"}},
	{FieldTime, []string{"juld", "time"}},
}

// NormalizeRecords maps every raw record onto the canonical field set.
// It is a total, pure function: missing keys never fail, every original
// field survives unchanged, and applying it twice yields the same result.
func NormalizeRecords(records []RawRecord) Dataset {
	out := make(Dataset, 0, len(records))
	for _, r := range records {
		out = append(out, normalizeRecord(r))
	}
	return out
}

func normalizeRecord(r RawRecord) NormalizedRecord {
	n := make(NormalizedRecord, len(r)+len(fieldAliases))
	for k, v := range r {
		n[k] = v
	}

	for _, fa := range fieldAliases {
		// A canonical field that already carries a value is never
		// overwritten. An explicit nil counts as undefined and may
		// still be filled from an alias.
		if v, ok := n[fa.field]; ok && v != nil {
			continue
		}
		n[fa.field] = firstAliasValue(r, fa.aliases)
	}
	return n
}

// firstAliasValue returns the first defined alias value, or nil so the
// canonical key is always present on the normalized record.
func firstAliasValue(r RawRecord, aliases []string) any {
	for _, a := range aliases {
		if v, ok := r[a]; ok && v != nil {
			return v
		}
	}
	return nil
}
