package csvimport

import (
	"sort"
	"strings"
)

// Normalize re-keys row against the template headers.
//
// Each template name takes the value of the first source key (in the row's key
// order) whose trimmed, lower-cased form matches; unmatched names get "".
// The source row is not modified.
func Normalize(row RawRow, template []string) NormalizedRow {
	out := NormalizedRow{Line: row.Line}
	for _, name := range template {
		out.Set(name, lookup(row.Fields, row.keys, name))
	}
	return out
}

// NormalizeAll normalizes every row, preserving order.
func NormalizeAll(rows []RawRow, template []string) []NormalizedRow {
	out := make([]NormalizedRow, len(rows))
	for i, r := range rows {
		out[i] = Normalize(r, template)
	}
	return out
}

// NormalizeMap builds a NormalizedRow from an unordered form submission.
// Source keys are tried in sorted order so ties resolve deterministically.
func NormalizeMap(values map[string]string, template []string) NormalizedRow {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var src Fields
	for _, k := range keys {
		src.Set(k, values[k])
	}

	out := NormalizedRow{}
	for _, name := range template {
		out.Set(name, lookup(src, src.keys, name))
	}
	return out
}

func lookup(src Fields, order []string, name string) string {
	want := headerKey(name)
	for _, k := range order {
		if headerKey(k) == want {
			return src.values[k]
		}
	}
	return ""
}

func headerKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
