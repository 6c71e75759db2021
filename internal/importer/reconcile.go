package importer

import "strings"

// ReconcileByKey converts a sequence of raw rows into a unique-keyed map.
//
// Rows with a blank key are excluded and counted. The first row seen for a
// key wins; later rows with the same key are excluded and the key is
// recorded once in DuplicateKeys no matter how often it repeats. The
// diagnostics are returned as data for the caller to report.
func ReconcileByKey(rows []RawRow, keyFn func(RawRow) string, source string) (map[string]RawRow, SourceDiagnostics) {
	keyed := make(map[string]RawRow, len(rows))
	diag := SourceDiagnostics{Source: source, Total: len(rows)}
	dupSeen := make(map[string]struct{})

	for _, row := range rows {
		key := strings.TrimSpace(keyFn(row))
		if key == "" {
			diag.MissingKey++
			continue
		}
		if _, exists := keyed[key]; exists {
			if _, reported := dupSeen[key]; !reported {
				dupSeen[key] = struct{}{}
				diag.DuplicateKeys = append(diag.DuplicateKeys, key)
			}
			continue
		}
		keyed[key] = row
	}

	diag.Kept = len(keyed)
	return keyed, diag
}

// SKUOf extracts the join key from a raw row.
func SKUOf(row RawRow) string {
	return row[FieldSKU]
}
