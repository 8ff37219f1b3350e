// Package binding turns input records into rendering contexts.
//
// Resolve is the leaf: it reads one column of one record and returns a clean
// value or the configured default. The context builders apply a whole
// mapping on top of it.
package binding

import (
	"strings"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// indexPrefix is the positional index a naive row-to-string conversion
// leaves in front of a single-cell value ("0    张三").
const indexPrefix = "0 "

// metadataMarkers identify trailing metadata lines ("Name: 姓名, dtype: object")
// serialized together with a cell value.
var metadataMarkers = []string{"dtype:", "Name:"}

// Resolve returns the cleaned value of column in record, or def.
//
//   - absent column or missing value: def, unchanged and with its kind kept
//   - text: loader artifacts stripped, literal "\n" turned into line breaks,
//     surrounding whitespace trimmed; def when nothing is left
//   - number: returned unchanged
func Resolve(record types.Record, column string, def types.Value) types.Value {
	v, ok := record.Get(column)
	if !ok {
		return def
	}

	switch v.Kind() {
	case types.KindText:
		cleaned := CleanText(v.TextValue())
		if cleaned == "" {
			return def
		}
		return types.Text(cleaned)
	case types.KindNumber:
		return v
	default:
		return def
	}
}

// CleanText strips tabular-loading artifacts from s and trims it.
func CleanText(s string) string {
	if strings.HasPrefix(s, indexPrefix) && len(s) > len(indexPrefix) {
		s = s[len(indexPrefix):]
	}

	if containsAny(s, metadataMarkers) {
		lines := strings.Split(s, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if containsAny(line, metadataMarkers) {
				continue
			}
			kept = append(kept, line)
		}
		s = strings.Join(kept, "\n")
	}

	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.TrimSpace(s)
}

// Identity resolves the candidate identity held in column. Numeric
// identities are rendered as text; an unusable identity is "".
func Identity(record types.Record, column string) string {
	return strings.TrimSpace(Resolve(record, column, types.Text("")).String())
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
