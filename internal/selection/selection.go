// Package selection narrows the offer table to the candidates the operator
// chose before the batch starts.
package selection

import (
	"strings"

	"github.com/ginjaninja78/offer-docgen/internal/binding"
	"github.com/ginjaninja78/offer-docgen/internal/join"
	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// Selection is either every candidate or an explicit set of identities.
// The zero value selects every candidate.
type Selection struct {
	names []string
}

// All selects every candidate.
func All() Selection {
	return Selection{}
}

// Of selects the named candidates. Blank and repeated names are dropped;
// no names at all selects every candidate.
func Of(names ...string) Selection {
	var s Selection
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := join.Key(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		s.names = append(s.names, name)
	}
	return s
}

// Parse reads an operator answer. Empty input, "1" and "all" select every
// candidate; anything else is a list of identities separated by ASCII or
// full-width commas.
func Parse(input string) Selection {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "", "1", "all":
		return All()
	}
	return Of(strings.FieldsFunc(input, isSeparator)...)
}

func isSeparator(r rune) bool {
	return r == ',' || r == '，' || r == '、'
}

// IsAll reports whether every candidate is selected.
func (s Selection) IsAll() bool {
	return len(s.names) == 0
}

// Names returns the selected identities in input order, nil for All.
func (s Selection) Names() []string {
	if s.IsAll() {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Filter keeps the records whose identity in column is selected, in input
// order. unknown lists selected names no record carries.
func (s Selection) Filter(records []types.Record, column string) (kept []types.Record, unknown []string) {
	if s.IsAll() {
		return records, nil
	}

	wanted := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		wanted[join.Key(name)] = false
	}

	for _, rec := range records {
		key := join.Key(binding.Identity(rec, column))
		if _, ok := wanted[key]; ok {
			wanted[key] = true
			kept = append(kept, rec)
		}
	}

	for _, name := range s.names {
		if !wanted[join.Key(name)] {
			unknown = append(unknown, name)
		}
	}
	return kept, unknown
}

// Identities lists the non-empty candidate identities of records, in order.
func Identities(records []types.Record, column string) []string {
	var out []string
	for _, rec := range records {
		if id := binding.Identity(rec, column); id != "" {
			out = append(out, id)
		}
	}
	return out
}
