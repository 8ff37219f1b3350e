// Package join pairs each offer record with its approval record by candidate
// identity.
package join

import (
	"errors"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/offer-docgen/internal/binding"
	"github.com/ginjaninja78/offer-docgen/internal/types"
)

var (
	// ErrEmptyIdentity means the offer record has no usable identity.
	ErrEmptyIdentity = errors.New("offer record has no candidate identity")

	// ErrNotFound means no approval record carries the identity.
	ErrNotFound = errors.New("no approval record for candidate")
)

// Match is the approval record selected for one offer record.
type Match struct {
	// Identity is the cleaned candidate identity.
	Identity string

	// Record is the first approval record, in table order, with that identity.
	Record types.Record

	// Row is the zero-based position of Record in the approval table.
	Row int

	// Duplicates counts the further approval records sharing the identity.
	// They are never used, but callers should surface them.
	Duplicates int
}

// Ambiguous reports whether more than one approval record matched.
func (m Match) Ambiguous() bool {
	return m.Duplicates > 0
}

// Joiner indexes an approval table by identity.
type Joiner struct {
	column string
	table  *types.Table
	rows   map[string][]int
}

// New indexes approvals by the identity held in column. The table is not
// copied and must not be modified afterwards.
func New(approvals *types.Table, column string) *Joiner {
	j := &Joiner{
		column: column,
		table:  approvals,
		rows:   make(map[string][]int, len(approvals.Records)),
	}
	for i, rec := range approvals.Records {
		id := Key(binding.Identity(rec, column))
		if id == "" {
			continue
		}
		j.rows[id] = append(j.rows[id], i)
	}
	return j
}

// Join finds the approval record of offer. It returns ErrEmptyIdentity when
// the offer record has no identity and ErrNotFound when nothing matches.
func (j *Joiner) Join(offer types.Record) (Match, error) {
	identity := binding.Identity(offer, j.column)
	if identity == "" {
		return Match{}, ErrEmptyIdentity
	}

	rows := j.rows[Key(identity)]
	if len(rows) == 0 {
		return Match{Identity: identity}, ErrNotFound
	}

	return Match{
		Identity:   identity,
		Record:     j.table.Records[rows[0]],
		Row:        rows[0],
		Duplicates: len(rows) - 1,
	}, nil
}

// Duplicated returns the identities held by more than one approval record,
// with their record counts.
func (j *Joiner) Duplicated() map[string]int {
	out := make(map[string]int)
	for id, rows := range j.rows {
		if len(rows) > 1 {
			out[id] = len(rows)
		}
	}
	return out
}

// Key is the comparison form of an identity. Canonical composition makes a
// name typed with combining marks equal to its precomposed spelling.
func Key(identity string) string {
	return norm.NFC.String(identity)
}
