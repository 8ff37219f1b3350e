// =============================================================================
// Offer Document Generator - Shared Types
// =============================================================================
//
// This package contains the data model shared by the loaders, the binding
// layer, the joiner, the renderer and the generation driver:
//   - Value   : a tagged scalar (missing, text or number)
//   - Record  : one immutable row of an input table
//   - Table   : an ordered sequence of records with its column names
//   - Context : the resolved key -> value data for one document
//
// =============================================================================

package types

import (
	"strconv"
)

// =============================================================================
// VALUE
// =============================================================================

// Kind tags the type carried by a Value.
type Kind int

const (
	// KindMissing marks an empty cell or an absent column.
	KindMissing Kind = iota

	// KindText marks a text value.
	KindText

	// KindNumber marks a numeric value.
	KindNumber
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "missing"
	}
}

// Value is a scalar read from a table cell or declared as a default.
// The zero Value is missing.
type Value struct {
	kind   Kind
	text   string
	number float64
}

// Missing returns the missing sentinel.
func Missing() Value {
	return Value{}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, number: n}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// TextValue returns the text payload. It is empty unless Kind is KindText.
func (v Value) TextValue() string {
	return v.text
}

// NumberValue returns the numeric payload. It is zero unless Kind is KindNumber.
func (v Value) NumberValue() float64 {
	return v.number
}

// String renders the value the way it appears in a generated document.
// Numbers are printed without a trailing ".0"; missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	default:
		return ""
	}
}

// =============================================================================
// RECORD AND TABLE
// =============================================================================

// Record is one row of an input table: an ordered mapping from column name
// to Value. Records are never mutated after construction.
type Record struct {
	columns []string
	values  map[string]Value
}

// NewRecord builds a record from parallel column and value slices.
// Missing trailing values are treated as Missing. When a column name repeats,
// the first occurrence wins.
func NewRecord(columns []string, values []Value) Record {
	r := Record{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]Value, len(columns)),
	}
	for i, col := range columns {
		if _, dup := r.values[col]; dup {
			continue
		}
		v := Missing()
		if i < len(values) {
			v = values[i]
		}
		r.columns = append(r.columns, col)
		r.values[col] = v
	}
	return r
}

// Get returns the value stored under column and whether the column exists.
func (r Record) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in table order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Table is a loaded input table.
type Table struct {
	// Name identifies the table in diagnostics (sheet name or file name).
	Name string

	// Columns are the header names in order.
	Columns []string

	// Records are the data rows in input order.
	Records []Record
}

// HasColumn reports whether the table header contains column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// =============================================================================
// RENDERING CONTEXT
// =============================================================================

// Style describes the run formatting of an attention marker.
type Style struct {
	Bold bool

	// Color is a six digit hex RGB value, e.g. "FF0000".
	Color string
}

// Field is one resolved entry of a rendering context. A nil Style means
// plain text.
type Field struct {
	Value Value
	Style *Style
}

// Plain wraps a value as an unstyled field.
func Plain(v Value) Field {
	return Field{Value: v}
}

// Styled wraps text as a styled marker.
func Styled(text string, style Style) Field {
	return Field{Value: Text(text), Style: &style}
}

// IsStyled reports whether the field carries a style.
func (f Field) IsStyled() bool {
	return f.Style != nil
}

// Context maps template placeholder names to resolved fields. A context is
// built fresh for one (record, document) pair and consumed by one render.
type Context map[string]Field

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentType identifies one of the two generated documents.
type DocumentType string

const (
	// DocumentOffer is the offer letter.
	DocumentOffer DocumentType = "offer"

	// DocumentApproval is the interview-evaluation and hiring-approval form.
	DocumentApproval DocumentType = "approval"
)

// DocumentTypes lists the document types in generation order.
var DocumentTypes = []DocumentType{DocumentOffer, DocumentApproval}

// Label returns the human readable name printed on the console.
func (d DocumentType) Label() string {
	switch d {
	case DocumentOffer:
		return "Offer"
	case DocumentApproval:
		return "审批表"
	default:
		return string(d)
	}
}
