// =============================================================================
// Offer Document Generator - Validation Engine
// =============================================================================
//
// This module checks the field mappings and the loaded tables before any
// document is generated.
//
// VALIDATION STRATEGY:
//   1. Mapping-level: every key is a usable placeholder name and appears once
//   2. Table-level:   every mapped column exists in the table it is read from
//
// ERROR HANDLING:
//   - Errors are collected, not returned on the first problem
//   - Mapping problems are fatal: the placeholders could not be filled
//   - Absent columns are warnings: the field silently takes its default, so
//     the operator should hear about it, but generation can proceed
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/offer-docgen/internal/config"
	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// placeholderKey matches names the template engine accepts as variables.
var placeholderKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError (fatal) or SeverityWarning.
	Severity string

	// Document is the document type whose mapping is concerned.
	Document types.DocumentType

	// Field is the placeholder key, when the finding concerns one field.
	Field string

	// Column is the source column, when the finding concerns one.
	Column string

	// Table is the name of the table checked, for table-level findings.
	Table string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Severity), e.Document.Label())
	if e.Field != "" {
		fmt.Fprintf(&b, ", Field '%s'", e.Field)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", Column '%s'", e.Column)
	}
	if e.Table != "" {
		fmt.Fprintf(&b, ", Table '%s'", e.Table)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

func newResult(findings []*ValidationError) *ValidationResult {
	result := &ValidationResult{Errors: findings}
	for _, f := range findings {
		if f.Severity == SeverityError {
			result.ErrorCount++
		} else {
			result.WarningCount++
		}
	}
	result.IsValid = result.ErrorCount == 0
	return result
}

// Fatal returns the fatal errors only.
func (r *ValidationResult) Fatal() []*ValidationError {
	var out []*ValidationError
	for _, f := range r.Errors {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the warnings only.
func (r *ValidationResult) Warnings() []*ValidationError {
	var out []*ValidationError
	for _, f := range r.Errors {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Input bundles what Validate checks.
type Input struct {
	Mappings       config.Mappings
	Offer          *types.Table
	Approval       *types.Table
	IdentityColumn string
}

// Validate runs every check.
//
// PARAMETERS:
//   - in: The mappings and the loaded tables.
//
// RETURNS:
//   - A ValidationResult. Tables may be nil, in which case only the
//     mappings are checked.
func Validate(in Input) *ValidationResult {
	var findings []*ValidationError

	findings = append(findings, ValidateMapping(in.Mappings.Offer)...)
	findings = append(findings, ValidateMapping(in.Mappings.Approval)...)

	if in.Offer != nil {
		findings = append(findings, ValidateIdentityColumn(in.Offer, types.DocumentOffer, in.IdentityColumn)...)
		findings = append(findings, ValidateColumns(in.Offer, in.Mappings.Offer)...)
	}
	if in.Approval != nil {
		findings = append(findings, ValidateIdentityColumn(in.Approval, types.DocumentApproval, in.IdentityColumn)...)
		findings = append(findings, ValidateColumns(in.Approval, in.Mappings.Approval)...)
	}

	return newResult(findings)
}

// ValidateMapping checks that every key is a valid placeholder name and
// unique, and that every field names a source column.
func ValidateMapping(m config.Mapping) []*ValidationError {
	var findings []*ValidationError
	seen := make(map[string]bool, m.Len())

	for _, spec := range m.Fields() {
		switch {
		case spec.Key == "":
			findings = append(findings, &ValidationError{
				Severity: SeverityError,
				Document: m.Document(),
				Column:   spec.Column,
				Message:  "field has no key",
			})
			continue
		case !placeholderKey.MatchString(spec.Key):
			findings = append(findings, &ValidationError{
				Severity: SeverityError,
				Document: m.Document(),
				Field:    spec.Key,
				Message:  "key must start with a letter or '_' and contain only letters, digits and '_'",
			})
		case seen[spec.Key]:
			findings = append(findings, &ValidationError{
				Severity: SeverityError,
				Document: m.Document(),
				Field:    spec.Key,
				Message:  "duplicate key",
			})
		}
		seen[spec.Key] = true

		if strings.TrimSpace(spec.Column) == "" {
			findings = append(findings, &ValidationError{
				Severity: SeverityError,
				Document: m.Document(),
				Field:    spec.Key,
				Message:  "field has no source column",
			})
		}
	}

	return findings
}

// ValidateColumns warns about every mapped column the table does not have.
// Such fields always resolve to their default.
func ValidateColumns(table *types.Table, m config.Mapping) []*ValidationError {
	var findings []*ValidationError
	warned := map[string]bool{}

	for _, spec := range m.Fields() {
		if spec.Column == "" || table.HasColumn(spec.Column) || warned[spec.Column] {
			continue
		}
		warned[spec.Column] = true
		findings = append(findings, &ValidationError{
			Severity: SeverityWarning,
			Document: m.Document(),
			Field:    spec.Key,
			Column:   spec.Column,
			Table:    table.Name,
			Message:  fmt.Sprintf("column not found, default %q will be used", spec.Default.String()),
		})
	}

	return findings
}

// ValidateIdentityColumn warns when the table lacks the identity column,
// which makes every record skip or fail to join.
func ValidateIdentityColumn(table *types.Table, doc types.DocumentType, column string) []*ValidationError {
	if table.HasColumn(column) {
		return nil
	}
	return []*ValidationError{{
		Severity: SeverityWarning,
		Document: doc,
		Column:   column,
		Table:    table.Name,
		Message:  "identity column not found, no candidate can be matched",
	}}
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// FormatErrors formats findings as a human-readable list.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return ""
	}

	var b strings.Builder
	for i, e := range errors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Error())
	}
	return b.String()
}
