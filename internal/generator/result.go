package generator

import (
	"time"

	"github.com/ginjaninja78/offer-docgen/internal/types"
	"github.com/ginjaninja78/offer-docgen/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Status is the terminal state of one offer record.
type Status int

const (
	// StatusDone means both documents were generated.
	StatusDone Status = iota

	// StatusSkippedEmptyIdentity means the record had no candidate identity.
	StatusSkippedEmptyIdentity

	// StatusSkippedNoMatch means no approval record joined to the record.
	StatusSkippedNoMatch

	// StatusFailed means at least one document could not be generated.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkippedEmptyIdentity:
		return "skipped_empty_identity"
	case StatusSkippedNoMatch:
		return "skipped_no_match"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage names the step a document failed in.
type Stage string

const (
	StageLoad   Stage = "load"
	StageName   Stage = "name"
	StageRender Stage = "render"
	StageSave   Stage = "save"
)

// DocumentResult is the outcome of one (candidate, document) pair.
type DocumentResult struct {
	Document types.DocumentType

	// OutputFile is the written path. Empty on failure.
	OutputFile string

	Success bool

	// Stage and Error describe a failure.
	Stage Stage
	Error error
}

// CandidateResult is the outcome of one offer record.
type CandidateResult struct {
	// Index is the zero-based position in the offer table.
	Index int

	// Identity is the cleaned candidate identity, empty when skipped for it.
	Identity string

	Status Status

	// Documents holds one entry per attempted document, in generation order.
	Documents []DocumentResult

	// Duplicates counts approval records ignored because an earlier record
	// carried the same identity.
	Duplicates int
}

// Ambiguous reports whether the approval match was not unique.
func (r CandidateResult) Ambiguous() bool {
	return r.Duplicates > 0
}

// Report aggregates a batch.
type Report struct {
	// OutputDir is where documents were written.
	OutputDir string

	// Total is the number of offer records handed to Run.
	Total int

	// Success and Failure count documents per type.
	Success map[types.DocumentType]int
	Failure map[types.DocumentType]int

	// Results holds one entry per processed record, in input order.
	Results []CandidateResult

	// Interrupted is set when the batch stopped before the last record.
	Interrupted bool

	Duration time.Duration
}

func newReport(outputDir string, total int) *Report {
	return &Report{
		OutputDir: outputDir,
		Total:     total,
		Success:   make(map[types.DocumentType]int, len(types.DocumentTypes)),
		Failure:   make(map[types.DocumentType]int, len(types.DocumentTypes)),
	}
}

func (r *Report) add(result CandidateResult) {
	r.Results = append(r.Results, result)
	for _, dr := range result.Documents {
		if dr.Success {
			r.Success[dr.Document]++
		} else {
			r.Failure[dr.Document]++
		}
	}
}

// Count returns the number of records that ended in status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Ambiguous returns the number of records joined to a non-unique identity.
func (r *Report) Ambiguous() int {
	n := 0
	for _, res := range r.Results {
		if res.Ambiguous() {
			n++
		}
	}
	return n
}

// HasFailures reports whether any document failed.
func (r *Report) HasFailures() bool {
	for _, n := range r.Failure {
		if n > 0 {
			return true
		}
	}
	return false
}

// FailureEntries lists every failed document for the failure log.
func (r *Report) FailureEntries(at time.Time) []utils.FailureLogEntry {
	var entries []utils.FailureLogEntry
	for _, res := range r.Results {
		for _, dr := range res.Documents {
			if dr.Success {
				continue
			}
			msg := ""
			if dr.Error != nil {
				msg = dr.Error.Error()
			}
			entries = append(entries, utils.FailureLogEntry{
				Timestamp:    at,
				Candidate:    res.Identity,
				Document:     dr.Document.Label(),
				Stage:        string(dr.Stage),
				ErrorMessage: msg,
			})
		}
	}
	return entries
}

// =============================================================================
// OBSERVER
// =============================================================================

// Observer is notified as the batch progresses. Calls happen on the goroutine
// running the batch, in processing order.
type Observer interface {
	// CandidateStarted is called before each record is processed. position
	// is one-based; identity is empty for a record without one.
	CandidateStarted(position, total int, identity string)

	// DocumentFinished is called once per attempted document.
	DocumentFinished(identity string, result DocumentResult)

	// CandidateFinished is called once per processed record.
	CandidateFinished(result CandidateResult)
}

type nopObserver struct{}

func (nopObserver) CandidateStarted(int, int, string)       {}
func (nopObserver) DocumentFinished(string, DocumentResult) {}
func (nopObserver) CandidateFinished(CandidateResult)       {}
