// =============================================================================
// Offer Document Generator - Generator Module
// =============================================================================
//
// This module contains the batch generation driver. It takes every offer
// record through the same pipeline, one record at a time, and aggregates the
// per-record outcomes into a Report.
//
// PIPELINE (per offer record, in input order):
//   1. Resolve the candidate identity       -> SkippedEmptyIdentity
//   2. Join against the approval table      -> SkippedNoMatch
//   3. Load one fresh template per document -> Failed (both documents)
//   4. Build the offer and approval contexts
//   5. For each document: name, render, save -> Failed (that document only)
//
// ISOLATION:
//   Every (candidate, document) pair renders into its own template instance.
//   Nothing rendered for one candidate is visible to the next.
//
// FAILURE CONTAINMENT:
//   No per-record error stops the batch. Failures are recorded against the
//   document type they occurred in and the loop moves on.
//
// =============================================================================

package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/offer-docgen/internal/binding"
	"github.com/ginjaninja78/offer-docgen/internal/config"
	"github.com/ginjaninja78/offer-docgen/internal/join"
	"github.com/ginjaninja78/offer-docgen/internal/types"
	"github.com/ginjaninja78/offer-docgen/pkg/utils"
)

// =============================================================================
// TEMPLATE ABSTRACTION
// =============================================================================

// Template is one single-use document template instance.
type Template interface {
	Render(ctx types.Context) error
	Save(path string) error
}

// TemplateLoader creates a fresh Template instance from a template file.
type TemplateLoader interface {
	Load(path string) (Template, error)
}

// TemplateLoaderFunc adapts a function to TemplateLoader.
type TemplateLoaderFunc func(path string) (Template, error)

// Load calls f(path).
func (f TemplateLoaderFunc) Load(path string) (Template, error) {
	return f(path)
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds everything the generator needs besides the input tables.
type Settings struct {
	// Templates maps each document type to its template path.
	Templates map[types.DocumentType]string

	// FileNames maps each document type to its output name pattern.
	FileNames map[types.DocumentType]string

	// OutputDir receives the generated documents. It must exist.
	OutputDir string

	// IdentityColumn joins offer records to approval records.
	IdentityColumn string

	// Mappings are the field mappings of both documents.
	Mappings config.Mappings

	// Attention styles unfilled required approval fields.
	Attention binding.AttentionStyle
}

// SettingsFromConfig derives generator settings from the main configuration.
// templates maps each document type to its located template path.
func SettingsFromConfig(cfg *config.MainConfig, mappings config.Mappings, templates map[types.DocumentType]string) Settings {
	return Settings{
		Templates: templates,
		FileNames: map[types.DocumentType]string{
			types.DocumentOffer:    cfg.OfferFileName,
			types.DocumentApproval: cfg.ApprovalFileName,
		},
		OutputDir:      cfg.OutputDir,
		IdentityColumn: cfg.IdentityColumn,
		Mappings:       mappings,
		Attention: binding.AttentionStyle{
			Sentinel: cfg.AttentionSentinel,
			Color:    cfg.AttentionColor,
		},
	}
}

// =============================================================================
// GENERATOR STRUCTURE
// =============================================================================

// Generator drives the batch.
type Generator struct {
	settings Settings
	loader   TemplateLoader
	joiner   *join.Joiner
	namer    *utils.OutputNamer
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the diagnostic logger. Default: no-op.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithObserver receives outcomes as they happen. Default: none.
func WithObserver(observer Observer) Option {
	return func(g *Generator) { g.observer = observer }
}

// WithNamer sets the output namer. Default: wall-clock namer.
func WithNamer(namer *utils.OutputNamer) Option {
	return func(g *Generator) {
		g.namer = namer
		if namer != nil && namer.Now != nil {
			g.now = namer.Now
		}
	}
}

// New creates a Generator joining offer records against approvals.
//
// PARAMETERS:
//   - settings:  Templates, output naming, mappings and attention style.
//   - approvals: The approval table, loaded as text.
//   - loader:    Creates template instances.
//   - opts:      Optional logger, observer and namer.
//
// RETURNS:
//   - A new Generator instance.
func New(settings Settings, approvals *types.Table, loader TemplateLoader, opts ...Option) *Generator {
	g := &Generator{
		settings: settings,
		loader:   loader,
		joiner:   join.New(approvals, settings.IdentityColumn),
		namer:    utils.NewOutputNamer(),
		logger:   zap.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run processes offers in order and returns the aggregate report. A done
// ctx stops the batch before the next record; the report then covers the
// records processed so far.
func (g *Generator) Run(ctx context.Context, offers []types.Record) *Report {
	startTime := g.now()
	report := newReport(g.settings.OutputDir, len(offers))

	for id, count := range g.joiner.Duplicated() {
		g.logger.Warn("approval table holds duplicate identity, first row in table order is used",
			zap.String("candidate", id), zap.Int("rows", count))
	}

	for i, rec := range offers {
		if err := ctx.Err(); err != nil {
			report.Interrupted = true
			g.logger.Warn("batch interrupted", zap.Int("processed", i), zap.Int("total", len(offers)), zap.Error(err))
			break
		}

		g.observer.CandidateStarted(i+1, len(offers), binding.Identity(rec, g.settings.IdentityColumn))
		result := g.ProcessRecord(i, rec)
		report.add(result)
		g.observer.CandidateFinished(result)
	}

	report.Duration = g.now().Sub(startTime)
	g.logger.Info("batch finished",
		zap.Int("candidates", len(report.Results)),
		zap.Int("offer_success", report.Success[types.DocumentOffer]),
		zap.Int("approval_success", report.Success[types.DocumentApproval]),
		zap.Int("offer_failure", report.Failure[types.DocumentOffer]),
		zap.Int("approval_failure", report.Failure[types.DocumentApproval]),
		zap.Duration("duration", report.Duration))

	return report
}

// ProcessRecord takes one offer record through the pipeline.
//
// PARAMETERS:
//   - index: The zero-based position of rec in the offer table.
//   - rec:   The offer record.
//
// RETURNS:
//   - The outcome of the record. Errors never escape; they are reported in
//     the result.
func (g *Generator) ProcessRecord(index int, rec types.Record) CandidateResult {
	result := CandidateResult{Index: index}

	// =========================================================================
	// STEP 1-2: IDENTIFY AND JOIN
	// =========================================================================

	match, err := g.joiner.Join(rec)
	result.Identity = match.Identity
	switch {
	case errors.Is(err, join.ErrEmptyIdentity):
		result.Status = StatusSkippedEmptyIdentity
		g.logger.Debug("skipping record without identity", zap.Int("row", index+1))
		return result
	case errors.Is(err, join.ErrNotFound):
		result.Status = StatusSkippedNoMatch
		g.logger.Info("no approval record", zap.String("candidate", match.Identity))
		return result
	}

	log := g.logger.With(zap.String("candidate", match.Identity))
	if match.Ambiguous() {
		result.Duplicates = match.Duplicates
		log.Warn("ambiguous approval match", zap.Int("approval_row", match.Row+1), zap.Int("ignored_rows", match.Duplicates))
	}

	// =========================================================================
	// STEP 3: LOAD FRESH TEMPLATE INSTANCES
	// =========================================================================
	// Both instances are created before any rendering. If either cannot be
	// loaded, both documents of this candidate are abandoned.

	instances := make(map[types.DocumentType]Template, len(types.DocumentTypes))
	for _, doc := range types.DocumentTypes {
		tpl, err := g.loader.Load(g.settings.Templates[doc])
		if err != nil {
			loadErr := fmt.Errorf("failed to load %s template: %w", doc, err)
			log.Error("template load failed", zap.String("document", string(doc)), zap.Error(err))
			result.Status = StatusFailed
			for _, d := range types.DocumentTypes {
				dr := DocumentResult{Document: d, Stage: StageLoad, Error: loadErr}
				result.Documents = append(result.Documents, dr)
				g.observer.DocumentFinished(result.Identity, dr)
			}
			return result
		}
		instances[doc] = tpl
	}

	// =========================================================================
	// STEP 4: BUILD CONTEXTS
	// =========================================================================

	contexts := map[types.DocumentType]types.Context{
		types.DocumentOffer:    binding.BuildPlainContext(rec, g.settings.Mappings.Offer),
		types.DocumentApproval: binding.BuildAttentionContext(match.Record, g.settings.Mappings.Approval, g.settings.Attention),
	}

	// =========================================================================
	// STEP 5: RENDER AND SAVE EACH DOCUMENT
	// =========================================================================

	result.Status = StatusDone
	for _, doc := range types.DocumentTypes {
		dr := g.generate(doc, match.Identity, instances[doc], contexts[doc])
		if dr.Success {
			log.Debug("document written", zap.String("document", string(doc)), zap.String("path", dr.OutputFile))
		} else {
			log.Error("document failed", zap.String("document", string(doc)), zap.String("stage", string(dr.Stage)), zap.Error(dr.Error))
			result.Status = StatusFailed
		}
		result.Documents = append(result.Documents, dr)
		g.observer.DocumentFinished(result.Identity, dr)
	}

	return result
}

// generate names, renders and saves one document.
func (g *Generator) generate(doc types.DocumentType, identity string, tpl Template, ctx types.Context) DocumentResult {
	dr := DocumentResult{Document: doc}

	fileName := config.FileName(g.settings.FileNames[doc], identity)
	path, err := g.namer.ResolvePath(g.settings.OutputDir, fileName)
	if err != nil {
		dr.Stage, dr.Error = StageName, fmt.Errorf("failed to resolve output path: %w", err)
		return dr
	}

	if err := tpl.Render(ctx); err != nil {
		dr.Stage, dr.Error = StageRender, fmt.Errorf("failed to render %s: %w", fileName, err)
		return dr
	}

	if err := tpl.Save(path); err != nil {
		dr.Stage, dr.Error = StageSave, fmt.Errorf("failed to save %s: %w", path, err)
		return dr
	}

	dr.OutputFile = path
	dr.Success = true
	return dr
}
