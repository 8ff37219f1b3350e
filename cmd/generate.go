// =============================================================================
// Offer Document Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command of the tool.
// It orchestrates one single-shot generation pass.
//
// COMMAND USAGE:
//   offer-docgen generate [flags]
//
// FLAGS:
//   --candidates : Comma-separated candidate names; skips the prompt
//
// PROCESSING PIPELINE:
//   1. Load configuration (defaults when there is no config file)
//   2. Locate the workbook and templates; stop if any is missing
//   3. Load the field mappings and both tables
//   4. Validate mappings against the tables
//   5. Ask which candidates to process
//   6. Generate both documents per candidate, one candidate at a time
//   7. Print the summary and write the failure log
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/offer-docgen/internal/config"
	"github.com/ginjaninja78/offer-docgen/internal/docx"
	"github.com/ginjaninja78/offer-docgen/internal/generator"
	"github.com/ginjaninja78/offer-docgen/internal/locator"
	"github.com/ginjaninja78/offer-docgen/internal/logging"
	"github.com/ginjaninja78/offer-docgen/internal/selection"
	"github.com/ginjaninja78/offer-docgen/internal/tables"
	"github.com/ginjaninja78/offer-docgen/internal/types"
	"github.com/ginjaninja78/offer-docgen/internal/validation"
	"github.com/ginjaninja78/offer-docgen/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// candidates lists the candidates to process, bypassing the prompt.
var candidates string

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate offer letters and approval forms",
	Long: `The generate command reads the offer and approval sheets, pairs every offer
row with the approval row of the same candidate, and writes both documents
for each candidate into the output directory.

Candidates without a name or without an approval row are skipped. A failure
in one document never stops the batch; failed documents are listed in a
failure log in the output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

// init registers the generate command with the root command.
func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&candidates,
		"candidates",
		"",
		`Comma-separated candidate names to process, or "all" (skips the prompt)`,
	)
}

// =============================================================================
// RUN OPTIONS
// =============================================================================

// generateOptions carries everything a run needs from its environment.
type generateOptions struct {
	// ConfigPath is the configuration file; ConfigRequired fails the run
	// when it does not exist.
	ConfigPath     string
	ConfigRequired bool

	Verbose bool

	// Candidates, when HasCandidates is set, replaces the prompt.
	Candidates    string
	HasCandidates bool

	Out      io.Writer
	Prompter *selection.Prompter

	// Wait pauses before the process exits. Defaults to a context-aware sleep.
	Wait func(ctx context.Context, d time.Duration)
}

func runGenerate(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return generate(ctx, generateOptions{
		ConfigPath:     cfgFile,
		ConfigRequired: cmd.Flags().Changed("config"),
		Verbose:        verbose,
		Candidates:     candidates,
		HasCandidates:  cmd.Flags().Changed("candidates"),
		Out:            cmd.OutOrStdout(),
		Prompter:       selection.NewPrompter(),
	})
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// generate is the main function that orchestrates the generation pipeline.
func generate(ctx context.Context, opts generateOptions) error {
	out := newConsole(opts.Out)
	wait := opts.Wait
	if wait == nil {
		wait = sleep
	}
	runID := uuid.NewString()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	out.banner("Offer 文档生成工具")

	cfg, err := loadConfig(opts.ConfigPath, opts.ConfigRequired)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	// From here on the console stays open long enough to read a failure.
	abort := func(err error) error {
		logger.Error("run failed", zap.Error(err))
		out.fail("程序运行出错: %v", err)
		wait(ctx, cfg.ExitDelay)
		return errReported
	}

	runLogger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Verbose: opts.Verbose})
	if err != nil {
		return abort(err)
	}
	logger = runLogger.With(zap.String("run_id", runID))
	logger.Debug("configuration loaded", zap.String("config", opts.ConfigPath))

	// =========================================================================
	// STEP 2: LOCATE RESOURCES
	// =========================================================================
	// Nothing is generated unless every required file is present.

	loc := locator.New(locator.Options{ResourceDir: cfg.ResourceDir})
	logger.Debug("resource search path", zap.Strings("bases", loc.Bases()))

	found, err := loc.LocateAll(cfg.RequiredResources()...)
	if err != nil {
		var missing *locator.MissingResourcesError
		if !errors.As(err, &missing) {
			return abort(err)
		}
		for _, m := range missing.Missing {
			logger.Error("missing resource", zap.String("name", m.Name), zap.Strings("searched", m.Searched))
		}
		out.missingResources(missing, cfg.RequiredResources())
		wait(ctx, cfg.ExitDelay)
		return errReported
	}

	offerSource := cfg.OfferTable()
	approvalSource := cfg.ApprovalTable()

	outputDir := cfg.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(filepath.Dir(found[offerSource.Path]), outputDir)
	}
	if err := utils.EnsureDirectory(outputDir); err != nil {
		return abort(err)
	}

	// =========================================================================
	// STEP 3: LOAD MAPPINGS AND TABLES
	// =========================================================================

	mappings := config.DefaultMappings(cfg.AttentionSentinel)
	if cfg.MappingFile != "" {
		mappings, err = config.LoadMappings(found[cfg.MappingFile], cfg.AttentionSentinel)
		if err != nil {
			return abort(fmt.Errorf("failed to load mapping file: %w", err))
		}
	}

	out.info("正在读取Excel数据...")

	offerTable, err := tables.Load(offerSource, found[offerSource.Path])
	if err != nil {
		return abort(fmt.Errorf("failed to read offer table: %w", err))
	}
	approvalTable, err := tables.Load(approvalSource, found[approvalSource.Path])
	if err != nil {
		return abort(fmt.Errorf("failed to read approval table: %w", err))
	}

	out.info("找到 %d 条候选人数据", len(offerTable.Records))

	// =========================================================================
	// STEP 4: VALIDATE
	// =========================================================================

	result := validation.Validate(validation.Input{
		Mappings:       mappings,
		Offer:          offerTable,
		Approval:       approvalTable,
		IdentityColumn: cfg.IdentityColumn,
	})
	for _, f := range result.Errors {
		logger.Warn("validation", zap.String("severity", f.Severity), zap.String("finding", f.Error()))
	}
	out.validationFindings(result.Errors)
	if !result.IsValid {
		wait(ctx, cfg.ExitDelay)
		return errReported
	}

	// =========================================================================
	// STEP 5: SELECT CANDIDATES
	// =========================================================================

	names := selection.Identities(offerTable.Records, cfg.IdentityColumn)
	out.info("候选人列表: %s", strings.Join(names, ", "))

	sel, err := chooseCandidates(ctx, opts, len(names), out)
	if errors.Is(err, selection.ErrAborted) {
		out.info("\n用户取消操作")
		return nil
	}
	if err != nil {
		return abort(err)
	}

	records, unknown := sel.Filter(offerTable.Records, cfg.IdentityColumn)
	for _, name := range unknown {
		out.warn("未找到候选人: %s", name)
	}
	if sel.IsAll() {
		out.info("将处理所有候选人")
	} else {
		out.info("已选择 %d 位候选人进行处理", len(records))
	}

	// =========================================================================
	// STEP 6: GENERATE
	// =========================================================================

	out.printf("\n")
	out.banner("开始生成文档")
	out.info("开始批量处理 %d 位候选人...\n", len(records))

	settings := generator.SettingsFromConfig(cfg, mappings, map[types.DocumentType]string{
		types.DocumentOffer:    found[cfg.OfferTemplate],
		types.DocumentApproval: found[cfg.ApprovalTemplate],
	})
	settings.OutputDir = outputDir

	namer := utils.NewOutputNamer()
	gen := generator.New(settings, approvalTable, docxLoader(),
		generator.WithLogger(logger),
		generator.WithObserver(out),
		generator.WithNamer(namer),
	)
	report := gen.Run(ctx, records)

	// =========================================================================
	// STEP 7: REPORT
	// =========================================================================

	failureLog := ""
	if report.HasFailures() {
		failureLog, err = utils.WriteFailureLog(report.FailureEntries(namer.Now()), outputDir, runID, namer)
		if err != nil {
			logger.Error("failed to write failure log", zap.Error(err))
		}
	}
	out.report(report, failureLog)

	wait(ctx, cfg.ExitDelay)
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig loads the configuration. Without an explicit path the default
// file is looked up like any other resource, and defaults are used when it
// does not exist.
func loadConfig(path string, required bool) (*config.MainConfig, error) {
	if required {
		return config.LoadMainConfig(path, true)
	}
	located, err := locator.New(locator.Options{}).Locate(config.DefaultConfigFile)
	if err != nil {
		return config.Default(), nil
	}
	return config.LoadMainConfig(located, true)
}

// chooseCandidates applies --candidates or asks the operator.
func chooseCandidates(ctx context.Context, opts generateOptions, count int, out *console) (selection.Selection, error) {
	if opts.HasCandidates {
		return selection.Parse(opts.Candidates), nil
	}
	if opts.Prompter == nil {
		return selection.All(), nil
	}

	out.printf("\n")
	opts.Prompter.OnFallback = func(err error) {
		logger.Debug("prompt unavailable, processing all candidates", zap.Error(err))
		out.info("输入处理出错，将处理所有候选人: %v", err)
	}
	return opts.Prompter.Ask(ctx, count)
}

// docxLoader loads .docx templates for the generator.
func docxLoader() generator.TemplateLoader {
	return generator.TemplateLoaderFunc(func(path string) (generator.Template, error) {
		return docx.Load(path)
	})
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
