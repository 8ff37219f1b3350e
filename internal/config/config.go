// =============================================================================
// Offer Document Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. Every setting has a default that reproduces the behaviour of
// the tool when it is started with no configuration file at all, by
// double-clicking the executable next to its input files.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): resource names, sheet names, output naming
//   2. Mapping File (optional):  overrides for the built-in field mappings
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// NamePlaceholder is substituted with the candidate identity in output file
// name patterns.
const NamePlaceholder = "{name}"

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "config.yaml"

var hexColorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// Workbook is the spreadsheet holding both the offer and approval sheets.
	// Default: "candidate_data.xlsx"
	Workbook string `yaml:"workbook"`

	// OfferSheet is the sheet name of the offer table.
	// Default: "offer信息"
	OfferSheet string `yaml:"offer_sheet"`

	// ApprovalSheet is the sheet name of the approval table.
	// Default: "审批信息"
	ApprovalSheet string `yaml:"approval_sheet"`

	// OfferSource optionally reads the offer table from another file
	// (.xlsx or .csv) instead of Workbook.
	OfferSource string `yaml:"offer_source,omitempty"`

	// ApprovalSource optionally reads the approval table from another file
	// (.xlsx or .csv) instead of Workbook.
	ApprovalSource string `yaml:"approval_source,omitempty"`

	// IdentityColumn is the column joining offer rows to approval rows.
	// Default: "姓名"
	IdentityColumn string `yaml:"identity_column"`

	// =========================================================================
	// TEMPLATE SETTINGS
	// =========================================================================

	// OfferTemplate is the .docx template of the offer letter.
	// Default: "offer_template.docx"
	OfferTemplate string `yaml:"offer_template"`

	// ApprovalTemplate is the .docx template of the approval form.
	// Default: "interview_approval.docx"
	ApprovalTemplate string `yaml:"approval_template"`

	// MappingFile optionally overrides the built-in field mappings.
	MappingFile string `yaml:"mapping_file,omitempty"`

	// ResourceDir is searched first when locating input files.
	ResourceDir string `yaml:"resource_dir,omitempty"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir receives the generated documents. It is created if absent.
	// Default: "生成的文档"
	OutputDir string `yaml:"output_dir"`

	// OfferFileName is the output name pattern of the offer letter.
	// Default: "全房通-员工录用通知书-{name}.docx"
	OfferFileName string `yaml:"offer_file_name"`

	// ApprovalFileName is the output name pattern of the approval form.
	// Default: "面试评估表+录用审批表-{name}.docx"
	ApprovalFileName string `yaml:"approval_file_name"`

	// =========================================================================
	// ATTENTION SETTINGS
	// =========================================================================

	// AttentionSentinel is the "please fill in" text. Attention-flagged
	// fields resolving to it are rendered as a styled marker.
	// Default: "请填写"
	AttentionSentinel string `yaml:"attention_sentinel"`

	// AttentionColor is the hex RGB colour of the marker.
	// Default: "FF0000"
	AttentionColor string `yaml:"attention_color"`

	// =========================================================================
	// LOGGING AND LIFECYCLE
	// =========================================================================

	// LogLevel controls the verbosity of diagnostics.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "warn"
	LogLevel string `yaml:"log_level"`

	// LogFile sends diagnostics to a file instead of stderr.
	LogFile string `yaml:"log_file,omitempty"`

	// ExitDelay keeps the console open after the report.
	// Default: 2s
	ExitDelay time.Duration `yaml:"exit_delay"`

	exitDelaySet bool
}

// TableSource describes where one input table is read from.
type TableSource struct {
	// Path is the file holding the table (.xlsx or .csv).
	Path string

	// Sheet is the sheet name. Ignored for .csv sources.
	Sheet string

	// AsText loads every cell as text, with no numeric inference.
	AsText bool

	// TextColumns are loaded as text even when AsText is false.
	TextColumns []string
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration holding only default values.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - required:   When false, a missing file yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, required bool) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses YAML bytes, applies defaults and validates.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// exit_delay: 0 is a legitimate value, so presence is tracked separately.
	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err == nil {
		_, config.exitDelaySet = keys["exit_delay"]
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.Workbook == "" {
		config.Workbook = "candidate_data.xlsx"
	}
	if config.OfferSheet == "" {
		config.OfferSheet = "offer信息"
	}
	if config.ApprovalSheet == "" {
		config.ApprovalSheet = "审批信息"
	}
	if config.IdentityColumn == "" {
		config.IdentityColumn = "姓名"
	}
	if config.OfferTemplate == "" {
		config.OfferTemplate = "offer_template.docx"
	}
	if config.ApprovalTemplate == "" {
		config.ApprovalTemplate = "interview_approval.docx"
	}
	if config.OutputDir == "" {
		config.OutputDir = "生成的文档"
	}
	if config.OfferFileName == "" {
		config.OfferFileName = "全房通-员工录用通知书-{name}.docx"
	}
	if config.ApprovalFileName == "" {
		config.ApprovalFileName = "面试评估表+录用审批表-{name}.docx"
	}
	if config.AttentionSentinel == "" {
		config.AttentionSentinel = "请填写"
	}
	if config.AttentionColor == "" {
		config.AttentionColor = "FF0000"
	}
	if config.LogLevel == "" {
		config.LogLevel = "warn"
	}
	if !config.exitDelaySet && config.ExitDelay == 0 {
		config.ExitDelay = 2 * time.Second
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	for label, pattern := range map[string]string{
		"offer_file_name":    config.OfferFileName,
		"approval_file_name": config.ApprovalFileName,
	} {
		if !strings.Contains(pattern, NamePlaceholder) {
			return fmt.Errorf("%s must contain %s: %q", label, NamePlaceholder, pattern)
		}
		if !strings.EqualFold(filepath.Ext(pattern), ".docx") {
			return fmt.Errorf("%s must end in .docx: %q", label, pattern)
		}
		if strings.ContainsAny(pattern, `/\`) {
			return fmt.Errorf("%s must be a file name, not a path: %q", label, pattern)
		}
	}

	if !hexColorPattern.MatchString(config.AttentionColor) {
		return fmt.Errorf("attention_color must be 6 hex digits: %q", config.AttentionColor)
	}

	if _, err := zapcore.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if config.ExitDelay < 0 {
		return fmt.Errorf("exit_delay must not be negative: %s", config.ExitDelay)
	}

	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// OfferTable returns the source of the offer table. The offer table keeps
// numeric cells numeric, except in the identity column.
func (c *MainConfig) OfferTable() TableSource {
	path := c.OfferSource
	if path == "" {
		path = c.Workbook
	}
	return TableSource{Path: path, Sheet: c.OfferSheet, TextColumns: []string{c.IdentityColumn}}
}

// ApprovalTable returns the source of the approval table. The approval table
// is declared as text so identity matching stays exact.
func (c *MainConfig) ApprovalTable() TableSource {
	path := c.ApprovalSource
	if path == "" {
		path = c.Workbook
	}
	return TableSource{Path: path, Sheet: c.ApprovalSheet, AsText: true}
}

// RequiredResources lists the files that must exist before generation starts,
// in reporting order and without duplicates.
func (c *MainConfig) RequiredResources() []string {
	candidates := []string{
		c.OfferTable().Path,
		c.ApprovalTable().Path,
		c.OfferTemplate,
		c.ApprovalTemplate,
	}
	if c.MappingFile != "" {
		candidates = append(candidates, c.MappingFile)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// FileName builds the output file name of a document for one candidate.
func FileName(pattern, identity string) string {
	return strings.ReplaceAll(pattern, NamePlaceholder, sanitizeFileComponent(identity))
}

// sanitizeFileComponent replaces characters that cannot appear in a file name
// on common filesystems.
func sanitizeFileComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, s)
}
