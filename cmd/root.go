// =============================================================================
// Offer Document Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Started without a
// subcommand, for example by double-clicking the executable, the root
// command runs a generation pass.
//
// COBRA CLI STRUCTURE:
//   rootCmd (offer-docgen)
//   ├── generateCmd (offer-docgen generate)
//   └── versionCmd  (offer-docgen version)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logger is built once the configuration is known.
var logger = zap.NewNop()

// errReported marks failures already explained on the console.
var errReported = errors.New("run failed")

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "offer-docgen",
	Short: "Offer Document Generator - Offer letters and approval forms from candidate data",
	Long: `Offer Document Generator reads the offer and approval sheets of a candidate
workbook and generates, for every candidate, an offer letter and an
interview-evaluation and hiring-approval form from two Word templates.

Required fields missing from the approval sheet are highlighted in the
approval form so they can be completed by hand.

Example Usage:
  offer-docgen                              # Generate with files next to the executable
  offer-docgen generate --candidates 张三,李四 # Generate for two candidates only
  offer-docgen --config ./offer.yaml        # Use a custom configuration file`,

	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Path of the main configuration file. When not given,
	// config.yaml is looked up next to the executable and the defaults are
	// used if there is none.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	addGenerateFlags(rootCmd)
}
