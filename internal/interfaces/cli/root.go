// Package cli implements the toolminer command-line interface: offline
// mining of publication text, registry validation, and completeness scoring
// without a running service.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// globalOptions carries the persistent flags shared by every subcommand.
type globalOptions struct {
	registryPath string
	catalogPath  string
	jsonOutput   bool
	noColor      bool
}

// NewRootCmd builds the toolminer command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "toolminer",
		Short: "Mine publication text for research-tool mentions",
		Long: `toolminer runs the research-tool mining pipeline offline:
it extracts tool mentions from publication sections, deduplicates them,
classifies each against a curated catalog, and scores novel records for
completeness.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.registryPath, "registry", "",
		"path to the alias/pattern registry YAML (builtin set when omitted)")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "",
		"path to a catalog JSON document (empty catalog when omitted)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false,
		"emit JSON instead of tables")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false,
		"disable colored output")

	root.AddCommand(
		newMineCmd(opts),
		newRegistryCmd(),
		newScoreCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the command error, if any.
func Execute() error {
	return NewRootCmd().Execute()
}
