package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and validate alias/pattern registry files",
	}
	cmd.AddCommand(newRegistryValidateCmd())
	return cmd
}

func newRegistryValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a registry YAML file",
		Long: `Validate parses and loads a registry file, applying the same checks the
service applies at startup: alias ambiguity within a category, pattern
compilation, and category names.  Unlike the service, a missing file is an
error here rather than a builtin fallback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryValidate(cmd, args[0])
		},
	}
}

func runRegistryValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err != nil {
		color.New(color.FgRed).Fprintf(out, "INVALID  %s\n", path)
		return errors.Wrap(err, errors.ErrCodeRegistrySourceInvalid,
			fmt.Sprintf("registry source %q is not readable", path))
	}

	reg, err := registry.LoadFile(path)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "INVALID  %s\n", path)
		fmt.Fprintf(out, "  %s\n", err.Error())
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "VALID    %s\n\n", path)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Category", "Strategies", "Fuzzy Threshold"})
	table.SetBorder(false)
	for _, cat := range reg.Categories() {
		table.Append([]string{
			string(cat),
			fmt.Sprintf("%d", len(reg.Strategies(cat))),
			fmt.Sprintf("%.2f", reg.FuzzyThreshold(cat)),
		})
	}
	table.Render()

	fmt.Fprintf(out, "\nnovelty phrases: %d title, %d development\n",
		len(reg.NoveltyTitlePhrases()), len(reg.NoveltyDevelopmentPhrases()))
	return nil
}
