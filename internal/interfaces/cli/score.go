package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/catalog"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

type scoreOptions struct {
	name      string
	category  string
	fields    []string
	threshold float64
}

func newScoreCmd(global *globalOptions) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a tool record's completeness against its category's critical fields",
		Example: `  toolminer score --catalog catalog.json --category computational_tool \
    --name pNF-Seg --field name=pNF-Seg --field toolType=computational_tool`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "tool name (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "tool category (required)")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "record field as key=value (repeatable)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", toolmining.DefaultCompletenessThreshold,
		"minimum filled fraction in (0,1]")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runScore(cmd *cobra.Command, global *globalOptions, opts *scoreOptions) error {
	category := mention.ToolCategory(opts.category)
	if !category.IsValid() {
		return errors.Validation("score", fmt.Sprintf("unknown tool category: %s", opts.category))
	}
	if opts.threshold <= 0 || opts.threshold > 1 {
		return errors.Validation("score", "threshold must be in (0,1]")
	}

	fields, err := parseFieldFlags(opts.fields)
	if err != nil {
		return err
	}
	fields["name"] = opts.name
	if _, ok := fields["toolType"]; !ok {
		fields["toolType"] = string(category)
	}

	critical, err := criticalFieldsFor(cmd, global, category)
	if err != nil {
		return err
	}

	record := toolmining.Score(mention.ClassifiedTool{
		Mention: mention.ToolMention{
			Name:     opts.name,
			Category: category,
		},
		Disposition: mention.DispositionNovel,
	}, fields, critical, opts.threshold)

	if global.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), record)
	}
	renderScore(cmd, record, critical)
	return nil
}

func criticalFieldsFor(cmd *cobra.Command, global *globalOptions, category mention.ToolCategory) ([]string, error) {
	if global.catalogPath == "" {
		return nil, errors.Validation("score", "--catalog is required: scoring needs the category's critical-field list")
	}
	repo, err := catalog.LoadFile(global.catalogPath)
	if err != nil {
		return nil, err
	}
	return repo.CriticalFields(cmd.Context(), category)
}

func parseFieldFlags(raw []string) (map[string]string, error) {
	fields := make(map[string]string, len(raw))
	for _, r := range raw {
		key, value, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errors.Validation("score", fmt.Sprintf("invalid --field %q, expected key=value", r))
		}
		fields[strings.TrimSpace(key)] = value
	}
	return fields, nil
}

func renderScore(cmd *cobra.Command, record mention.ScoredRecord, critical []string) {
	out := cmd.OutOrStdout()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Critical Field", "Value", "Filled"})
	table.SetBorder(false)
	for _, name := range critical {
		value := record.Fields[name]
		filled := color.GreenString("yes")
		if strings.TrimSpace(value) == "" || strings.EqualFold(strings.TrimSpace(value), "NULL") {
			filled = color.RedString("no")
		}
		table.Append([]string{name, value, filled})
	}
	table.Render()

	verdict := color.GreenString("meets threshold")
	if !record.MeetsThreshold {
		verdict = color.RedString("below threshold")
	}
	fmt.Fprintf(out, "\n%s: %d/%d fields filled, %.0f%% (%s)\n",
		record.Tool.Mention.Name, record.FilledFields, record.TotalFields,
		record.CompletenessPercentage, verdict)
}
