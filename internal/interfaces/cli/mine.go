package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/catalog"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

type mineOptions struct {
	publicationID string
	title         string
	abstractPath  string
	methodsPath   string
	introPath     string
	categories    []string
	threshold     float64
}

func newMineCmd(global *globalOptions) *cobra.Command {
	opts := &mineOptions{}

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine one publication's sections for tool mentions",
		Example: `  toolminer mine --id PMID:38123456 --methods methods.txt --abstract abstract.txt
  toolminer mine --id PMID:38123456 --methods - < methods.txt --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMine(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.publicationID, "id", "", "publication identifier (required)")
	cmd.Flags().StringVar(&opts.title, "title", "", "publication title, used by the novelty heuristics")
	cmd.Flags().StringVar(&opts.abstractPath, "abstract", "", "path to the abstract text ('-' for stdin)")
	cmd.Flags().StringVar(&opts.methodsPath, "methods", "", "path to the methods text ('-' for stdin)")
	cmd.Flags().StringVar(&opts.introPath, "introduction", "", "path to the introduction text ('-' for stdin)")
	cmd.Flags().StringSliceVar(&opts.categories, "category", nil, "restrict to tool categories (repeatable)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "completeness threshold in (0,1], default from pipeline config")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runMine(cmd *cobra.Command, global *globalOptions, opts *mineOptions) error {
	sections, err := readSections(cmd.InOrStdin(), map[mention.Section]string{
		mention.SectionAbstract:     opts.abstractPath,
		mention.SectionMethods:      opts.methodsPath,
		mention.SectionIntroduction: opts.introPath,
	})
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return errors.Validation("mine", "at least one of --abstract, --methods, --introduction is required")
	}

	categories, err := parseCategories(opts.categories)
	if err != nil {
		return err
	}

	service, err := buildOfflineService(global, opts.threshold)
	if err != nil {
		return err
	}

	result, err := service.MinePublication(cmd.Context(), &toolmining.MiningRequest{
		PublicationID:         commontypes.PublicationID(opts.publicationID),
		Title:                 opts.title,
		Sections:              sections,
		Categories:            categories,
		CompletenessThreshold: opts.threshold,
	})
	if err != nil {
		return err
	}

	if global.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	renderResult(cmd.OutOrStdout(), result)
	return nil
}

// buildOfflineService wires the pipeline without database, cache, or broker.
func buildOfflineService(global *globalOptions, threshold float64) (toolmining.MiningService, error) {
	reg, err := registry.LoadFile(global.registryPath)
	if err != nil {
		return nil, err
	}

	var repo catalog.Repository
	if global.catalogPath != "" {
		repo, err = catalog.LoadFile(global.catalogPath)
		if err != nil {
			return nil, err
		}
	} else {
		repo = catalog.NewStaticCatalog(nil, nil)
	}

	return toolmining.NewMiningService(
		toolmining.StaticRegistry(reg),
		repo,
		nil,
		nil,
		logging.NewNopLogger(),
		threshold,
	), nil
}

// readSections loads each configured section source.  "-" reads stdin; only
// one section may use it.
func readSections(stdin io.Reader, paths map[mention.Section]string) (map[mention.Section]string, error) {
	sections := make(map[mention.Section]string)
	stdinUsed := false
	for _, section := range []mention.Section{mention.SectionAbstract, mention.SectionMethods, mention.SectionIntroduction} {
		path := paths[section]
		if path == "" {
			continue
		}
		if path == "-" {
			if stdinUsed {
				return nil, errors.Validation("mine", "only one section may read from stdin")
			}
			stdinUsed = true
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "reading section from stdin")
			}
			sections[section] = string(data)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest,
				fmt.Sprintf("reading %s section from %q", section, path))
		}
		sections[section] = string(data)
	}
	return sections, nil
}

func parseCategories(raw []string) ([]mention.ToolCategory, error) {
	categories := make([]mention.ToolCategory, 0, len(raw))
	for _, r := range raw {
		cat := mention.ToolCategory(strings.TrimSpace(r))
		if !cat.IsValid() {
			return nil, errors.Validation("mine", fmt.Sprintf("unknown tool category: %s", r))
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints the partitioned result as tables.
func renderResult(out io.Writer, result *toolmining.PublicationResult) {
	bold := color.New(color.Bold)
	bold.Fprintf(out, "Publication %s: %d mention(s) across %d section(s)\n\n",
		result.PublicationID, result.TotalMentions, result.SectionsScanned)

	if len(result.Existing)+len(result.Novel)+len(result.Excluded) == 0 {
		fmt.Fprintln(out, "No tool mentions found.")
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Name", "Category", "Section", "Confidence", "Disposition", "Reason"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	appendClassified := func(tools []mention.ClassifiedTool, disposition string) {
		for _, t := range tools {
			table.Append([]string{
				t.Mention.Name,
				string(t.Mention.Category),
				string(t.Mention.Section),
				fmt.Sprintf("%.2f", t.Mention.Confidence),
				disposition,
				t.Reason,
			})
		}
	}
	appendClassified(result.Existing, color.GreenString("existing"))
	for _, rec := range result.Novel {
		disposition := color.CyanString("novel")
		if rec.Tool.NeedsReview {
			disposition = color.YellowString("novel (review)")
		}
		table.Append([]string{
			rec.Tool.Mention.Name,
			string(rec.Tool.Mention.Category),
			string(rec.Tool.Mention.Section),
			fmt.Sprintf("%.2f", rec.Tool.Mention.Confidence),
			disposition,
			rec.Tool.Reason,
		})
	}
	appendClassified(result.Excluded, color.RedString("excluded"))
	table.Render()

	if len(result.Novel) > 0 {
		fmt.Fprintln(out)
		bold.Fprintln(out, "Novel record completeness")
		scoreTable := tablewriter.NewWriter(out)
		scoreTable.SetHeader([]string{"Name", "Filled", "Total", "Completeness", "Meets Threshold"})
		scoreTable.SetBorder(false)
		for _, rec := range result.Novel {
			verdict := color.GreenString("yes")
			if !rec.MeetsThreshold {
				verdict = color.RedString("no")
			}
			scoreTable.Append([]string{
				rec.Tool.Mention.Name,
				fmt.Sprintf("%d", rec.FilledFields),
				fmt.Sprintf("%d", rec.TotalFields),
				fmt.Sprintf("%.0f%%", rec.CompletenessPercentage),
				verdict,
			})
		}
		scoreTable.Render()
	}
}
