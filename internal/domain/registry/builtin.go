package registry

// BuiltinSource returns the small built-in default alias set used when the
// configured registry source is unavailable.  The pipeline degrades to this
// set rather than failing outright; coverage is intentionally narrow and
// biased toward the most common neurofibromatosis research tools.
func BuiltinSource() *Source {
	return &Source{
		Categories: map[string]CategorySource{
			"animal_model": {
				Tools: map[string]ToolSource{
					"Nf1 heterozygous mouse": {
						Aliases: []string{"nf1+/-", "nf1 +/-", "nf1 het"},
					},
					"Nf1 conditional knockout mouse": {
						Aliases: []string{"nf1 flox/flox", "nf1fl/fl", "nf1 flox"},
					},
					"Nf1 Schwann cell knockout mouse": {
						Aliases: []string{"nf1flox/flox;dhhcre", "dhh-cre;nf1fl/fl"},
					},
					"Trp53 heterozygous mouse": {
						Aliases: []string{"trp53+/-", "p53+/-"},
					},
				},
			},
			"cell_line": {
				Tools: map[string]ToolSource{
					"ipNF95.5": {Aliases: []string{"ipnf 95.5"}},
					"sNF96.2":  {Aliases: []string{"snf 96.2"}},
					"ST88-14":  {Aliases: []string{"st88 14", "st8814"}},
					"HEI-193":  {Aliases: []string{"hei193"}},
				},
			},
			"computational_tool": {
				Tools: map[string]ToolSource{
					"ImageJ":       {Aliases: []string{"fiji", "image j"}},
					"CellProfiler": {Aliases: []string{"cell profiler"}},
					"GraphPad Prism": {
						Aliases: []string{"prism 9", "prism 10"},
					},
				},
				ExcludedTerms: []string{
					"nanodrop",
					"spectrophotometer",
					"thermocycler",
					"centrifuge",
					"vortexer",
					"hemocytometer",
				},
			},
			"antibody": {
				Tools: map[string]ToolSource{
					"anti-NF1 antibody": {Aliases: []string{"nf1 antibody"}},
					"anti-S100 antibody": {
						Aliases: []string{"s100 antibody", "anti s100"},
					},
				},
			},
			"genetic_reagent": {
				Tools: map[string]ToolSource{
					"NF1 shRNA": {Aliases: []string{"shnf1", "sh-nf1"}},
					"NF1 CRISPR knockout construct": {
						Aliases: []string{"nf1 sgrna", "nf1 crispr"},
					},
				},
			},
		},
		Novelty: NoveltySource{
			TitlePhrases: []string{
				"novel",
				"new",
				"first",
				"we developed",
				"development of",
			},
			DevelopmentPhrases: []string{
				"we developed",
				"we generated",
				"we established",
				"we created",
				"in-house",
				"custom-built",
				"newly established",
			},
		},
	}
}

// MustLoadBuiltin loads the built-in source, panicking on error.  The builtin
// set is covered by tests; a failure here is a programming error.
func MustLoadBuiltin() *Registry {
	r, err := Load(BuiltinSource())
	if err != nil {
		panic("registry: builtin source failed to load: " + err.Error())
	}
	return r
}
