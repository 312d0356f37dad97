package mention

import (
	"regexp"
	"sort"
	"strings"
)

// MatchKind selects how a pattern family recognises tool names in text.
// The source heuristics mixed substring checks, regular expressions, and
// fuzzy-ratio scoring ad hoc per call site; unifying them behind one
// capability keeps the extractor free of special-cased branching.
type MatchKind string

const (
	// MatchExact matches a known name verbatim after normalisation.
	MatchExact MatchKind = "exact"

	// MatchAlias matches any alias phrase of a canonical name.
	MatchAlias MatchKind = "alias"

	// MatchRegex matches a compiled regular-expression pattern.
	MatchRegex MatchKind = "regex"

	// MatchFuzzy matches a known name by normalized edit similarity against
	// a configurable threshold.
	MatchFuzzy MatchKind = "fuzzy"
)

// Match is one hit produced by a MatchStrategy over a text block.
type Match struct {
	// Text is the matched phrase as it appears in the input.
	Text string

	// Canonical is the canonical name the phrase resolved to, when the
	// strategy knows one (exact/alias/fuzzy); empty for bare regex hits.
	Canonical string

	// Start and End are byte offsets of the phrase in the input text.
	Start int
	End   int

	// Confidence in [0,1].  Exact and alias matches score 1.0; regex matches
	// carry the pattern's configured confidence; fuzzy matches carry the
	// similarity ratio.
	Confidence float64

	// Kind records which strategy produced the hit.
	Kind MatchKind
}

// MatchStrategy finds occurrences of a pattern family in a text block.
// Implementations are immutable after construction and safe for concurrent
// use; all regular expressions are compiled at registry-load time.
type MatchStrategy interface {
	// FindAll returns every hit in text, in ascending Start order.
	FindAll(text string) []Match

	// Kind identifies the strategy variant.
	Kind() MatchKind
}

// ─────────────────────────────────────────────────────────────────────────────
// exact / alias strategies
// ─────────────────────────────────────────────────────────────────────────────

// phraseStrategy matches a set of literal phrases case-insensitively on
// token boundaries.  It backs both the exact and alias variants; the only
// difference is which canonical name a phrase resolves to.
type phraseStrategy struct {
	kind MatchKind
	// phrases maps the normalized phrase to its canonical name.
	phrases map[string]string
	// maxTokens is the longest phrase measured in tokens.
	maxTokens int
}

// NewExactStrategy builds a MatchExact strategy over canonical names.
func NewExactStrategy(names []string) MatchStrategy {
	phrases := make(map[string]string, len(names))
	for _, n := range names {
		phrases[NormalizeName(n)] = n
	}
	return newPhraseStrategy(MatchExact, phrases)
}

// NewAliasStrategy builds a MatchAlias strategy from alias → canonical pairs.
func NewAliasStrategy(aliases map[string]string) MatchStrategy {
	phrases := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		phrases[NormalizeName(alias)] = canonical
	}
	return newPhraseStrategy(MatchAlias, phrases)
}

func newPhraseStrategy(kind MatchKind, phrases map[string]string) MatchStrategy {
	maxTokens := 1
	for p := range phrases {
		if c := len(strings.Fields(p)); c > maxTokens {
			maxTokens = c
		}
	}
	return &phraseStrategy{kind: kind, phrases: phrases, maxTokens: maxTokens}
}

func (s *phraseStrategy) Kind() MatchKind { return s.kind }

// FindAll scans whitespace-delimited token windows, widest first, so that
// "nf1 flox/flox" wins over a bare "nf1" starting at the same token.
// Surrounding punctuation is stripped before lookup; tool names themselves
// keep +, /, - and similar interior characters.
func (s *phraseStrategy) FindAll(text string) []Match {
	if len(s.phrases) == 0 || text == "" {
		return nil
	}
	tokens := tokenizeWithOffsets(text)
	var out []Match
	for i := 0; i < len(tokens); {
		matched := false
		for width := minInt(s.maxTokens, len(tokens)-i); width >= 1; width-- {
			start := tokens[i].start
			end := tokens[i+width-1].end
			start, end = trimPunct(text, start, end)
			if start >= end {
				continue
			}
			raw := text[start:end]
			canonical, ok := s.phrases[NormalizeName(raw)]
			if !ok {
				continue
			}
			out = append(out, Match{
				Text:       raw,
				Canonical:  canonical,
				Start:      start,
				End:        end,
				Confidence: 1.0,
				Kind:       s.kind,
			})
			i += width
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return out
}

// trimPunct strips leading/trailing punctuation from the [start,end) span,
// leaving interior characters untouched.
func trimPunct(text string, start, end int) (int, int) {
	for start < end && isEdgePunct(text[start]) {
		start++
	}
	for end > start && isEdgePunct(text[end-1]) {
		end--
	}
	return start, end
}

func isEdgePunct(b byte) bool {
	switch b {
	case '(', ')', '[', ']', '{', '}', '"', '\'', '.', ',', ';', ':', '!', '?':
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// regex strategy
// ─────────────────────────────────────────────────────────────────────────────

// regexStrategy matches one compiled pattern with a fixed confidence.
type regexStrategy struct {
	re         *regexp.Regexp
	confidence float64
}

// NewRegexStrategy compiles expr into a MatchRegex strategy.  Compilation
// failure is a configuration error surfaced to the caller; extraction never
// compiles patterns.
func NewRegexStrategy(expr string, confidence float64) (MatchStrategy, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}
	return &regexStrategy{re: re, confidence: confidence}, nil
}

func (s *regexStrategy) Kind() MatchKind { return MatchRegex }

func (s *regexStrategy) FindAll(text string) []Match {
	if text == "" {
		return nil
	}
	var out []Match
	for _, idx := range s.re.FindAllStringIndex(text, -1) {
		out = append(out, Match{
			Text:       text[idx[0]:idx[1]],
			Start:      idx[0],
			End:        idx[1],
			Confidence: s.confidence,
			Kind:       MatchRegex,
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// fuzzy strategy
// ─────────────────────────────────────────────────────────────────────────────

// fuzzyStrategy compares whitespace-delimited token windows against known
// names by normalized edit similarity.
type fuzzyStrategy struct {
	// names maps normalized known names to their canonical form.
	names     map[string]string
	threshold float64
	// maxTokens is the longest known name measured in tokens; windows larger
	// than this are never candidates.
	maxTokens int
}

// NewFuzzyStrategy builds a MatchFuzzy strategy over known names with the
// given similarity threshold (0 < threshold <= 1; out-of-range values fall
// back to 0.85).
func NewFuzzyStrategy(names []string, threshold float64) MatchStrategy {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85
	}
	m := make(map[string]string, len(names))
	maxTokens := 1
	for _, n := range names {
		key := NormalizeName(n)
		m[key] = n
		if c := len(strings.Fields(key)); c > maxTokens {
			maxTokens = c
		}
	}
	return &fuzzyStrategy{names: m, threshold: threshold, maxTokens: maxTokens}
}

func (s *fuzzyStrategy) Kind() MatchKind { return MatchFuzzy }

func (s *fuzzyStrategy) FindAll(text string) []Match {
	if len(s.names) == 0 || text == "" {
		return nil
	}
	tokens := tokenizeWithOffsets(text)
	var out []Match
	for i := range tokens {
		for width := 1; width <= s.maxTokens && i+width <= len(tokens); width++ {
			start := tokens[i].start
			end := tokens[i+width-1].end
			start, end = trimPunct(text, start, end)
			if start >= end {
				continue
			}
			window := NormalizeName(text[start:end])
			if window == "" {
				continue
			}
			best, sim := s.bestMatch(window)
			if sim < s.threshold {
				continue
			}
			out = append(out, Match{
				Text:       text[start:end],
				Canonical:  best,
				Start:      start,
				End:        end,
				Confidence: sim,
				Kind:       MatchFuzzy,
			})
		}
	}
	return dedupeOverlapping(out)
}

// bestMatch returns the canonical name with the highest similarity to window.
// Known names are scanned in sorted order so the result is deterministic even
// on similarity ties.
func (s *fuzzyStrategy) bestMatch(window string) (string, float64) {
	var bestName string
	var bestSim float64
	for _, key := range sortedKeys(s.names) {
		// Cheap length pre-filter: similarity can never reach the threshold
		// if lengths diverge more than the threshold allows.
		if !lengthCompatible(window, key, s.threshold) {
			continue
		}
		sim := EditSimilarity(window, key)
		if sim > bestSim {
			bestSim = sim
			bestName = s.names[key]
		}
	}
	return bestName, bestSim
}

// EditSimilarity returns the normalized edit similarity of a and b in [0,1]:
// 1 - levenshtein(a,b)/max(len(a),len(b)).  Identical strings score 1; two
// empty strings score 1 by convention.
func EditSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}
	dist := levenshtein(ra, rb)
	max := la
	if lb > max {
		max = lb
	}
	return 1 - float64(dist)/float64(max)
}

// levenshtein computes edit distance with a single rolling row.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// lengthCompatible reports whether two strings are close enough in length to
// possibly reach the similarity threshold.
func lengthCompatible(a, b string, threshold float64) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return float64(max-diff) >= threshold*float64(max)
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

type tokenSpan struct {
	start int
	end   int
}

// tokenizeWithOffsets splits text on whitespace, keeping byte offsets.
func tokenizeWithOffsets(text string) []tokenSpan {
	var spans []tokenSpan
	inToken := false
	start := 0
	for i, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if inToken {
				spans = append(spans, tokenSpan{start: start, end: i})
				inToken = false
			}
			continue
		}
		if !inToken {
			start = i
			inToken = true
		}
	}
	if inToken {
		spans = append(spans, tokenSpan{start: start, end: len(text)})
	}
	return spans
}

// dedupeOverlapping keeps, among overlapping fuzzy hits, the one with the
// highest confidence (longest span on ties).  Input must be in ascending
// Start order; output stays sorted.
func dedupeOverlapping(matches []Match) []Match {
	if len(matches) <= 1 {
		return matches
	}
	var out []Match
	for _, m := range matches {
		if len(out) == 0 {
			out = append(out, m)
			continue
		}
		last := &out[len(out)-1]
		if m.Start >= last.End {
			out = append(out, m)
			continue
		}
		if m.Confidence > last.Confidence ||
			(m.Confidence == last.Confidence && (m.End-m.Start) > (last.End-last.Start)) {
			*last = m
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
