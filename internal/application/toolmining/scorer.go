package toolmining

import (
	"strings"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

// DefaultCompletenessThreshold is the minimum filled fraction of critical
// fields applied when no threshold is configured.
const DefaultCompletenessThreshold = 0.6

// Score computes a completeness score for a classified tool record against
// its category's critical-field list.
//
// A field counts as filled when its value is present, non-empty after
// trimming, and not the literal "NULL" marker some upstream exports use for
// missing data.  A category with no critical fields is exempt: the record
// scores 100% and always passes.  The input tool is never mutated; the
// returned ScoredRecord carries its own copy of the field map.
func Score(
	tool mention.ClassifiedTool,
	fields map[string]string,
	criticalFields []string,
	minThresholdFraction float64,
) mention.ScoredRecord {
	rec := mention.ScoredRecord{
		Tool:        tool,
		Fields:      copyFields(fields),
		TotalFields: len(criticalFields),
	}

	if rec.TotalFields == 0 {
		rec.CompletenessPercentage = 100
		rec.MeetsThreshold = true
		return rec
	}

	for _, name := range criticalFields {
		if isFilled(fields[name]) {
			rec.FilledFields++
		}
	}

	fraction := float64(rec.FilledFields) / float64(rec.TotalFields)
	rec.CompletenessPercentage = fraction * 100
	rec.MeetsThreshold = fraction >= minThresholdFraction
	return rec
}

// isFilled reports whether a field value counts toward completeness.
func isFilled(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "NULL")
}

func copyFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
