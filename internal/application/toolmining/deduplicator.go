package toolmining

import (
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

// Deduplicate merges candidate mentions found across multiple sections of the
// same publication into one mention per (category, normalized name) key.
//
// Among mentions sharing a key, the one with strictly greater confidence
// wins; on exact confidence ties, the one from the higher-priority section
// wins (methods > abstract > introduction).  The reduction is deterministic:
// the same input multiset yields the same output regardless of input order,
// and applying it to an already-deduplicated set is a no-op.
func Deduplicate(mentions []mention.ToolMention) map[mention.MentionKey]mention.ToolMention {
	out := make(map[mention.MentionKey]mention.ToolMention, len(mentions))
	for _, m := range mentions {
		key := m.Key()
		prev, ok := out[key]
		if !ok || betterMention(m, prev) {
			out[key] = m
		}
	}
	return out
}

// betterMention reports whether a should replace b under the dedup rules.
func betterMention(a, b mention.ToolMention) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.Section.Priority() > b.Section.Priority()
}
