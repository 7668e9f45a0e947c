package search

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/graftkit/graft/internal/registry"
)

// Keyword searches catalog entries by case-folded substring matching over
// name and description. All query tokens must match (AND semantics).
// Results come back sorted by entry name.
func Keyword(entries []registry.Entry, query string, limit int) []registry.Entry {
	// cases.Fold returns a stateful Caser, so make a fresh one per call.
	fold := cases.Fold()

	tokens := tokenize(fold, query)
	if len(tokens) == 0 {
		return []registry.Entry{}
	}

	var out []registry.Entry
	for _, e := range entries {
		blob := fold.String(e.Name + "\n" + e.Description)
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tokenize(fold cases.Caser, q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = fold.String(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
