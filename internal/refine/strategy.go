package refine

import (
	"fmt"
	"strings"
)

// Strategy selects how selected terms turn into follow-up queries.
type Strategy string

const (
	// StrategyExpand broadens: each term appended to the base query.
	StrategyExpand Strategy = "expand"
	// StrategyNarrow constrains: quoted-phrase AND of base and term.
	StrategyNarrow Strategy = "narrow"
	// StrategyPivot redirects: terms replace the base query.
	StrategyPivot Strategy = "pivot"
)

// ParseStrategy maps user input to a strategy, defaulting to expand
// on blank or unrecognized input.
func ParseStrategy(input string) Strategy {
	switch Strategy(strings.ToLower(strings.TrimSpace(input))) {
	case StrategyNarrow:
		return StrategyNarrow
	case StrategyPivot:
		return StrategyPivot
	default:
		return StrategyExpand
	}
}

// BuildRefinedQueries constructs follow-up queries from the base
// query and selected terms. Expand appends each term to the base,
// plus one query appending the first two terms together. Narrow emits
// quoted-phrase AND queries. Pivot makes each term standalone, plus
// one query joining all terms. Output is deduplicated in construction
// order.
func BuildRefinedQueries(base string, terms []string, strategy Strategy) []string {
	base = strings.TrimSpace(base)
	var queries []string

	switch strategy {
	case StrategyNarrow:
		for _, t := range terms {
			queries = append(queries, fmt.Sprintf("%q %q", base, t))
		}
	case StrategyPivot:
		queries = append(queries, terms...)
		if len(terms) > 1 {
			queries = append(queries, strings.Join(terms, " "))
		}
	default:
		for _, t := range terms {
			queries = append(queries, base+" "+t)
		}
		if len(terms) >= 2 {
			queries = append(queries, base+" "+terms[0]+" "+terms[1])
		}
	}

	return dedupStrings(queries)
}

func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
