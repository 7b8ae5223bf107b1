package refine

import (
	"sort"
	"strconv"
	"strings"
)

// ParseSelection parses a comma-separated selection expression of
// 1-indexed integers and ranges ("1,3-5,7") against max. Out-of-range
// numbers are dropped, malformed tokens ignored, and the result is
// deduplicated and sorted ascending. An empty result means the input
// held no usable selection.
func ParseSelection(input string, max int) []int {
	seen := make(map[int]struct{})
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if lo, hi, ok := parseRange(token); ok {
			for i := lo; i <= hi; i++ {
				if i >= 1 && i <= max {
					seen[i] = struct{}{}
				}
			}
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if n >= 1 && n <= max {
			seen[n] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func parseRange(token string) (lo, hi int, ok bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
