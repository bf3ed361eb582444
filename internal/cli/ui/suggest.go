package ui

import (
	"sort"
	"strings"
)

// MaxSuggestDistance is the largest edit distance Suggest accepts
const MaxSuggestDistance = 3

// Suggest returns up to limit candidates within MaxSuggestDistance edits of
// target, closest first. Matching ignores case; ties keep candidate order.
func Suggest(target string, candidates []string, limit int) []string {
	type match struct {
		name     string
		distance int
	}

	target = strings.ToLower(target)
	var matches []match
	for _, c := range candidates {
		d := Distance(target, strings.ToLower(c))
		if d <= MaxSuggestDistance {
			matches = append(matches, match{name: c, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, limit)
	for i := 0; i < len(matches) && i < limit; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// Distance is the Levenshtein distance between a and b, counted in bytes
func Distance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	// two rolling rows of the edit matrix
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
