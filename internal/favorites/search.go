package favorites

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"mediatasks/internal/entry"
)

// Match is a fuzzy search hit.
type Match struct {
	Entry    *entry.Entry
	Distance int
}

// Search ranks items whose title fuzzily contains query, closest first.
// Ties keep list order.
func Search(items []*entry.Entry, query string) []Match {
	if query == "" {
		out := make([]Match, len(items))
		for i, item := range items {
			out[i] = Match{Entry: item}
		}
		return out
	}
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	ranks := fuzzy.RankFindFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	out := make([]Match, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, Match{Entry: items[rank.OriginalIndex], Distance: rank.Distance})
	}
	return out
}
