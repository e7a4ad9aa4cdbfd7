// Package grouping selects the most liquid strikes within each hourly event.
package grouping

import (
	"sort"

	"github.com/rickgao/kalshi-analysis/internal/model"
)

// DefaultTopStrikes is the number of strikes kept per event.
const DefaultTopStrikes = 5

// SelectTop groups markets by the event id derived from their ticker, ranks
// each group by traded volume descending, and keeps the first k per event.
//
// The sort is stable: markets with equal volume keep their discovery order.
// Zero-volume markets are eligible, so an event where nothing traded still
// yields up to k rows. eventID is typically model.EventTicker.
func SelectTop(markets []model.Market, eventID func(string) string, k int) map[string][]model.Market {
	if k <= 0 {
		k = DefaultTopStrikes
	}

	groups := make(map[string][]model.Market)
	for _, m := range markets {
		id := eventID(m.Ticker)
		groups[id] = append(groups[id], m)
	}

	for id, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Volume > group[j].Volume
		})
		if len(group) > k {
			group = group[:k]
		}
		groups[id] = group
	}

	return groups
}

// EventIDs returns the group keys in lexicographic order. The pipeline
// iterates events in this order so output is deterministic across runs.
func EventIDs(groups map[string][]model.Market) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
