package model

import (
	"strconv"
	"strings"
)

// strikeSep separates the event portion of a market ticker from its strike
// suffix. Market tickers follow {SERIES}-{DATE}{HOUR}-T{STRIKE}, e.g.
// "KXBTCD-25NOV1417-T100249.99".
const strikeSep = "-T"

// EventTicker derives the parent event ticker from a market ticker by
// truncating at the strike suffix:
//
//	"KXBTCD-25NOV1417-T100249.99" -> "KXBTCD-25NOV1417"
//
// A ticker without a strike suffix is returned unchanged. All grouping
// correctness depends on this rule; see TestEventTicker for the pinned cases.
func EventTicker(marketTicker string) string {
	event, _, _ := strings.Cut(marketTicker, strikeSep)
	return event
}

// Strike parses the strike threshold from a market ticker. The second return
// is false when the ticker has no parseable strike suffix.
func Strike(marketTicker string) (float64, bool) {
	_, suffix, found := strings.Cut(marketTicker, strikeSep)
	if !found {
		return 0, false
	}
	v, err := strconv.ParseFloat(suffix, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
