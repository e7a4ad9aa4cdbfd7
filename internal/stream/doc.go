// Package stream tails live trades for a set of markets over the Kalshi
// WebSocket API.
//
// It is a diagnostic companion to the historical pipeline: while a backfill
// reconstructs past trade windows, the watcher shows the same trade feed as
// it happens, which is handy for sanity-checking tickers and prices before a
// long run.
package stream
