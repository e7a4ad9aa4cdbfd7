// Package pipeline drives the full extraction run:
//
//	discover settled markets -> select top strikes per event ->
//	per market: resolve outcome + sample the pre-close window ->
//	accumulate records -> flush to the sink
//
// Cancellation is cooperative. The processing loop polls the context between
// markets — never mid-request — and a cancelled run proceeds straight to the
// flush with whatever records completed, so an interrupted backfill is never
// lost. A single market's failure is logged and skipped; it cannot abort the
// run.
package pipeline
