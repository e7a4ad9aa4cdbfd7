// Package window retrieves a market's trades in a bounded look-back window
// before its close and samples prices at fixed offsets.
//
// Matching rule: for each target offset, the trade with the minimum absolute
// time distance to close−offset wins; equidistant trades resolve to the
// earlier one. There is no maximum-distance cutoff — any trade inside the
// window is eligible.
package window
