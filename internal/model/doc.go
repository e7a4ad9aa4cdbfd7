// Package model defines the shared data types for the settlement pricing
// pipeline.
//
// Conventions:
//   - Trade prices arrive from the API as integer cents (0-100) and are
//     converted to probabilities in [0,1] at the output boundary
//   - Optional values are pointers; nil means the value was never observed,
//     never a placeholder zero
//   - Timestamps are time.Time in UTC
package model
