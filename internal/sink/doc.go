// Package sink persists the accumulated output records.
//
// Three implementations share the Sink interface: CSV and Parquet files for
// offline analysis, and a Postgres table for runs that feed the shared
// database. Absent values stay absent in every format — an empty CSV cell,
// an optional Parquet field, a SQL NULL — never a placeholder zero.
package sink
