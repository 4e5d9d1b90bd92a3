// Package analytics is the aggregation engine behind the dashboard API.
//
// It consumes a user's stored transaction records plus an optional filter
// and produces KPI summaries, time-bucketed series, dimension breakdowns,
// top-N rankings and period-over-period growth. Everything is computed per
// request over an already-materialized snapshot; the engine performs no I/O
// and holds no state between invocations.
//
// Division-by-zero situations in ratio computations (average ticket,
// commission rate, net margin, percentage of total, growth percent) are
// defined to yield zero, not an error. Aggregating an empty record set is a
// normal state and yields zero totals and empty collections.
package analytics
