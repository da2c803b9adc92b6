// Package dataprocessing turns the dashboard's input files into typed tables
// and reshapes those tables into the summaries each dashboard view displays.
//
// # Architecture
//
// The package is organized into three parts:
//
// 1. Loader: reads the CSV and Markdown inputs into a Dataset, tolerating
// missing files, mixed date formats and spreadsheet BOMs.
// 2. Filter: a conjunctive predicate over the task table.
// 3. Aggregations: independent pure functions from tables to result shapes
// (monthly volume, completion buckets, efficiency trend, matrices, networks).
//
// # Data Flow
//
//	files → Loader → Dataset → ApplyFilter → aggregation → domain result
//
// # Error Handling
//
// Nothing here is fatal. A missing or unreadable file becomes an empty table
// plus a Warning on the Dataset. Aggregations given empty input return an
// empty or zero-filled result, never an error.
//
// # Determinism
//
// Every grouping is sorted before it is returned so repeated runs over the
// same input produce identical output.
package dataprocessing
