// Package domain contains the shared data contracts of the task dashboard:
// the five input entities (tasks, projects, team members, content types and
// messages), the filter accepted by every dashboard view, and the result
// shapes produced by the aggregations.
//
// All entities are read-only snapshots. Nothing in this package performs I/O.
package domain
