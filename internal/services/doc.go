// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the data processing package: every
// request goes through the same cached-load, filter, aggregate sequence.
//
// # Services
//
//	- DashboardService: every dashboard view computed from the cached
//	  dataset after the request's TaskFilter has been applied
//	- ExportService: raw tables, the filtered task table and the summary
//	  workbook rendered as CSV or XLSX
//	- HealthService: liveness, readiness and data file status
//
// # Errors
//
// Services return the sentinel errors of errors.go, wrapped with context.
// Handlers map them to API errors with errors.Is.
//
// # Caching
//
// The dataset is loaded through a files.Cache keyed by the modification time
// and size of every input file, so repeated requests skip the disk and an
// edited file is picked up on the next request. Reload forces a fresh load.
package services
