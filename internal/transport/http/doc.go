// Package http implements the HTTP handlers of the task dashboard. Handlers
// stay thin: they bind and validate query parameters, call a service and
// render the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Dataset cache
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Responses
//
// Successful JSON responses share one envelope:
//
//	{"status": "success", "data": ..., "filter": {...}}
//
// Errors follow RFC 7807 Problem Details and carry the error code and the
// request ID:
//
//	{
//	    "type": "/errors/task/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Task not found",
//	    "error_code": "TASK_NOT_FOUND",
//	    "instance": "/api/tasks/99"
//	}
//
// # Filters
//
// Every dashboard, task and project endpoint accepts project, content_type,
// assigned_to, status, from and to as query parameters. "All" or an empty
// value disables a field; from and to are YYYY-MM-DD and inclusive.
package http
