// Package app wires the task dashboard together and manages its lifecycle.
//
// New builds every component from a loaded configuration: telemetry, the
// dataset cache, the dashboard and export services, the WebSocket hub, the
// optional file watcher and the chi router. Nothing is started until Start.
//
// # Initialization Flow
//
//	1. Initialize OpenTelemetry providers and business metrics
//	2. Create the loader, the dataset cache and the services
//	3. Create the hub and, when data.watch is set, the file watcher
//	4. Set up the router and the HTTP server
//
// # Usage
//
//	application, err := app.New(cfg, logger, app.Options{})
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run loads the dataset once before serving so configuration problems show up
// in the log immediately, then blocks until SIGINT, SIGTERM or ctx is done.
//
// # Graceful Shutdown
//
// Stop drains in-flight requests, stops the watcher, closes WebSocket clients
// and flushes telemetry. Errors from each step are joined and returned; the
// package never calls os.Exit.
package app
