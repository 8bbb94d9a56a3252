// Package dev provides the development loop behind `routekit run`.
//
// This package implements:
//   - Polling file watcher over the source and static trees
//   - Single-flight scheduling of build passes
//   - Supervision of the generated backend (go run ./app)
//   - WebSocket-based browser reload
//   - Prometheus metrics for build passes
//
// # Architecture
//
//   - Watcher: polls watched directories and reports each batch of changes
//   - Scheduler: runs one pass at a time; requests made during a pass
//     collapse into one trailing pass
//   - Backend: restarts the backend process group after every successful pass
//   - ReloadServer: tells browsers to reload once the backend is up
//
// # Usage
//
//	session := dev.NewSession(dev.SessionOptions{Config: cfg})
//	if err := session.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Reload Protocol
//
// Pages rendered by the backend connect to /_routekit/reload on the reload
// port. Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "error", "error": "..."} // A pass failed
//
// The same listener serves the build metrics at /metrics.
package dev
