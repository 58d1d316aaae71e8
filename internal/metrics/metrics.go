// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Account metrics
	IncSignup(status string) // status: "success", "invalid", "error"
	IncSignin(status string) // status: "success", "invalid", "error"

	// Recovery flow metrics
	IncRecoveryStep(step, status string)

	// Authorization metrics
	IncAuthorizationDenied(kind string) // kind: "unauthorized" or "forbidden"

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
