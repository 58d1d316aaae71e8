package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup(status string) {}

// IncSignin is a no-op.
func (n *NoopRecorder) IncSignin(status string) {}

// IncRecoveryStep is a no-op.
func (n *NoopRecorder) IncRecoveryStep(step, status string) {}

// IncAuthorizationDenied is a no-op.
func (n *NoopRecorder) IncAuthorizationDenied(kind string) {}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
