package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups             map[string]uint64
	Signins             map[string]uint64
	RecoverySteps       map[string]uint64 // keyed "step/status"
	AuthorizationDenied map[string]uint64
	HTTPRequests        uint64
	HTTPDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                  sync.Mutex
	signups             map[string]uint64
	signins             map[string]uint64
	recoverySteps       map[string]uint64
	authorizationDenied map[string]uint64

	httpRequests        uint64
	httpDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		signups:             make(map[string]uint64),
		signins:             make(map[string]uint64),
		recoverySteps:       make(map[string]uint64),
		authorizationDenied: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Signups:             copyCounts(m.signups),
		Signins:             copyCounts(m.signins),
		RecoverySteps:       copyCounts(m.recoverySteps),
		AuthorizationDenied: copyCounts(m.authorizationDenied),
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
	}
}

// IncSignup increments the signup counter for status.
func (m *InMemoryRecorder) IncSignup(status string) {
	m.inc(m.signups, status)
}

// IncSignin increments the signin counter for status.
func (m *InMemoryRecorder) IncSignin(status string) {
	m.inc(m.signins, status)
}

// IncRecoveryStep increments the counter for a recovery step outcome.
func (m *InMemoryRecorder) IncRecoveryStep(step, status string) {
	m.inc(m.recoverySteps, step+"/"+status)
}

// IncAuthorizationDenied increments the denial counter for kind.
func (m *InMemoryRecorder) IncAuthorizationDenied(kind string) {
	m.inc(m.authorizationDenied, kind)
}

// ObserveHTTPRequest records one served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
