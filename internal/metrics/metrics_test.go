package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ Recorder = (*NoopRecorder)(nil)
	_ Recorder = (*InMemoryRecorder)(nil)
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestInMemoryRecorder(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncSignup("success")
	m.IncSignup("success")
	m.IncSignin("invalid")
	m.IncRecoveryStep("verify_answer", "invalid_answer")
	m.IncAuthorizationDenied("forbidden")
	m.ObserveHTTPRequest("GET", "/healthz", 200, 3*time.Millisecond)

	snap := m.Snapshot()
	if snap.Signups["success"] != 2 {
		t.Errorf("Signups[success] = %d, want 2", snap.Signups["success"])
	}
	if snap.Signins["invalid"] != 1 {
		t.Errorf("Signins[invalid] = %d, want 1", snap.Signins["invalid"])
	}
	if snap.RecoverySteps["verify_answer/invalid_answer"] != 1 {
		t.Errorf("RecoverySteps = %v", snap.RecoverySteps)
	}
	if snap.AuthorizationDenied["forbidden"] != 1 {
		t.Errorf("AuthorizationDenied = %v", snap.AuthorizationDenied)
	}
	if snap.HTTPRequests != 1 || snap.HTTPDurationTotalNs != int64(3*time.Millisecond) {
		t.Errorf("HTTP = %d/%d", snap.HTTPRequests, snap.HTTPDurationTotalNs)
	}

	// Snapshot maps are copies.
	snap.Signups["success"] = 100
	if m.Snapshot().Signups["success"] != 2 {
		t.Error("snapshot mutation leaked into recorder")
	}
}

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	p := NewPrometheus(registry)

	p.IncSignin("success")
	p.IncSignin("success")
	p.IncRecoveryStep("reset_password", "replayed")
	p.ObserveHTTPRequest("POST", "/auth/signin", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(p.signinsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("signins_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.recoveryStepsTotal.WithLabelValues("reset_password", "replayed")); got != 1 {
		t.Errorf("recovery_steps_total = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `freshplate_http_requests_total{method="POST",route="/auth/signin",status="200"} 1`) {
		t.Errorf("exposition missing http counter:\n%s", body)
	}
}
