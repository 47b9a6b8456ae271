package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

type fakeSessionSource struct{ n int }

func (f *fakeSessionSource) SessionCount() int { return f.n }

func newTestServer() (*Server, *fakeSessionSource) {
	src := &fakeSessionSource{n: 3}
	return New(Config{Host: "127.0.0.1", Port: 0}, src), src
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.handleHealthz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q, want %q", w.Body.String(), "OK")
	}
}

func TestRun_SessionGaugeTracksSource(t *testing.T) {
	srv, src := newTestServer()
	src.n = 7

	ctx, cancel := context.WithCancel(context.Background())
	stop := srv.runSessionGauge(ctx)

	// Give the ticker a moment to fire at least once.
	time.Sleep(1100 * time.Millisecond)
	cancel()
	stop()

	got := gaugeValue(t, srv.metrics.sessions)
	if got != 7 {
		t.Errorf("sessions gauge = %v, want 7", got)
	}
}

func TestRun_MetricsEndpointServesPrometheusFormat(t *testing.T) {
	srv, _ := newTestServer()
	srv.metrics.sessions.Set(5)

	// The same handler Run mounts at /metrics.
	h := promhttp.HandlerFor(srv.metrics.registry, promhttp.HandlerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "pvsimd_server_sessions 5") {
		t.Errorf("body does not contain %q:\n%s", "pvsimd_server_sessions 5", w.Body.String())
	}
}

func TestRecorder_SatisfiesServerRecorder(t *testing.T) {
	srv, _ := newTestServer()
	rec := srv.Recorder()

	rec.IncCommand("GET")
	rec.IncError("UNKNOWN_PV")
	rec.ObserveTick(5 * time.Millisecond)
}

// gaugeValue extracts the current value of a prometheus.Gauge without
// requiring a full scrape round-trip.
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}
