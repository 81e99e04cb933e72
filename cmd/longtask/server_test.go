package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Swind/go-longtask/core"
	"github.com/Swind/go-longtask/generator"
	obs "github.com/Swind/go-longtask/observability/prometheus"
	"github.com/Swind/go-longtask/observability/profiling"
)

func newTestServer(t *testing.T) (*httptest.Server, *core.MainThread) {
	t.Helper()
	reg := prometheus.NewRegistry()
	exporter, err := obs.NewMetricsExporter("longtask", reg, obs.ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter() error = %v", err)
	}
	runner := core.NewMainThread(&core.MainThreadConfig{Name: "main", Metrics: exporter})
	t.Cleanup(runner.Stop)

	srv := httptest.NewServer(newMux(reg, runner, generator.New(nil), profiling.Options{Pprof: true}))
	t.Cleanup(srv.Close)
	return srv, runner
}

func postJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	body := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode, body
}

func TestServer_Primes(t *testing.T) {
	srv, runner := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/longtask/primes")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["count"] != float64(5133) {
		t.Fatalf("count = %v, want 5133", body["count"])
	}

	if err := runner.WaitIdle(context.Background()); err != nil {
		t.Fatalf("WaitIdle failed: %v", err)
	}
	if records := runner.RecentTasks(2); len(records) != 2 || records[1].Name != "generateLongTask" {
		t.Fatalf("RecentTasks(2) = %+v, want generateLongTask before the barrier", records)
	}
}

func TestServer_Spin(t *testing.T) {
	srv, runner := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/longtask/spin?duration=60ms")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["requested_ms"] != float64(60) {
		t.Fatalf("requested_ms = %v, want 60", body["requested_ms"])
	}
	if elapsed, _ := body["elapsed_ms"].(float64); elapsed < 60 {
		t.Fatalf("elapsed_ms = %v, want >= 60", body["elapsed_ms"])
	}
	if err := runner.WaitIdle(context.Background()); err != nil {
		t.Fatalf("WaitIdle failed: %v", err)
	}
	if got := len(runner.LongTasks()); got != 1 {
		t.Fatalf("recorded %d long tasks, want 1", got)
	}

	status, body = postJSON(t, srv.URL+"/longtask/spin?duration=soon")
	if status != http.StatusBadRequest || body["error"] == nil {
		t.Fatalf("bad duration = %d %v, want 400 with error", status, body)
	}
}

func TestServer_MetricsAndMethods(t *testing.T) {
	srv, runner := newTestServer(t)

	postJSON(t, srv.URL+"/longtask/spin?duration=55ms")
	if err := runner.WaitIdle(context.Background()); err != nil {
		t.Fatalf("WaitIdle failed: %v", err)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	text, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(text), `longtask_long_task_total{runner="main"} 1`) {
		t.Fatalf("/metrics has no long task sample:\n%s", text)
	}

	getResp, err := http.Get(srv.URL + "/longtask/primes")
	if err != nil {
		t.Fatalf("GET /longtask/primes: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", getResp.StatusCode)
	}

	pprofResp, err := http.Get(srv.URL + "/debug/pprof/")
	if err != nil {
		t.Fatalf("GET /debug/pprof/: %v", err)
	}
	pprofResp.Body.Close()
	if pprofResp.StatusCode != http.StatusOK {
		t.Fatalf("pprof status = %d, want 200", pprofResp.StatusCode)
	}
}
