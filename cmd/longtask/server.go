package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Swind/go-longtask/core"
	"github.com/Swind/go-longtask/generator"
	"github.com/Swind/go-longtask/observability/profiling"
)

// newMux wires metrics, profiling and the manual-invocation endpoints. Both
// invocation endpoints run their work on the main thread and answer once it
// has returned.
func newMux(reg *prometheus.Registry, runner *core.MainThread, gen *generator.Generator, prof profiling.Options) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	profiling.RegisterHandlers(mux, prof)

	mux.HandleFunc("POST /longtask/primes", func(w http.ResponseWriter, r *http.Request) {
		result := make(chan int, 1)
		runner.PostTaskNamed("generateLongTask", func(ctx context.Context) {
			result <- gen.GenerateLongTask()
		}, core.TraitsUserBlocking())

		select {
		case count := <-result:
			writeJSON(w, http.StatusOK, map[string]any{"count": count})
		case <-r.Context().Done():
		}
	})

	mux.HandleFunc("POST /longtask/spin", func(w http.ResponseWriter, r *http.Request) {
		d := 650 * time.Millisecond
		if raw := r.URL.Query().Get("duration"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			d = parsed
		}

		done := make(chan time.Duration, 1)
		runner.PostTaskNamed("simulateLongTask", func(ctx context.Context) {
			start := time.Now()
			generator.SimulateLongTask(d)
			done <- time.Since(start)
		}, core.TraitsUserBlocking())

		select {
		case elapsed := <-done:
			writeJSON(w, http.StatusOK, map[string]any{
				"requested_ms": d.Milliseconds(),
				"elapsed_ms":   float64(elapsed.Microseconds()) / 1000,
			})
		case <-r.Context().Done():
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
