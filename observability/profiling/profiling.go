// Package profiling exposes the Go profilers that observe generated long
// tasks: net/http/pprof, fgprof wall-clock profiles and the Datadog
// continuous profiler.
package profiling

import (
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/felixge/fgprof"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// Options selects which profilers are exposed or started.
type Options struct {
	Pprof  bool
	Fgprof bool
}

// RegisterHandlers mounts the selected profiling endpoints on mux.
func RegisterHandlers(mux *http.ServeMux, opts Options) {
	if opts.Pprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	if opts.Fgprof {
		mux.Handle("/debug/fgprof", fgprof.Handler())
	}
}

// DatadogOptions identifies the service in the Datadog profiler.
type DatadogOptions struct {
	Service string
	Env     string
	Version string
}

// StartDatadog starts the Datadog continuous profiler and returns its stop
// function.
func StartDatadog(opts DatadogOptions) (func(), error) {
	err := profiler.Start(
		profiler.WithService(opts.Service),
		profiler.WithEnv(opts.Env),
		profiler.WithVersion(opts.Version),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			profiler.GoroutineProfile,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start datadog profiler: %w", err)
	}
	return profiler.Stop, nil
}
