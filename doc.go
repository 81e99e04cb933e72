// Package longtask generates deliberately long main-thread tasks so that
// profilers have something to observe.
//
// Two independent generators are provided:
//
//   - SimulateLongTask busy-waits on the monotonic clock for a duration.
//   - GenerateLongTask counts the primes below 50000 by trial division and
//     logs a timing bracket and the count.
//
// Tasks run on a MainThread, a single dedicated goroutine that executes one
// task at a time, so a long task blocks every timer callback and load
// listener queued behind it. The default plan seeds three 650ms busy-waits at
// 1s, 4s and 8s after the document loads.
//
// # Quick Start
//
//	longtask.InitMainThread(nil)
//	defer longtask.ShutdownMainThread()
//
//	doc := page.NewDocument(longtask.GetMainThread())
//	seeding := longtask.Run(doc, generator.NewConsole(core.NewDefaultLogger()))
//	doc.Load()
//
//	_ = seeding.Wait(context.Background(), 50*time.Millisecond)
//
// Long tasks are reported through core.LongTaskObserver and core.Metrics;
// observability/prometheus exports them and observability/profiling mounts
// pprof and fgprof handlers.
package longtask
