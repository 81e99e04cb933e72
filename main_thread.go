package longtask

import (
	"sync"

	"github.com/Swind/go-longtask/core"
	"github.com/Swind/go-longtask/generator"
	"github.com/Swind/go-longtask/page"
)

// =============================================================================
// Global Main Thread Helper (Singleton)
// =============================================================================

var (
	globalMainThread *core.MainThread
	globalMu         sync.Mutex
)

// InitMainThread creates and starts the process-wide main thread. Later calls
// are no-ops until ShutdownMainThread.
func InitMainThread(config *core.MainThreadConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMainThread != nil {
		return // Already initialized
	}

	globalMainThread = core.NewMainThread(config)
}

// GetMainThread returns the process-wide main thread.
// It panics if InitMainThread has not been called.
func GetMainThread() *core.MainThread {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMainThread == nil {
		panic("MainThread not initialized. Call InitMainThread() first.")
	}
	return globalMainThread
}

// ShutdownMainThread stops the process-wide main thread.
func ShutdownMainThread() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMainThread != nil {
		globalMainThread.Stop()
		globalMainThread = nil
	}
}

// Run bootstraps the default seed plan on the process-wide main thread and
// returns the load gate and seeding handle. Call doc.Load() to fire the load
// event, or pass a loaded document to seed immediately.
func Run(doc *page.Document, console *generator.Console) *generator.Seeding {
	return generator.Bootstrap(doc, GetMainThread(), generator.DefaultPlan(), console)
}
