package longtask

import (
	"github.com/Swind/go-longtask/core"
	"github.com/Swind/go-longtask/generator"
	"github.com/Swind/go-longtask/page"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the longtask package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// TaskTraits defines task attributes (priority, blocking behavior, etc.)
type TaskTraits = core.TaskTraits

// TaskRunner is the interface for posting tasks
type TaskRunner = core.TaskRunner

// MainThread is the single-goroutine event loop
type MainThread = core.MainThread

// MainThreadConfig configures a MainThread
type MainThreadConfig = core.MainThreadConfig

// Timer is a cancellable one-shot timer handle
type Timer = core.Timer

// LongTaskEntry describes a task that reached the long-task threshold
type LongTaskEntry = core.LongTaskEntry

// Plan is the seeded busy-wait sequence
type Plan = generator.Plan

// Document is the load gate
type Document = page.Document

// NewMainThread creates a MainThread outside the global singleton.
func NewMainThread(config *MainThreadConfig) *MainThread {
	return core.NewMainThread(config)
}

// Generator entry points.
var (
	SimulateLongTask = generator.SimulateLongTask
	GenerateLongTask = generator.GenerateLongTask
	DefaultPlan      = generator.DefaultPlan
)

// GetCurrentTaskRunner retrieves the current TaskRunner from context
var GetCurrentTaskRunner = core.GetCurrentTaskRunner
