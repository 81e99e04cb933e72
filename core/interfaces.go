package core

import (
	"context"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context from the panicked task (may contain task runner info)
	// - runnerName: The name of the task runner where the panic occurred
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, runnerName string, panicInfo any, stackTrace []byte)
}

// LoggingPanicHandler reports panics through a Logger at error level.
type LoggingPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic value and stack.
func (h *LoggingPanicHandler) HandlePanic(ctx context.Context, runnerName string, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}
	logger.Error("task panicked",
		F("runner", runnerName),
		F("panic", panicInfo),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting main-thread execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid skewing the durations they
// measure.
type Metrics interface {
	// RecordTaskDuration records how long a task occupied the runner.
	RecordTaskDuration(runnerName string, priority TaskPriority, duration time.Duration)

	// RecordLongTask records a task whose duration reached the long-task threshold.
	RecordLongTask(runnerName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(runnerName string, panicInfo any)

	// RecordQueueDepth records the current number of queued tasks.
	RecordQueueDepth(runnerName string, depth int)

	// RecordTaskRejected records that a task was rejected (e.g., after shutdown).
	RecordTaskRejected(runnerName string, reason string)

	// RecordTimerEvent records a one-shot timer lifecycle event
	// ("scheduled", "fired" or "cancelled").
	RecordTimerEvent(runnerName string, event string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(runnerName string, priority TaskPriority, duration time.Duration) {
}
func (m *NilMetrics) RecordLongTask(runnerName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskPanic(runnerName string, panicInfo any)        {}
func (m *NilMetrics) RecordQueueDepth(runnerName string, depth int)           {}
func (m *NilMetrics) RecordTaskRejected(runnerName string, reason string)     {}
func (m *NilMetrics) RecordTimerEvent(runnerName string, event string)        {}

// Timer lifecycle event names passed to Metrics.RecordTimerEvent.
const (
	TimerEventScheduled = "scheduled"
	TimerEventFired     = "fired"
	TimerEventCancelled = "cancelled"
)

// =============================================================================
// LongTaskObserver: Interface for receiving long-task entries
// =============================================================================

// LongTaskObserver receives an entry for every task that ran at least the
// runner's long-task threshold. It is called on the runner goroutine right
// after the task returns, so it must not block.
type LongTaskObserver interface {
	ObserveLongTask(entry LongTaskEntry)
}

// LongTaskObserverFunc adapts a function to LongTaskObserver.
type LongTaskObserverFunc func(entry LongTaskEntry)

func (f LongTaskObserverFunc) ObserveLongTask(entry LongTaskEntry) { f(entry) }

// =============================================================================
// MainThreadConfig: Configuration for MainThread
// =============================================================================

// DefaultLongTaskThreshold is the duration at which browser tooling flags a
// main-thread task as long.
const DefaultLongTaskThreshold = 50 * time.Millisecond

const defaultWorkQueueSize = 100

// MainThreadConfig holds configuration options for MainThread.
// All fields are optional; zero values are replaced by defaults.
type MainThreadConfig struct {
	// Name labels logs and metrics. Defaults to "main".
	Name string

	// Logger defaults to NoOpLogger.
	Logger Logger

	// PanicHandler defaults to a LoggingPanicHandler over Logger.
	PanicHandler PanicHandler

	// Metrics defaults to NilMetrics.
	Metrics Metrics

	// LongTaskThreshold defaults to DefaultLongTaskThreshold.
	LongTaskThreshold time.Duration

	// HistoryCapacity bounds both the task history and the long-task buffer.
	HistoryCapacity int

	// QueueSize is the work channel buffer. Defaults to 100.
	QueueSize int
}

// DefaultMainThreadConfig returns a config with default handlers.
func DefaultMainThreadConfig() *MainThreadConfig {
	return &MainThreadConfig{
		Name:              "main",
		Logger:            NewNoOpLogger(),
		Metrics:           &NilMetrics{},
		LongTaskThreshold: DefaultLongTaskThreshold,
		HistoryCapacity:   defaultTaskHistoryCapacity,
		QueueSize:         defaultWorkQueueSize,
	}
}

func (c *MainThreadConfig) withDefaults() MainThreadConfig {
	out := *DefaultMainThreadConfig()
	if c == nil {
		out.PanicHandler = &LoggingPanicHandler{Logger: out.Logger}
		return out
	}
	if c.Name != "" {
		out.Name = c.Name
	}
	if c.Logger != nil {
		out.Logger = c.Logger
	}
	if c.Metrics != nil {
		out.Metrics = c.Metrics
	}
	if c.LongTaskThreshold > 0 {
		out.LongTaskThreshold = c.LongTaskThreshold
	}
	if c.HistoryCapacity > 0 {
		out.HistoryCapacity = c.HistoryCapacity
	}
	if c.QueueSize > 0 {
		out.QueueSize = c.QueueSize
	}
	out.PanicHandler = c.PanicHandler
	if out.PanicHandler == nil {
		out.PanicHandler = &LoggingPanicHandler{Logger: out.Logger}
	}
	return out
}
