package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var _ NamedTaskRunner = (*MainThread)(nil)

type workItem struct {
	task   Task
	name   string
	traits TaskTraits
}

// MainThread binds a dedicated goroutine that executes tasks one at a time,
// in posting order, like a browser's main thread. A task that runs long
// blocks every other task, timer callback and load listener until it returns;
// that blocking is what the long-task generators rely on.
//
// Every task is timed. Tasks at or above the configured LongTaskThreshold are
// reported to LongTaskObservers and kept in a bounded buffer.
type MainThread struct {
	// Task queue: Buffered channel for tasks
	workQueue chan workItem
	timers    *TimerQueue

	// Lifecycle control
	ctx    context.Context
	cancel context.CancelFunc

	stopped      chan struct{}
	once         sync.Once
	closed       atomic.Bool
	shutdownChan chan struct{}
	shutdownOnce sync.Once

	name              string
	logger            Logger
	panicHandler      PanicHandler
	metrics           Metrics
	longTaskThreshold time.Duration

	observersMu sync.Mutex
	observers   []LongTaskObserver

	history   executionHistory
	longTasks *longTaskBuffer
	running   atomic.Int32
	rejected  atomic.Int64
}

// NewMainThread creates and starts a MainThread. A nil config uses
// DefaultMainThreadConfig.
func NewMainThread(config *MainThreadConfig) *MainThread {
	cfg := config.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	r := &MainThread{
		workQueue:         make(chan workItem, cfg.QueueSize),
		timers:            NewTimerQueue(),
		ctx:               ctx,
		cancel:            cancel,
		stopped:           make(chan struct{}),
		shutdownChan:      make(chan struct{}),
		name:              cfg.Name,
		logger:            cfg.Logger,
		panicHandler:      cfg.PanicHandler,
		metrics:           cfg.Metrics,
		longTaskThreshold: cfg.LongTaskThreshold,
		history:           newExecutionHistory(cfg.HistoryCapacity),
		longTasks:         newLongTaskBuffer(cfg.HistoryCapacity),
	}

	go r.runLoop()

	return r
}

// Name returns the name of the runner
func (r *MainThread) Name() string { return r.name }

// LongTaskThreshold returns the duration at which a task counts as long.
func (r *MainThread) LongTaskThreshold() time.Duration { return r.longTaskThreshold }

// AddLongTaskObserver registers o for every subsequent long task.
func (r *MainThread) AddLongTaskObserver(o LongTaskObserver) {
	if o == nil {
		return
	}
	r.observersMu.Lock()
	r.observers = append(r.observers, o)
	r.observersMu.Unlock()
}

// PostTask submits a task for execution
func (r *MainThread) PostTask(task Task) {
	r.post(workItem{task: task, traits: DefaultTaskTraits()})
}

// PostTaskWithTraits submits a task with traits. Traits label metrics only;
// execution order is always FIFO.
func (r *MainThread) PostTaskWithTraits(task Task, traits TaskTraits) {
	r.post(workItem{task: task, traits: traits})
}

// PostTaskNamed submits a task with an explicit name for history and
// long-task entries.
func (r *MainThread) PostTaskNamed(name string, task Task, traits TaskTraits) {
	r.post(workItem{task: task, name: name, traits: traits})
}

func (r *MainThread) post(item workItem) {
	if r.closed.Load() {
		r.reject("closed")
		return
	}

	select {
	case <-r.ctx.Done():
		r.reject("closed")
	case r.workQueue <- item:
		r.metrics.RecordQueueDepth(r.name, len(r.workQueue))
	}
}

// tryPost enqueues item without blocking. It reports false only when the
// queue is full; a closed runner rejects the item and reports true.
func (r *MainThread) tryPost(item workItem) bool {
	if r.closed.Load() {
		r.reject("closed")
		return true
	}
	select {
	case r.workQueue <- item:
		r.metrics.RecordQueueDepth(r.name, len(r.workQueue))
		return true
	default:
		return false
	}
}

func (r *MainThread) reject(reason string) {
	r.rejected.Add(1)
	r.metrics.RecordTaskRejected(r.name, reason)
}

// PostDelayedTask arms a one-shot timer that posts task when it fires.
func (r *MainThread) PostDelayedTask(task Task, delay time.Duration) *Timer {
	return r.PostDelayedTaskNamed("", task, delay, DefaultTaskTraits())
}

// PostDelayedTaskWithTraits arms a one-shot timer with traits.
func (r *MainThread) PostDelayedTaskWithTraits(task Task, delay time.Duration, traits TaskTraits) *Timer {
	return r.PostDelayedTaskNamed("", task, delay, traits)
}

// PostDelayedTaskNamed arms a one-shot timer for a named task. The fire only
// enqueues the task, so it runs no earlier than delay and possibly later if
// the main thread is busy. When the queue is full at fire time the task is
// handed to a goroutine that waits for room, so it may land behind tasks
// posted after the fire. The returned handle can cancel the fire.
func (r *MainThread) PostDelayedTaskNamed(name string, task Task, delay time.Duration, traits TaskTraits) *Timer {
	item := workItem{task: task, name: name, traits: traits}
	t := r.timers.Schedule(func() {
		r.metrics.RecordTimerEvent(r.name, TimerEventFired)
		// A full queue must not stall the shared timer goroutine.
		if !r.tryPost(item) {
			go r.post(item)
		}
	}, delay)

	if t.Cancelled() {
		r.reject("closed")
		return t
	}
	r.metrics.RecordTimerEvent(r.name, TimerEventScheduled)
	return t
}

// CancelTimer cancels t and records the event. It reports whether the fire
// was prevented.
func (r *MainThread) CancelTimer(t *Timer) bool {
	if !t.Cancel() {
		return false
	}
	r.metrics.RecordTimerEvent(r.name, TimerEventCancelled)
	return true
}

// Shutdown marks the runner as closed and signals shutdown waiters.
// Unlike Stop(), this method does NOT wait for the runLoop to exit,
// so tasks may call it on themselves.
//
// After calling Shutdown():
// - WaitShutdown() will return
// - IsClosed() will return true
// - New tasks and pending timers are dropped
func (r *MainThread) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.closed.Store(true)
		r.timers.Stop()
		r.cancel()
		close(r.shutdownChan)
	})
}

// IsClosed returns true if the runner has been stopped
func (r *MainThread) IsClosed() bool {
	return r.closed.Load()
}

// Stop stops the runner and waits for the task in flight to return.
func (r *MainThread) Stop() {
	r.once.Do(func() {
		r.Shutdown()
		<-r.stopped
	})
}

// runLoop is the core of this runner, it occupies a dedicated goroutine
func (r *MainThread) runLoop() {
	defer close(r.stopped)

	runCtx := context.WithValue(r.ctx, taskRunnerKey, r)

	for {
		select {
		case item := <-r.workQueue:
			r.execute(runCtx, item)
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *MainThread) execute(ctx context.Context, item workItem) {
	observed := wrapObservedTask(item.task, item.name, item.traits, r.name, r.recordExecution)

	r.running.Add(1)
	defer r.running.Add(-1)

	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.RecordTaskPanic(r.name, rec)
			r.panicHandler.HandlePanic(ctx, r.name, rec, debug.Stack())
		}
	}()
	observed(ctx)
}

func (r *MainThread) recordExecution(record TaskExecutionRecord) {
	r.history.Add(record)
	r.metrics.RecordTaskDuration(r.name, record.Priority, record.Duration)

	if record.Duration < r.longTaskThreshold {
		return
	}

	entry := LongTaskEntry{
		TaskID:     record.TaskID,
		Name:       record.Name,
		RunnerName: r.name,
		StartTime:  record.StartedAt,
		Duration:   record.Duration,
	}
	r.longTasks.Add(entry)
	r.metrics.RecordLongTask(r.name, record.Duration)
	r.logger.Debug("long task",
		F("runner", r.name),
		F("task", entry.Name),
		F("duration", entry.Duration),
	)

	r.observersMu.Lock()
	observers := make([]LongTaskObserver, len(r.observers))
	copy(observers, r.observers)
	r.observersMu.Unlock()

	for _, o := range observers {
		o.ObserveLongTask(entry)
	}
}

// =============================================================================
// Synchronization Methods
// =============================================================================

// WaitIdle blocks until all currently queued tasks have completed execution.
// This is implemented by posting a barrier task and waiting for it to execute.
//
// Note: Tasks behind pending timers are not waited for.
func (r *MainThread) WaitIdle(ctx context.Context) error {
	if r.IsClosed() {
		return fmt.Errorf("runner %s is closed", r.name)
	}

	done := make(chan struct{})
	r.PostTaskNamed("barrier", func(taskCtx context.Context) {
		close(done)
	}, TraitsBestEffort())

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FlushAsync posts callback behind every task queued so far.
func (r *MainThread) FlushAsync(callback func()) {
	r.PostTask(func(ctx context.Context) {
		callback()
	})
}

// WaitShutdown blocks until Shutdown() is called on this runner.
func (r *MainThread) WaitShutdown(ctx context.Context) error {
	select {
	case <-r.shutdownChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// Observability
// =============================================================================

// Stats returns a point-in-time snapshot of the runner.
func (r *MainThread) Stats() RunnerStats {
	stats := RunnerStats{
		Name:          r.name,
		Type:          "main_thread",
		Pending:       len(r.workQueue),
		Running:       int(r.running.Load()),
		PendingTimers: r.timers.Pending(),
		TimersFired:   r.timers.FiredCount(),
		LongTasks:     r.longTasks.Total(),
		Rejected:      r.rejected.Load(),
		Closed:        r.IsClosed(),
	}
	if last, ok := r.history.Last(); ok {
		stats.LastTaskName = last.Name
		stats.LastTaskAt = last.FinishedAt
	}
	return stats
}

// RecentTasks returns up to limit execution records, newest first.
func (r *MainThread) RecentTasks(limit int) []TaskExecutionRecord {
	return r.history.Recent(limit)
}

// LongTasks returns the buffered long-task entries, oldest first.
func (r *MainThread) LongTasks() []LongTaskEntry {
	return r.longTasks.Entries()
}
