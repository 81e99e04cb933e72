package core

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// Task is the unit of work (Closure)
type Task func(ctx context.Context)

// TaskID identifies a posted task for history and long-task entries.
type TaskID uint64

var taskIDCounter atomic.Uint64

// GenerateTaskID returns a process-unique, non-zero TaskID.
func GenerateTaskID() TaskID {
	return TaskID(taskIDCounter.Add(1))
}

// IsZero reports whether the id was never generated.
func (id TaskID) IsZero() bool {
	return id == 0
}

func (id TaskID) String() string {
	return "task-" + strconv.FormatUint(uint64(id), 10)
}

// =============================================================================
// TaskTraits: Define task attributes (priority, blocking behavior, etc.)
// =============================================================================

type TaskPriority int

const (
	// TaskPriorityBestEffort: Lowest priority
	TaskPriorityBestEffort TaskPriority = iota

	// TaskPriorityUserVisible: Default priority
	TaskPriorityUserVisible

	// TaskPriorityUserBlocking: Highest priority
	// `UserBlocking` means the task may block the main thread.
	// Every generated long task is posted with this priority.
	TaskPriorityUserBlocking
)

type TaskTraits struct {
	Priority TaskPriority
	MayBlock bool
	Category string
}

func DefaultTaskTraits() TaskTraits {
	return TaskTraits{Priority: TaskPriorityUserVisible}
}

func TraitsUserBlocking() TaskTraits {
	return TaskTraits{Priority: TaskPriorityUserBlocking, MayBlock: true}
}

func TraitsBestEffort() TaskTraits {
	return TaskTraits{Priority: TaskPriorityBestEffort}
}

func TraitsUserVisible() TaskTraits {
	return TaskTraits{Priority: TaskPriorityUserVisible}
}

// =============================================================================
// TaskRunner: Define task submission interface
// =============================================================================

// TaskRunner accepts immediate and delayed tasks. Delayed tasks are backed by
// one-shot timers; the returned handle can cancel the pending fire.
type TaskRunner interface {
	PostTask(task Task)
	PostTaskWithTraits(task Task, traits TaskTraits)
	PostDelayedTask(task Task, delay time.Duration) *Timer
	PostDelayedTaskWithTraits(task Task, delay time.Duration, traits TaskTraits) *Timer
}

// NamedTaskRunner is a TaskRunner whose tasks carry explicit names into
// execution history and long-task entries, and which reports when it no
// longer accepts work.
type NamedTaskRunner interface {
	TaskRunner
	PostTaskNamed(name string, task Task, traits TaskTraits)
	PostDelayedTaskNamed(name string, task Task, delay time.Duration, traits TaskTraits) *Timer
	IsClosed() bool
}

// =============================================================================
// Context Helper
// =============================================================================
type taskRunnerKeyType struct{}

var taskRunnerKey taskRunnerKeyType

func GetCurrentTaskRunner(ctx context.Context) TaskRunner {
	if v := ctx.Value(taskRunnerKey); v != nil {
		return v.(TaskRunner)
	}
	return nil
}
