package core

import "time"

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	TaskID     TaskID
	Name       string
	RunnerName string
	Priority   TaskPriority
	Category   string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

// RunnerStats represents runtime observability state for a MainThread.
type RunnerStats struct {
	Name          string
	Type          string
	Pending       int
	Running       int
	PendingTimers int
	TimersFired   int64
	LongTasks     int64
	Rejected      int64
	Closed        bool
	LastTaskName  string
	LastTaskAt    time.Time
}
