package core

import (
	"context"
	"testing"
	"time"
)

// MockTaskRunner records posted tasks without running them.
type MockTaskRunner struct {
	PostInternalFunc func(task Task, traits TaskTraits)
	Delays           []time.Duration
}

func (m *MockTaskRunner) PostTask(task Task) {
	m.PostTaskWithTraits(task, DefaultTaskTraits())
}

func (m *MockTaskRunner) PostTaskWithTraits(task Task, traits TaskTraits) {
	if m.PostInternalFunc != nil {
		m.PostInternalFunc(task, traits)
	}
}

func (m *MockTaskRunner) PostDelayedTask(task Task, delay time.Duration) *Timer {
	return m.PostDelayedTaskWithTraits(task, delay, DefaultTaskTraits())
}

func (m *MockTaskRunner) PostDelayedTaskWithTraits(task Task, delay time.Duration, traits TaskTraits) *Timer {
	m.Delays = append(m.Delays, delay)
	return &Timer{id: GenerateTaskID(), delay: delay, runAt: time.Now().Add(delay), index: -1}
}

// TestTaskID_StringAndIsZero verifies TaskID zero-state and string behavior
// Given: A zero TaskID and a generated TaskID
// When: IsZero and String are called
// Then: Zero ID reports true and generated ID is non-zero with non-empty string
func TestTaskID_StringAndIsZero(t *testing.T) {
	// Arrange
	var zero TaskID

	// Act and Assert
	if !zero.IsZero() {
		t.Fatal("zero TaskID should report IsZero() == true")
	}

	// Act
	id := GenerateTaskID()

	// Assert
	if id.IsZero() {
		t.Fatal("generated TaskID should not be zero")
	}
	if id.String() == "" {
		t.Fatal("TaskID.String() should not be empty")
	}
	if next := GenerateTaskID(); next <= id {
		t.Fatalf("GenerateTaskID() = %v, want greater than %v", next, id)
	}
}

// TestGetCurrentTaskRunner verifies extracting task runner from context
// Given: A plain context and a context containing task runner value
// When: GetCurrentTaskRunner is called
// Then: It returns nil for plain context and the stored runner for annotated context
func TestGetCurrentTaskRunner(t *testing.T) {
	// Arrange, Act and Assert - plain context
	if got := GetCurrentTaskRunner(context.Background()); got != nil {
		t.Fatalf("GetCurrentTaskRunner(background) = %#v, want nil", got)
	}

	// Arrange
	runner := &MockTaskRunner{}
	ctx := context.WithValue(context.Background(), taskRunnerKey, runner)

	// Act and Assert
	if got := GetCurrentTaskRunner(ctx); got != runner {
		t.Fatal("GetCurrentTaskRunner(ctx) did not return the runner from context")
	}
}

// TestTraitsUserBlocking_MayBlock verifies long-task traits mark the task as blocking
func TestTraitsUserBlocking_MayBlock(t *testing.T) {
	traits := TraitsUserBlocking()
	if traits.Priority != TaskPriorityUserBlocking {
		t.Fatalf("Priority = %v, want %v", traits.Priority, TaskPriorityUserBlocking)
	}
	if !traits.MayBlock {
		t.Fatal("TraitsUserBlocking().MayBlock = false, want true")
	}
	if DefaultTaskTraits().Priority != TaskPriorityUserVisible {
		t.Fatal("DefaultTaskTraits() should be user visible")
	}
}
