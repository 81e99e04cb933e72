package longtask

import (
	"context"
	"testing"
	"time"
)

// TestTypeAliases verifies the re-exported constructors and entry points
// Given: The top-level package only
// When: A MainThread is built and both generators run through it
// Then: The busy-wait is recorded as a long task and the prime count is 5133
func TestTypeAliases(t *testing.T) {
	// Arrange
	runner := NewMainThread(&MainThreadConfig{Name: "aliases", LongTaskThreshold: 10 * time.Millisecond})
	defer runner.Stop()

	var count int
	var timer *Timer

	// Act
	runner.PostTask(func(ctx context.Context) {
		SimulateLongTask(20 * time.Millisecond)
	})
	runner.PostTask(func(ctx context.Context) {
		count = GenerateLongTask()
	})
	timer = runner.PostDelayedTask(func(ctx context.Context) {}, time.Hour)

	if err := runner.WaitIdle(context.Background()); err != nil {
		t.Fatalf("WaitIdle failed: %v", err)
	}

	// Assert
	if count != 5133 {
		t.Fatalf("GenerateLongTask() = %d, want 5133", count)
	}
	var entries []LongTaskEntry = runner.LongTasks()
	if len(entries) == 0 || entries[0].Duration < 20*time.Millisecond {
		t.Fatalf("LongTasks() = %+v, want the busy-wait first", entries)
	}
	if !timer.Cancel() {
		t.Fatal("Cancel() on an hour-long timer returned false")
	}

	var plan Plan = DefaultPlan()
	if plan.Duration != 650*time.Millisecond || len(plan.Delays) != 3 {
		t.Fatalf("DefaultPlan() = %+v", plan)
	}
}
