package core

import (
	"errors"
	"testing"
	"time"
)

// TestSummarizeLongTasks verifies aggregate durations
// Given: Three long-task entries of 650ms, 700ms and 900ms
// When: SummarizeLongTasks is called
// Then: Count, total, mean, median and max match the inputs
func TestSummarizeLongTasks(t *testing.T) {
	// Arrange
	entries := []LongTaskEntry{
		{Duration: 650 * time.Millisecond},
		{Duration: 900 * time.Millisecond},
		{Duration: 700 * time.Millisecond},
	}

	// Act
	summary, err := SummarizeLongTasks(entries)

	// Assert
	if err != nil {
		t.Fatalf("SummarizeLongTasks failed: %v", err)
	}
	if summary.Count != 3 {
		t.Fatalf("Count = %d, want 3", summary.Count)
	}
	if summary.Total != 2250*time.Millisecond {
		t.Fatalf("Total = %v, want 2.25s", summary.Total)
	}
	if summary.Mean != 750*time.Millisecond {
		t.Fatalf("Mean = %v, want 750ms", summary.Mean)
	}
	if summary.P50 != 700*time.Millisecond {
		t.Fatalf("P50 = %v, want 700ms", summary.P50)
	}
	if summary.P95 != 900*time.Millisecond {
		t.Fatalf("P95 = %v, want 900ms", summary.P95)
	}
	if summary.Max != 900*time.Millisecond {
		t.Fatalf("Max = %v, want 900ms", summary.Max)
	}
}

// TestSummarizeLongTasks_SingleAndEmpty verifies edge inputs
func TestSummarizeLongTasks_SingleAndEmpty(t *testing.T) {
	if _, err := SummarizeLongTasks(nil); !errors.Is(err, ErrNoLongTasks) {
		t.Fatalf("SummarizeLongTasks(nil) error = %v, want ErrNoLongTasks", err)
	}

	summary, err := SummarizeLongTasks([]LongTaskEntry{{Duration: 650 * time.Millisecond}})
	if err != nil {
		t.Fatalf("SummarizeLongTasks(single) failed: %v", err)
	}
	if summary.P50 != 650*time.Millisecond || summary.P95 != 650*time.Millisecond {
		t.Fatalf("single entry percentiles = %v/%v, want 650ms", summary.P50, summary.P95)
	}
}

// TestLongTaskBuffer_KeepsMostRecent verifies the bounded buffer
func TestLongTaskBuffer_KeepsMostRecent(t *testing.T) {
	buf := newLongTaskBuffer(2)
	for i := 1; i <= 3; i++ {
		buf.Add(LongTaskEntry{TaskID: TaskID(i)})
	}

	entries := buf.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].TaskID != 2 || entries[1].TaskID != 3 {
		t.Fatalf("Entries() = %+v, want ids 2 and 3 oldest first", entries)
	}
	if buf.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", buf.Total())
	}
}
