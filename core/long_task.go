package core

import (
	"errors"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// LongTaskEntry describes one task that blocked the runner for at least the
// long-task threshold.
type LongTaskEntry struct {
	TaskID     TaskID
	Name       string
	RunnerName string
	StartTime  time.Time
	Duration   time.Duration
}

// longTaskBuffer keeps the most recent entries, oldest first.
type longTaskBuffer struct {
	mu      sync.Mutex
	entries []LongTaskEntry
	limit   int
	total   int64
}

func newLongTaskBuffer(limit int) *longTaskBuffer {
	if limit < 1 {
		limit = defaultTaskHistoryCapacity
	}
	return &longTaskBuffer{limit: limit}
}

func (b *longTaskBuffer) Add(entry LongTaskEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total++
	if len(b.entries) == b.limit {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:len(b.entries)-1]
	}
	b.entries = append(b.entries, entry)
}

func (b *longTaskBuffer) Entries() []LongTaskEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LongTaskEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *longTaskBuffer) Total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// ErrNoLongTasks is returned by SummarizeLongTasks for an empty input.
var ErrNoLongTasks = errors.New("no long tasks recorded")

// LongTaskSummary aggregates long-task durations.
type LongTaskSummary struct {
	Count int
	Total time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// SummarizeLongTasks computes count, mean, median, p95 and max durations.
func SummarizeLongTasks(entries []LongTaskEntry) (LongTaskSummary, error) {
	if len(entries) == 0 {
		return LongTaskSummary{}, ErrNoLongTasks
	}

	data := make(stats.Float64Data, 0, len(entries))
	for _, e := range entries {
		data = append(data, float64(e.Duration))
	}

	sum, err := data.Sum()
	if err != nil {
		return LongTaskSummary{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return LongTaskSummary{}, err
	}
	p50, err := data.PercentileNearestRank(50)
	if err != nil {
		return LongTaskSummary{}, err
	}
	p95, err := data.PercentileNearestRank(95)
	if err != nil {
		return LongTaskSummary{}, err
	}
	maxDur, err := data.Max()
	if err != nil {
		return LongTaskSummary{}, err
	}

	return LongTaskSummary{
		Count: len(entries),
		Total: time.Duration(sum),
		Mean:  time.Duration(mean),
		P50:   time.Duration(p50),
		P95:   time.Duration(p95),
		Max:   time.Duration(maxDur),
	}, nil
}
