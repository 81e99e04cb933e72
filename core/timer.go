package core

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type timerState int32

const (
	timerPending timerState = iota
	timerFiring
	timerFired
	timerCancelled
)

// Timer is a one-shot timer handle. Its callback runs at most once, no
// earlier than the requested delay.
type Timer struct {
	id       TaskID
	runAt    time.Time
	delay    time.Duration
	callback func()
	state    atomic.Int32
	queue    *TimerQueue
	index    int // for heap interface
}

// ID returns the timer identifier.
func (t *Timer) ID() TaskID { return t.id }

// Delay returns the delay the timer was scheduled with.
func (t *Timer) Delay() time.Duration { return t.delay }

// RunAt returns the earliest time the callback may run.
func (t *Timer) RunAt() time.Time { return t.runAt }

// Fired reports whether the callback has run to completion.
func (t *Timer) Fired() bool {
	return timerState(t.state.Load()) == timerFired
}

// Cancelled reports whether Cancel won against the fire.
func (t *Timer) Cancelled() bool {
	return timerState(t.state.Load()) == timerCancelled
}

// Cancel prevents a pending timer from firing. It returns true only when the
// timer was still pending; a fired or already cancelled timer is left as is.
func (t *Timer) Cancel() bool {
	if t == nil {
		return false
	}
	if !t.state.CompareAndSwap(int32(timerPending), int32(timerCancelled)) {
		return false
	}
	if t.queue != nil {
		t.queue.remove(t)
	}
	return true
}

// timerHeap implements heap.Interface
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].runAt.Equal(h[j].runAt) {
		return h[i].id < h[j].id
	}
	return h[i].runAt.Before(h[j].runAt)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	n := len(*h)
	item := x.(*Timer)
	item.index = n
	*h = append(*h, item)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *timerHeap) Peek() *Timer {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// TimerQueue owns every pending one-shot timer of a runner and a single loop
// goroutine that wakes for the earliest one.
type TimerQueue struct {
	pq     timerHeap
	mu     sync.Mutex
	wakeup chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	fired     atomic.Int64
	cancelled atomic.Int64
}

func NewTimerQueue() *TimerQueue {
	ctx, cancel := context.WithCancel(context.Background())
	tq := &TimerQueue{
		pq:     make(timerHeap, 0),
		wakeup: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	heap.Init(&tq.pq)
	go tq.loop()
	return tq
}

// Schedule arms a one-shot timer. The callback runs on the queue's loop
// goroutine, so it must only hand work off (e.g. post into a runner).
// After Stop the returned timer is already cancelled.
func (tq *TimerQueue) Schedule(callback func(), delay time.Duration) *Timer {
	if delay < 0 {
		delay = 0
	}
	t := &Timer{
		id:       GenerateTaskID(),
		runAt:    time.Now().Add(delay),
		delay:    delay,
		callback: callback,
		queue:    tq,
		index:    -1,
	}

	tq.mu.Lock()
	defer tq.mu.Unlock()

	if tq.ctx.Err() != nil {
		t.state.Store(int32(timerCancelled))
		return t
	}

	heap.Push(&tq.pq, t)

	if t.index == 0 {
		select {
		case tq.wakeup <- struct{}{}:
		default:
		}
	}
	return t
}

func (tq *TimerQueue) remove(t *Timer) {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	if t.index >= 0 && t.index < len(tq.pq) && tq.pq[t.index] == t {
		heap.Remove(&tq.pq, t.index)
	}
	tq.cancelled.Add(1)
}

func (tq *TimerQueue) loop() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		nextRun, ok := tq.calculateNextRun()
		if !ok {
			// No timers, wait indefinitely
			nextRun = 1000 * time.Hour
		}

		timer.Reset(nextRun)

		select {
		case <-tq.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			tq.fireExpired()
		case <-tq.wakeup:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// calculateNextRun returns the wait until the earliest timer; ok is false
// when nothing is pending.
func (tq *TimerQueue) calculateNextRun() (time.Duration, bool) {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	item := tq.pq.Peek()
	if item == nil {
		return 0, false
	}

	wait := time.Until(item.runAt)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (tq *TimerQueue) fireExpired() {
	tq.mu.Lock()

	now := time.Now()
	var expired []*Timer

	for tq.pq.Len() > 0 {
		item := tq.pq.Peek()
		if item.runAt.After(now) {
			break
		}
		heap.Pop(&tq.pq)
		expired = append(expired, item)
	}

	tq.mu.Unlock()

	// Dispatch outside the lock; Cancel may still race us per timer.
	for _, item := range expired {
		if !item.state.CompareAndSwap(int32(timerPending), int32(timerFiring)) {
			continue
		}
		item.callback()
		item.state.Store(int32(timerFired))
		tq.fired.Add(1)
	}
}

// Stop terminates the loop and cancels every pending timer.
func (tq *TimerQueue) Stop() {
	tq.mu.Lock()
	tq.cancel()
	pending := tq.pq
	tq.pq = make(timerHeap, 0)
	heap.Init(&tq.pq)
	tq.mu.Unlock()

	for _, t := range pending {
		if t.state.CompareAndSwap(int32(timerPending), int32(timerCancelled)) {
			tq.cancelled.Add(1)
		}
	}
}

// Pending returns the number of timers waiting to fire.
func (tq *TimerQueue) Pending() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return len(tq.pq)
}

// FiredCount returns how many timers have fired.
func (tq *TimerQueue) FiredCount() int64 { return tq.fired.Load() }

// CancelledCount returns how many timers were cancelled before firing.
func (tq *TimerQueue) CancelledCount() int64 { return tq.cancelled.Load() }
