package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Swind/go-longtask/core"
	"github.com/Swind/go-longtask/page"
)

// Plan is the fixed sequence of busy-wait invocations seeded after load.
type Plan struct {
	// Delays are measured from the moment the seed action runs.
	Delays []time.Duration

	// Duration is how long each invocation blocks the runner.
	Duration time.Duration
}

// DefaultPlan blocks for 650ms at 1s, 4s and 8s.
func DefaultPlan() Plan {
	return Plan{
		Delays:   []time.Duration{1000 * time.Millisecond, 4000 * time.Millisecond, 8000 * time.Millisecond},
		Duration: 650 * time.Millisecond,
	}
}

// Banner is logged at debug level when Bootstrap runs.
const Banner = "long task generator bootstrap"

// SeedProfiles arms one independent one-shot timer per plan delay. Each fire
// posts a SimulateLongTask(plan.Duration) onto runner. The returned handles
// are in plan order.
func SeedProfiles(runner core.TaskRunner, plan Plan) []*core.Timer {
	timers := make([]*core.Timer, 0, len(plan.Delays))
	for i, delay := range plan.Delays {
		task := func(ctx context.Context) {
			SimulateLongTask(plan.Duration)
		}
		if named, ok := runner.(core.NamedTaskRunner); ok {
			timers = append(timers, named.PostDelayedTaskNamed(
				fmt.Sprintf("simulateLongTask#%d", i+1), task, delay, core.TraitsUserBlocking()))
			continue
		}
		timers = append(timers, runner.PostDelayedTaskWithTraits(task, delay, core.TraitsUserBlocking()))
	}
	return timers
}

// Seeding tracks the one-time seed action registered by Bootstrap.
type Seeding struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	timers []*core.Timer
}

// Done is closed once the seed action has armed its timers.
func (s *Seeding) Done() <-chan struct{} { return s.done }

// Timers returns the armed timers, or nil before Done is closed.
func (s *Seeding) Timers() []*core.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.Timer, len(s.timers))
	copy(out, s.timers)
	return out
}

// Wait blocks until the seed ran and every armed timer has fired or been
// cancelled, polling at interval.
func (s *Seeding) Wait(ctx context.Context, interval time.Duration) error {
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		settled := true
		for _, t := range s.Timers() {
			if !t.Fired() && !t.Cancelled() {
				settled = false
				break
			}
		}
		if settled {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Bootstrap logs the banner and seeds plan on runner once doc has loaded:
// immediately if doc already fired, otherwise on the load transition.
func Bootstrap(doc *page.Document, runner core.TaskRunner, plan Plan, console *Console) *Seeding {
	if console == nil {
		console = NewConsole(nil)
	}
	console.Debug(Banner, core.F("state", doc.State().String()))

	s := &Seeding{done: make(chan struct{})}
	doc.OnLoad(func() {
		s.once.Do(func() {
			timers := SeedProfiles(runner, plan)
			s.mu.Lock()
			s.timers = timers
			s.mu.Unlock()
			close(s.done)
		})
	})
	return s
}
