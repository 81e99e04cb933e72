package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-longtask/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// RunnerSnapshotProvider provides current runner stats snapshots.
type RunnerSnapshotProvider interface {
	Stats() core.RunnerStats
}

// SnapshotPoller periodically exports runner Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	runnersMu sync.RWMutex
	runners   map[string]RunnerSnapshotProvider

	runnerPending       *prom.GaugeVec
	runnerRunning       *prom.GaugeVec
	runnerPendingTimers *prom.GaugeVec
	runnerTimersFired   *prom.GaugeVec
	runnerLongTasks     *prom.GaugeVec
	runnerRejected      *prom.GaugeVec
	runnerClosed        *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "longtask"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"runner", "type"})
	}

	p := &SnapshotPoller{
		interval:            interval,
		runners:             make(map[string]RunnerSnapshotProvider),
		runnerPending:       gauge("runner_pending", "Number of queued tasks per runner."),
		runnerRunning:       gauge("runner_running", "Number of running tasks per runner."),
		runnerPendingTimers: gauge("runner_pending_timers", "Number of armed one-shot timers per runner."),
		runnerTimersFired:   gauge("runner_timers_fired", "Runner fired timer count snapshot."),
		runnerLongTasks:     gauge("runner_long_tasks", "Runner long task count snapshot."),
		runnerRejected:      gauge("runner_rejected", "Runner rejected task count snapshot."),
		runnerClosed:        gauge("runner_closed", "Runner closed state (1=closed, 0=open)."),
	}

	var err error
	for _, vec := range []**prom.GaugeVec{
		&p.runnerPending,
		&p.runnerRunning,
		&p.runnerPendingTimers,
		&p.runnerTimersFired,
		&p.runnerLongTasks,
		&p.runnerRejected,
		&p.runnerClosed,
	} {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// AddRunner adds or replaces a runner snapshot provider by name.
func (p *SnapshotPoller) AddRunner(name string, provider RunnerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "runner")
	p.runnersMu.Lock()
	p.runners[name] = provider
	p.runnersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.runnersMu.RLock()
	defer p.runnersMu.RUnlock()

	for name, provider := range p.runners {
		stats := provider.Stats()
		typeLabel := normalizeLabel(stats.Type, "unknown")
		p.runnerPending.WithLabelValues(name, typeLabel).Set(float64(stats.Pending))
		p.runnerRunning.WithLabelValues(name, typeLabel).Set(float64(stats.Running))
		p.runnerPendingTimers.WithLabelValues(name, typeLabel).Set(float64(stats.PendingTimers))
		p.runnerTimersFired.WithLabelValues(name, typeLabel).Set(float64(stats.TimersFired))
		p.runnerLongTasks.WithLabelValues(name, typeLabel).Set(float64(stats.LongTasks))
		p.runnerRejected.WithLabelValues(name, typeLabel).Set(float64(stats.Rejected))
		if stats.Closed {
			p.runnerClosed.WithLabelValues(name, typeLabel).Set(1)
		} else {
			p.runnerClosed.WithLabelValues(name, typeLabel).Set(0)
		}
	}
}
