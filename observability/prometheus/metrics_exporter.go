package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-longtask/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// DefaultDurationBuckets spans sub-frame tasks up to multi-second blocks,
// with edges at the 50ms long-task threshold and the 650ms seed duration.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.016, 0.05, 0.1, 0.25, 0.5, 0.65, 1, 2.5, 5}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds     *prom.HistogramVec
	longTaskDurationSeconds *prom.HistogramVec
	longTaskTotal           *prom.CounterVec
	taskPanicTotal          *prom.CounterVec
	taskRejectedTotal       *prom.CounterVec
	timerEventsTotal        *prom.CounterVec
	queueDepth              *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "longtask"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = DefaultDurationBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Main-thread task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"runner", "priority"})
	longDurationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "long_task_duration_seconds",
		Help:      "Duration of tasks at or above the long-task threshold.",
		Buckets:   buckets,
	}, []string{"runner"})
	longTotalVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "long_task_total",
		Help:      "Total number of long tasks.",
	}, []string{"runner"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"runner"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected tasks.",
	}, []string{"runner", "reason"})
	timerVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "timer_events_total",
		Help:      "One-shot timer lifecycle events.",
	}, []string{"runner", "event"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current queue depth.",
	}, []string{"runner"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if longDurationVec, err = registerCollector(reg, longDurationVec); err != nil {
		return nil, err
	}
	if longTotalVec, err = registerCollector(reg, longTotalVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if timerVec, err = registerCollector(reg, timerVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds:     durationVec,
		longTaskDurationSeconds: longDurationVec,
		longTaskTotal:           longTotalVec,
		taskPanicTotal:          panicVec,
		taskRejectedTotal:       rejectedVec,
		timerEventsTotal:        timerVec,
		queueDepth:              queueDepthVec,
	}, nil
}

// RecordTaskDuration records task execution duration.
func (m *MetricsExporter) RecordTaskDuration(runnerName string, priority core.TaskPriority, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(runnerName, "unknown"), priorityLabel(priority)).Observe(duration.Seconds())
}

// RecordLongTask records a long task.
func (m *MetricsExporter) RecordLongTask(runnerName string, duration time.Duration) {
	if m == nil {
		return
	}
	runner := normalizeLabel(runnerName, "unknown")
	m.longTaskTotal.WithLabelValues(runner).Inc()
	m.longTaskDurationSeconds.WithLabelValues(runner).Observe(duration.Seconds())
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(runnerName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(runnerName, "unknown")).Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(runnerName string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(runnerName, "unknown")).Set(float64(depth))
}

// RecordTaskRejected records task rejection events.
func (m *MetricsExporter) RecordTaskRejected(runnerName string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(runnerName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordTimerEvent records timer lifecycle events.
func (m *MetricsExporter) RecordTimerEvent(runnerName string, event string) {
	if m == nil {
		return
	}
	m.timerEventsTotal.WithLabelValues(normalizeLabel(runnerName, "unknown"), normalizeLabel(event, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func priorityLabel(priority core.TaskPriority) string {
	switch priority {
	case core.TaskPriorityUserBlocking:
		return "user_blocking"
	case core.TaskPriorityUserVisible:
		return "user_visible"
	case core.TaskPriorityBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
