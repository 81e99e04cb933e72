package generator

import (
	"sync"
	"time"

	"github.com/Swind/go-longtask/core"
)

// Console is the diagnostic sink the generators write to: a debug banner, a
// time/timeEnd bracket and informational messages.
type Console struct {
	logger core.Logger

	mu     sync.Mutex
	timers map[string]time.Time
}

// NewConsole returns a Console over logger. A nil logger discards output.
func NewConsole(logger core.Logger) *Console {
	if logger == nil {
		logger = core.NewNoOpLogger()
	}
	return &Console{
		logger: logger,
		timers: make(map[string]time.Time),
	}
}

// Debug writes msg at debug level.
func (c *Console) Debug(msg string, fields ...core.Field) {
	c.logger.Debug(msg, fields...)
}

// Info writes msg at info level.
func (c *Console) Info(msg string, fields ...core.Field) {
	c.logger.Info(msg, fields...)
}

// Time starts a timer under label. Starting a label that is already running
// logs a warning and keeps the first start.
func (c *Console) Time(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.timers[label]; ok {
		c.logger.Warn("timer already exists", core.F("label", label))
		return
	}
	c.timers[label] = time.Now()
}

// TimeEnd stops the timer under label, logs its elapsed time and returns it.
// An unknown label logs a warning and returns 0.
func (c *Console) TimeEnd(label string) time.Duration {
	c.mu.Lock()
	start, ok := c.timers[label]
	delete(c.timers, label)
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("timer does not exist", core.F("label", label))
		return 0
	}

	elapsed := time.Since(start)
	c.logger.Info(label,
		core.F("label", label),
		core.F("elapsed", elapsed),
	)
	return elapsed
}
