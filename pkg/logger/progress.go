package logger

import (
	"sync"
	"time"
)

// ProgressTracker logs periodic progress of long-running operations,
// typically ledger parsing over large files.
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mutex       sync.Mutex
}

// ProgressConfig configures progress tracking behavior
type ProgressConfig struct {
	Operation   string
	Total       int64
	LogInterval time.Duration
	Logger      Logger
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(config ProgressConfig) *ProgressTracker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	if config.LogInterval == 0 {
		config.LogInterval = 5 * time.Second
	}

	tracker := &ProgressTracker{
		logger:      config.Logger.WithComponent("progress"),
		operation:   config.Operation,
		total:       config.Total,
		startTime:   time.Now(),
		lastLogTime: time.Now(),
		logInterval: config.LogInterval,
	}

	tracker.logger.WithFields(Fields{
		"operation": config.Operation,
		"total":     config.Total,
	}).Info("Starting operation")

	return tracker
}

// Update advances the progress counter and logs when the interval elapsed.
func (p *ProgressTracker) Update(current int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current = current

	now := time.Now()
	if now.Sub(p.lastLogTime) < p.logInterval {
		return
	}
	p.lastLogTime = now

	fields := Fields{
		"operation": p.operation,
		"current":   p.current,
		"elapsed":   now.Sub(p.startTime).Round(time.Millisecond).String(),
	}
	if p.total > 0 {
		fields["total"] = p.total
		fields["percent"] = float64(p.current) * 100 / float64(p.total)
	}
	p.logger.WithFields(fields).Info("Operation in progress")
}

// Complete logs the final progress state.
func (p *ProgressTracker) Complete() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"elapsed":   time.Since(p.startTime).Round(time.Millisecond).String(),
	}).Info("Operation completed")
}
