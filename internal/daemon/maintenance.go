package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MaintenanceConfig tunes the daemon's idle background maintenance.
type MaintenanceConfig struct {
	// IdleTimeout is how long the daemon must be quiet before maintenance
	// runs. Default: 5m
	IdleTimeout time.Duration

	// Cooldown is the minimum gap between two maintenance runs. Default: 1h
	Cooldown time.Duration

	// CheckInterval is how often idleness is re-evaluated. Default: 30s
	CheckInterval time.Duration
}

// DefaultMaintenanceConfig returns sensible defaults.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		IdleTimeout:   5 * time.Minute,
		Cooldown:      time.Hour,
		CheckInterval: 30 * time.Second,
	}
}

// Maintainer runs one background maintenance op (the daemon passes SQLite
// optimize on the index) when it has been idle long enough.
//
// Maintenance runs when:
// 1. NotifyActivity has not been called for IdleTimeout (construction
// counts as activity)
// 2. The cooldown period since the last run has elapsed
//
// A NotifyActivity call between checks postpones the next run. The daemon
// server does not call NotifyActivity, so in the daemon the idle condition
// holds from IdleTimeout after start-up on. The maintenance op receives a
// context that is cancelled on shutdown.
type Maintainer struct {
	config MaintenanceConfig
	run    func(context.Context) error

	mu           sync.Mutex
	lastActivity time.Time
	lastRun      time.Time
	runs         int

	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewMaintainer creates a maintainer around one maintenance op. Zero-value
// config fields take defaults.
func NewMaintainer(cfg MaintenanceConfig, run func(context.Context) error) *Maintainer {
	defaults := DefaultMaintenanceConfig()
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaults.Cooldown
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaults.CheckInterval
	}
	return &Maintainer{
		config:       cfg,
		run:          run,
		lastActivity: time.Now(),
		stopCh:       make(chan struct{}),
	}
}

// NotifyActivity records that a request just arrived, postponing maintenance.
func (m *Maintainer) NotifyActivity() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// Runs returns how many maintenance passes have completed.
func (m *Maintainer) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// Start launches the background loop. It returns immediately; the loop
// stops when ctx is cancelled or Stop is called.
func (m *Maintainer) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.maybeRun(ctx)
			}
		}
	}()
}

// maybeRun executes the maintenance op if the idle and cooldown conditions hold.
func (m *Maintainer) maybeRun(ctx context.Context) {
	m.mu.Lock()
	idle := time.Since(m.lastActivity)
	sinceLast := time.Since(m.lastRun)
	due := idle >= m.config.IdleTimeout && (m.lastRun.IsZero() || sinceLast >= m.config.Cooldown)
	m.mu.Unlock()

	if !due {
		return
	}

	start := time.Now()
	if err := m.run(ctx); err != nil {
		slog.Warn("maintenance run failed", slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	m.lastRun = time.Now()
	m.runs++
	m.mu.Unlock()

	slog.Info("maintenance run completed",
		slog.Duration("took", time.Since(start)),
		slog.Duration("idle", idle))
}

// Stop halts the background loop and waits for any in-flight run.
// Safe to call multiple times.
func (m *Maintainer) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopCh)
	m.wg.Wait()
}
