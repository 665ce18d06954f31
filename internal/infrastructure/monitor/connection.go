package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

// Probe is a named dependency check. Only required probes affect Healthy.
type Probe struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Check    Check
}

type Monitor struct {
	probes []Probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		probes:   probes,
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
	}
	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		logger.Error("monitor schedule rejected", zap.String("schedule", schedule), zap.Error(err))
	}
	return m
}

// Start probes once synchronously, then on every interval.
func (m *Monitor) Start() {
	m.Refresh(context.Background())
	m.cron.Start()
}

// Stop halts the schedule and waits for a running refresh or ctx.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// IsOnline reports whether every required probe passed on the last refresh.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, ok := range m.status.Services {
		services[name] = ok
	}
	return Status{Healthy: m.status.Healthy, Services: services, LastCheck: m.status.LastCheck}
}

// Refresh runs every probe and records the result.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{
		Healthy:  true,
		Services: make(map[string]bool, len(m.probes)),
	}
	for _, p := range m.probes {
		ok := m.run(ctx, p)
		status.Services[p.Name] = ok
		if !ok && p.Required {
			status.Healthy = false
		}
	}
	status.LastCheck = time.Now()

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy != status.Healthy {
		m.logger.Warn("dependency health changed", zap.Bool("healthy", status.Healthy), zap.Any("services", status.Services))
	}
}

func (m *Monitor) run(ctx context.Context, p Probe) bool {
	if p.Check == nil {
		return false
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Check(probeCtx); err != nil {
		m.logger.Debug("probe failed", zap.String("service", p.Name), zap.Error(err))
		return false
	}
	return true
}
