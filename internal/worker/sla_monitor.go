package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/service"
)

// SLAMonitor periodically flags tickets whose due date has passed. Breach
// detection happens here, not at read time, so a breach is observed at most
// one sweep interval after it occurs.
type SLAMonitor struct {
	sla    *service.SLAService
	cfg    config.SLAConfig
	logger *zap.Logger
}

// NewSLAMonitor constructs the monitor.
func NewSLAMonitor(sla *service.SLAService, cfg config.SLAConfig, logger *zap.Logger) *SLAMonitor {
	return &SLAMonitor{sla: sla, cfg: cfg, logger: logger}
}

// Run blocks until the context is canceled, sweeping at the configured
// interval. Intended to run in its own goroutine.
func (m *SLAMonitor) Run(ctx context.Context) {
	interval := m.cfg.SweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("sla monitor started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sla monitor stopped")
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *SLAMonitor) sweep(ctx context.Context) {
	batch := m.cfg.SweepBatchSize
	if batch <= 0 {
		batch = 500
	}
	flagged, err := m.sla.SweepBreaches(ctx, time.Now().UTC(), batch)
	if err != nil {
		m.logger.Error("breach sweep failed", zap.Error(err))
		return
	}
	if flagged > 0 {
		m.logger.Info("breach sweep flagged tickets", zap.Int("count", flagged))
	}
}
