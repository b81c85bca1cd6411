package panel

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the status and log refresh on two independent tickers.
// Each tick's fetch runs in its own goroutine so a slow fetch never delays
// the other timer or the next tick.
type Scheduler struct {
	statusInterval time.Duration
	logInterval    time.Duration
	statusTask     func(ctx context.Context)
	logTask        func(ctx context.Context)
	logger         *zap.Logger
	stopCh         chan struct{}
	stopOnce       sync.Once
}

func NewScheduler(statusInterval, logInterval time.Duration, statusTask, logTask func(ctx context.Context), logger *zap.Logger) *Scheduler {
	return &Scheduler{
		statusInterval: statusInterval,
		logInterval:    logInterval,
		statusTask:     statusTask,
		logTask:        logTask,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Refresh scheduler started",
		zap.Duration("status_interval", s.statusInterval),
		zap.Duration("log_interval", s.logInterval),
	)

	go s.run(ctx, "status", s.statusInterval, s.statusTask)
	go s.run(ctx, "logs", s.logInterval, s.logTask)
}

func (s *Scheduler) run(ctx context.Context, name string, interval time.Duration, task func(ctx context.Context)) {
	if interval <= 0 || task == nil {
		s.logger.Warn("Refresh timer disabled", zap.String("timer", name))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go task(ctx)
		case <-s.stopCh:
			s.logger.Debug("Refresh timer stopped", zap.String("timer", name))
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
