// Package scheduler runs the periodic inventory pull against the ERP.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/infrastructure/config"
)

// defaultRunTimeout bounds one inventory pull. The ERP item list is a
// single paged call, anything longer than this means the ERP is stuck.
const defaultRunTimeout = 10 * time.Minute

// InventoryRunner executes one inventory sync pass
type InventoryRunner interface {
	SyncInventory(ctx context.Context) error
}

// InventoryScheduler triggers inventory syncs on a fixed interval.
// Overlapping runs are skipped, a slow ERP must not stack pulls.
type InventoryScheduler struct {
	enabled    bool
	interval   time.Duration
	runTimeout time.Duration
	runner     InventoryRunner
	logger     *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	wg        sync.WaitGroup
	isRunning bool
}

// NewInventoryScheduler creates a scheduler from sync configuration
func NewInventoryScheduler(cfg config.SyncConfig, runner InventoryRunner, logger *zap.Logger) *InventoryScheduler {
	interval := cfg.InventoryInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	return &InventoryScheduler{
		enabled:    cfg.InventoryEnabled,
		interval:   interval,
		runTimeout: defaultRunTimeout,
		runner:     runner,
		logger:     logger,
	}
}

// Start begins the periodic runs. The first run fires immediately rather
// than one interval after boot.
func (s *InventoryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}

	if !s.enabled {
		s.mu.Unlock()
		s.logger.Info("inventory scheduler disabled")
		return nil
	}

	cronLog := newCronLogger(s.logger)
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))
	s.entryID = s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.run))
	s.cron.Start()
	s.isRunning = true
	s.mu.Unlock()

	// Kick through the wrapped job so the overlap guard covers the
	// startup run too. The cron only waits for runs it started itself,
	// so the startup run is tracked separately.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cron.Entry(s.entryID).WrappedJob.Run()
	}()

	s.logger.Info("inventory scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("run_timeout", s.runTimeout),
	)
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish
func (s *InventoryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	c := s.cron
	s.mu.Unlock()

	stopCtx := c.Stop()
	done := make(chan struct{})
	go func() {
		<-stopCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("inventory scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("inventory scheduler stop timed out")
		return ctx.Err()
	}
}

// run executes a single inventory sync with a bounded context
func (s *InventoryScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	if err := s.runner.SyncInventory(ctx); err != nil {
		s.logger.Error("scheduled inventory sync failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return
	}

	s.logger.Info("scheduled inventory sync completed",
		zap.Duration("elapsed", time.Since(start)),
	)
}
