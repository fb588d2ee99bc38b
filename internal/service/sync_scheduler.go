package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	triggerTimer  = "timer"
	triggerForced = "forced"
)

// ErrSchedulerRunning is returned by Start when the scheduler is already running.
var ErrSchedulerRunning = errors.New("sync scheduler already running")

// SyncScheduler drives the periodic refresh of the mission snapshot and the
// health probe. Every tick issues both tasks concurrently. Ticks may overlap:
// a slow tick does not delay the next one, and the store keeps whichever
// fetch completes last.
type SyncScheduler struct {
	gateway  MissionGateway
	store    SnapshotReplacer
	interval time.Duration
	recorder Recorder
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	inflight sync.WaitGroup
}

// NewSyncScheduler creates a scheduler that ticks every interval.
func NewSyncScheduler(gateway MissionGateway, store SnapshotReplacer, interval time.Duration, recorder Recorder, logger *zap.Logger) *SyncScheduler {
	if interval <= 0 {
		interval = 5 * time.Second // Default polling cadence
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SyncScheduler{
		gateway:  gateway,
		store:    store,
		interval: interval,
		recorder: recorder,
		logger:   logger,
	}
}

// Tick runs one sync cycle and waits for both tasks. Failures are logged and
// absorbed: a failed fetch leaves the current snapshot in place.
func (s *SyncScheduler) Tick(ctx context.Context) {
	s.tick(ctx, triggerTimer)
}

// ForceRefresh runs an out-of-cycle tick.
func (s *SyncScheduler) ForceRefresh(ctx context.Context) {
	s.tick(ctx, triggerForced)
}

func (s *SyncScheduler) tick(ctx context.Context, trigger string) {
	s.recorder.RecordTick(trigger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		payloads, err := s.gateway.FetchAllMissions(gctx)
		if err != nil {
			s.logger.Warn("mission fetch failed, keeping current snapshot",
				zap.String("trigger", trigger),
				zap.Error(err))
			return nil // Don't fail the errgroup
		}
		snap := s.store.ReplaceAll(gctx, payloads)
		s.logger.Debug("missions synced",
			zap.String("trigger", trigger),
			zap.Uint64("generation", snap.Generation()),
			zap.Int("missions", snap.Len()))
		return nil
	})

	g.Go(func() error {
		if err := s.gateway.ProbeHealth(gctx); err != nil {
			s.logger.Debug("health probe failed",
				zap.String("trigger", trigger),
				zap.Error(err))
		}
		return nil
	})

	g.Wait()
}

// Start runs a tick immediately and then every interval until Stop or until
// ctx is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("starting sync scheduler", zap.Duration("interval", s.interval))
	go s.run(loopCtx, s.done)
	return nil
}

func (s *SyncScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.release(done)

	// Ticks already issued finish even after Stop.
	tickCtx := context.WithoutCancel(ctx)

	s.spawn(tickCtx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.spawn(tickCtx)
		}
	}
}

// release clears the running state when the loop ends because the parent
// context did, so a later Start can run again. Stop clears it itself.
func (s *SyncScheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.cancel()
	s.cancel, s.done = nil, nil
	s.logger.Info("sync scheduler stopped: context done")
}

func (s *SyncScheduler) spawn(ctx context.Context) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.tick(ctx, triggerTimer)
	}()
}

// Stop stops the timer so no further ticks are issued. In-flight ticks keep
// running; use Wait to block until they finish. Stop is idempotent.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("sync scheduler stopped")
}

// Wait blocks until every timer-issued tick has finished.
func (s *SyncScheduler) Wait() {
	s.inflight.Wait()
}
