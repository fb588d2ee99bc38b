package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/client"
	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	"github.com/vaibhav-sd/MissionControlProject/internal/health"
	"github.com/vaibhav-sd/MissionControlProject/internal/metrics"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/store"
)

// Session owns every component of one mission client. There is exactly one
// scheduler per session and no state outside it.
type Session struct {
	monitor   *health.ReachabilityMonitor
	gateway   *client.MissionGateway
	store     *store.SnapshotStore
	scheduler *SyncScheduler
	creation  *CreationWorkflow
	logger    *zap.Logger
}

// NewSession wires a session from cfg. When Redis is enabled the snapshot is
// mirrored there; a connection failure is an error.
func NewSession(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	m := metrics.NewMetrics()

	monitor := health.NewReachabilityMonitor(logger.Named("reachability"))
	m.SetReachability(monitor.Signal())
	monitor.Subscribe(func(_, _ model.ReachabilitySignal) {
		m.SetReachability(monitor.Signal())
	})

	gateway, err := client.NewMissionGateway(cfg.Remote, monitor, m, logger.Named("gateway"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mission gateway: %w", err)
	}

	storeOpts := []store.Option{store.WithRecorder(m)}
	if cfg.Redis.Enabled {
		pub, err := store.NewRedisSnapshotPublisher(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.KeyPrefix,
			logger.Named("redis"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create snapshot mirror: %w", err)
		}
		storeOpts = append(storeOpts, store.WithPublisher(pub))
	}
	snapshots := store.NewSnapshotStore(logger.Named("store"), storeOpts...)

	scheduler := NewSyncScheduler(gateway, snapshots, cfg.Sync.PollInterval, m, logger.Named("scheduler"))
	creation := NewCreationWorkflow(gateway, scheduler, cfg.Sync.SuccessDisplayWindow, m, logger.Named("creation"))

	return &Session{
		monitor:   monitor,
		gateway:   gateway,
		store:     snapshots,
		scheduler: scheduler,
		creation:  creation,
		logger:    logger,
	}, nil
}

// Start begins periodic synchronization.
func (s *Session) Start(ctx context.Context) error {
	return s.scheduler.Start(ctx)
}

// Stop stops the scheduler timer and waits for in-flight ticks.
func (s *Session) Stop() {
	s.scheduler.Stop()
	s.scheduler.Wait()
	s.creation.Close()
}

// Close stops the session and releases the snapshot mirror.
func (s *Session) Close() error {
	s.Stop()
	return s.store.Close()
}

// Snapshot returns the current mission snapshot.
func (s *Session) Snapshot() *model.MissionSnapshot {
	return s.store.Snapshot()
}

// Reachability returns the current reachability signal.
func (s *Session) Reachability() model.ReachabilitySignal {
	return s.monitor.Signal()
}

// Monitor exposes the reachability monitor for health endpoints.
func (s *Session) Monitor() *health.ReachabilityMonitor {
	return s.monitor
}

// CreationAttempt returns the state of the latest submission.
func (s *Session) CreationAttempt() model.CreationAttempt {
	return s.creation.Attempt()
}

// SubmitMission submits a new mission.
func (s *Session) SubmitMission(ctx context.Context, description string) (model.CreationAttempt, error) {
	return s.creation.Submit(ctx, description)
}

// DismissCreation clears the latest finished submission.
func (s *Session) DismissCreation() bool {
	return s.creation.Dismiss()
}

// ForceRefresh runs an out-of-cycle sync and returns the resulting snapshot.
func (s *Session) ForceRefresh(ctx context.Context) *model.MissionSnapshot {
	s.scheduler.ForceRefresh(ctx)
	return s.store.Snapshot()
}

// LookupMission fetches one mission directly from the service.
func (s *Session) LookupMission(ctx context.Context, id string) (model.MissionRecord, error) {
	return s.gateway.FetchMission(ctx, id)
}
