// Package store holds the client's mission snapshot.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// SnapshotStore owns the current MissionSnapshot. Snapshots are immutable and
// swapped whole, so a reader never sees records and aggregates that disagree.
type SnapshotStore struct {
	current atomic.Pointer[model.MissionSnapshot]

	// swapMu keeps generation numbers in install order.
	swapMu     sync.Mutex
	generation uint64

	publisher SnapshotPublisher
	recorder  Recorder
	logger    *zap.Logger
}

// Option configures a SnapshotStore.
type Option func(*SnapshotStore)

// WithPublisher mirrors every installed snapshot to p.
func WithPublisher(p SnapshotPublisher) Option {
	return func(s *SnapshotStore) { s.publisher = p }
}

// WithRecorder reports store metrics to r.
func WithRecorder(r Recorder) Option {
	return func(s *SnapshotStore) { s.recorder = r }
}

// NewSnapshotStore creates a store holding the empty snapshot.
func NewSnapshotStore(logger *zap.Logger, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(model.EmptySnapshot())
	return s
}

// Snapshot returns the current snapshot.
func (s *SnapshotStore) Snapshot() *model.MissionSnapshot {
	return s.current.Load()
}

// ReplaceAll validates payloads, keeps the last occurrence of each id, and
// installs the result as the new snapshot. Invalid records are logged and
// dropped; they never fail the replace.
func (s *SnapshotStore) ReplaceAll(ctx context.Context, payloads []model.MissionPayload) *model.MissionSnapshot {
	records := make(map[string]model.MissionRecord, len(payloads))
	dropped := 0
	duplicates := 0

	for i, p := range payloads {
		rec, err := model.ParseRecord(p)
		if err != nil {
			dropped++
			s.logger.Warn("dropping invalid mission record",
				zap.Int("index", i),
				zap.String("mission_id", p.MissionID),
				zap.String("status", p.Status),
				zap.Error(err))
			continue
		}
		if _, seen := records[rec.ID]; seen {
			duplicates++
			s.logger.Warn("duplicate mission id in fetch, keeping last occurrence",
				zap.String("mission_id", rec.ID))
		}
		records[rec.ID] = rec
	}

	s.swapMu.Lock()
	s.generation++
	snap := model.NewSnapshot(records, s.generation, time.Now().UTC())
	s.current.Store(snap)
	s.swapMu.Unlock()

	s.logger.Debug("snapshot replaced",
		zap.Uint64("generation", snap.Generation()),
		zap.Int("missions", snap.Len()),
		zap.Int("dropped", dropped),
		zap.Int("duplicates", duplicates))

	if s.recorder != nil {
		s.recorder.RecordDroppedRecords(dropped)
		s.recorder.RecordSnapshot(snap)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, snap); err != nil {
			s.logger.Warn("failed to publish snapshot",
				zap.Uint64("generation", snap.Generation()),
				zap.Error(err))
		}
	}

	return snap
}

// Close releases the publisher, if any.
func (s *SnapshotStore) Close() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}
