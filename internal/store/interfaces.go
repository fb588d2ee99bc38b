package store

import (
	"context"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// SnapshotPublisher receives every snapshot after it is installed.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *model.MissionSnapshot) error
	Close() error
}

// Recorder receives store metrics.
type Recorder interface {
	RecordDroppedRecords(n int)
	RecordSnapshot(snap *model.MissionSnapshot)
}
