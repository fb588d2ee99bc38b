package service

import (
	"context"

	"github.com/vaibhav-sd/MissionControlProject/internal/client"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// MissionGateway is the remote mission service as seen by the session.
type MissionGateway interface {
	CreateMission(ctx context.Context, description string) (client.CreateResult, error)
	FetchMission(ctx context.Context, id string) (model.MissionRecord, error)
	FetchAllMissions(ctx context.Context) ([]model.MissionPayload, error)
	ProbeHealth(ctx context.Context) error
}

// SnapshotReplacer installs a freshly fetched mission set.
type SnapshotReplacer interface {
	ReplaceAll(ctx context.Context, payloads []model.MissionPayload) *model.MissionSnapshot
}

// Refresher triggers an out-of-cycle sync.
type Refresher interface {
	ForceRefresh(ctx context.Context)
}

// Recorder receives scheduler and workflow metrics.
type Recorder interface {
	RecordTick(trigger string)
	RecordCreation(result model.CreationState)
}

type nopRecorder struct{}

func (nopRecorder) RecordTick(string)                  {}
func (nopRecorder) RecordCreation(model.CreationState) {}
