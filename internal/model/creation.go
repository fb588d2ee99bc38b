package model

import (
	"time"

	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
)

// CreationState is the phase of the current mission submission.
type CreationState string

const (
	CreationIdle       CreationState = "IDLE"
	CreationSubmitting CreationState = "SUBMITTING"
	CreationSucceeded  CreationState = "SUCCEEDED"
	CreationFailed     CreationState = "FAILED"
)

// CreationAttempt is the user-facing state of the most recent submission.
// MissionID is set only when SUCCEEDED; ErrorKind only when FAILED.
type CreationAttempt struct {
	State     CreationState  `json:"state" yaml:"state"`
	Attempt   uint64         `json:"attempt" yaml:"attempt"`
	MissionID string         `json:"mission_id,omitempty" yaml:"mission_id,omitempty"`
	Message   string         `json:"message,omitempty" yaml:"message,omitempty"`
	ErrorKind apierrors.Kind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`
}

// IsIdle reports whether no submission feedback is showing.
func (a CreationAttempt) IsIdle() bool {
	return a.State == CreationIdle
}
