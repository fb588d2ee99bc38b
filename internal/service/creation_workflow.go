package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/client"
	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// ErrSubmissionInFlight is returned when a submission is already SUBMITTING.
var ErrSubmissionInFlight = errors.New("a mission submission is already in flight")

// MissionCreator creates missions on the remote service.
type MissionCreator interface {
	CreateMission(ctx context.Context, description string) (client.CreateResult, error)
}

// CreationWorkflow runs one mission submission at a time.
//
//	IDLE -> SUBMITTING -> SUCCEEDED -> IDLE (after the display window)
//	                   -> FAILED    -> IDLE (on Dismiss) or next Submit
type CreationWorkflow struct {
	creator   MissionCreator
	refresher Refresher
	window    time.Duration
	recorder  Recorder
	logger    *zap.Logger

	mu      sync.Mutex
	attempt model.CreationAttempt
	timer   *time.Timer
}

// NewCreationWorkflow creates an idle workflow. A non-positive window keeps
// SUCCEEDED showing until the next submission or Dismiss.
func NewCreationWorkflow(creator MissionCreator, refresher Refresher, window time.Duration, recorder Recorder, logger *zap.Logger) *CreationWorkflow {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CreationWorkflow{
		creator:   creator,
		refresher: refresher,
		window:    window,
		recorder:  recorder,
		logger:    logger,
		attempt: model.CreationAttempt{
			State:     model.CreationIdle,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// Attempt returns the current creation state.
func (w *CreationWorkflow) Attempt() model.CreationAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempt
}

// Submit creates a mission from description and returns the resulting state.
// A blank description fails immediately without contacting the service. On
// success an out-of-cycle refresh runs before Submit returns.
//
// Once sent, the create and its refresh run to completion even if ctx is
// cancelled; they are bounded by the gateway timeout instead.
func (w *CreationWorkflow) Submit(ctx context.Context, description string) (model.CreationAttempt, error) {
	description = strings.TrimSpace(description)

	w.mu.Lock()
	if w.attempt.State == model.CreationSubmitting {
		current := w.attempt
		w.mu.Unlock()
		return current, ErrSubmissionInFlight
	}

	w.stopTimerLocked()
	w.attempt = model.CreationAttempt{
		Attempt:   w.attempt.Attempt + 1,
		UpdatedAt: time.Now().UTC(),
	}
	id := w.attempt.Attempt

	if description == "" {
		err := apierrors.EmptyDescription()
		w.failLocked(err)
		result := w.attempt
		w.mu.Unlock()
		w.recorder.RecordCreation(model.CreationFailed)
		return result, err
	}

	w.attempt.State = model.CreationSubmitting
	w.mu.Unlock()

	w.logger.Info("submitting mission", zap.Uint64("attempt", id))

	callCtx := context.WithoutCancel(ctx)
	res, err := w.creator.CreateMission(callCtx, description)

	w.mu.Lock()
	if err != nil {
		w.failLocked(err)
		result := w.attempt
		w.mu.Unlock()

		w.logger.Warn("mission submission failed",
			zap.Uint64("attempt", id),
			zap.String("kind", string(result.ErrorKind)),
			zap.Error(err))
		w.recorder.RecordCreation(model.CreationFailed)
		return result, err
	}

	w.attempt.State = model.CreationSucceeded
	w.attempt.MissionID = res.MissionID
	w.attempt.Message = fmt.Sprintf("Mission %s... created successfully!", model.ShortID(res.MissionID))
	w.attempt.UpdatedAt = time.Now().UTC()
	if w.window > 0 {
		w.timer = time.AfterFunc(w.window, func() { w.expire(id) })
	}
	result := w.attempt
	w.mu.Unlock()

	w.logger.Info("mission created",
		zap.Uint64("attempt", id),
		zap.String("mission_id", res.MissionID),
		zap.String("status", res.Status))
	w.recorder.RecordCreation(model.CreationSucceeded)

	w.refresher.ForceRefresh(callCtx)
	return result, nil
}

// Dismiss clears a finished attempt back to IDLE. It returns false while a
// submission is in flight.
func (w *CreationWorkflow) Dismiss() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt.State == model.CreationSubmitting {
		return false
	}
	w.stopTimerLocked()
	w.resetLocked()
	return true
}

// Close stops the display window timer.
func (w *CreationWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
}

// expire returns a SUCCEEDED attempt to IDLE unless a newer attempt replaced it.
func (w *CreationWorkflow) expire(attempt uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt.Attempt != attempt || w.attempt.State != model.CreationSucceeded {
		return
	}
	w.timer = nil
	w.resetLocked()
}

func (w *CreationWorkflow) failLocked(err error) {
	w.attempt.State = model.CreationFailed
	w.attempt.MissionID = ""
	w.attempt.ErrorKind = apierrors.KindOf(err)
	w.attempt.Message = apierrors.UserMessage(err)
	w.attempt.UpdatedAt = time.Now().UTC()
}

func (w *CreationWorkflow) resetLocked() {
	w.attempt = model.CreationAttempt{
		State:     model.CreationIdle,
		Attempt:   w.attempt.Attempt,
		UpdatedAt: time.Now().UTC(),
	}
}

func (w *CreationWorkflow) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
