// Package health tracks whether the remote mission service is reachable.
package health

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// Reduce returns the signal that follows current after outcome.
// Transport failures mean the service is unreachable; any response at all,
// including an error status, means it is reachable. Local and cancelled
// outcomes leave the signal unchanged.
func Reduce(current model.ReachabilitySignal, outcome model.Outcome) model.ReachabilitySignal {
	switch outcome {
	case model.OutcomeTransport:
		return model.ReachabilityUnreachable
	case model.OutcomeSuccess, model.OutcomeService:
		return model.ReachabilityReachable
	default:
		return current
	}
}

// ChangeFunc is called after the signal changes.
type ChangeFunc func(from, to model.ReachabilitySignal)

// ReachabilityMonitor applies gateway outcomes to the reachability signal.
// Each call takes a sequence number when issued; an outcome is applied only
// if its sequence is newer than the last applied one, so a slow stale call
// can never overwrite fresher information.
type ReachabilityMonitor struct {
	logger *zap.Logger

	mu          sync.Mutex
	nextSeq     uint64
	lastApplied uint64
	signal      model.ReachabilitySignal
	lastChange  time.Time
	listeners   []ChangeFunc
}

// NewReachabilityMonitor creates a monitor in the PENDING state.
func NewReachabilityMonitor(logger *zap.Logger) *ReachabilityMonitor {
	return &ReachabilityMonitor{
		logger:     logger,
		signal:     model.ReachabilityPending,
		lastChange: time.Now(),
	}
}

// Begin reserves the sequence number for a call about to be issued.
func (m *ReachabilityMonitor) Begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	return m.nextSeq
}

// Complete reports the outcome of the call issued with seq.
// It returns true if the outcome was applied.
func (m *ReachabilityMonitor) Complete(seq uint64, outcome model.Outcome) bool {
	if !outcome.AffectsReachability() {
		return false
	}

	m.mu.Lock()
	if seq <= m.lastApplied {
		m.mu.Unlock()
		m.logger.Debug("discarding stale outcome",
			zap.Uint64("seq", seq),
			zap.Uint64("last_applied", m.lastApplied),
			zap.Stringer("outcome", outcome))
		return false
	}
	m.lastApplied = seq

	old := m.signal
	m.signal = Reduce(old, outcome)
	if m.signal == old {
		m.mu.Unlock()
		return true
	}
	m.lastChange = time.Now()
	current := m.signal
	listeners := make([]ChangeFunc, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger.Info("reachability changed",
		zap.Stringer("from", old),
		zap.Stringer("signal", current),
		zap.Uint64("seq", seq))

	for _, fn := range listeners {
		fn(old, current)
	}
	return true
}

// Signal returns the current reachability signal.
func (m *ReachabilityMonitor) Signal() model.ReachabilitySignal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signal
}

// LastChange returns when the signal last changed.
func (m *ReachabilityMonitor) LastChange() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastChange
}

// Subscribe registers fn to be called on every signal change.
// Listeners run on the goroutine that completed the call and must not block.
func (m *ReachabilityMonitor) Subscribe(fn ChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
