package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
)

// MissionStatus represents the lifecycle state of a mission as reported by the service.
type MissionStatus string

const (
	MissionQueued     MissionStatus = "QUEUED"
	MissionInProgress MissionStatus = "IN_PROGRESS"
	MissionCompleted  MissionStatus = "COMPLETED"
	MissionFailed     MissionStatus = "FAILED"
)

// AllStatuses lists every recognized status in lifecycle order.
var AllStatuses = []MissionStatus{
	MissionQueued,
	MissionInProgress,
	MissionCompleted,
	MissionFailed,
}

// String returns the string representation of the mission status.
func (s MissionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the recognized values.
func (s MissionStatus) IsValid() bool {
	switch s {
	case MissionQueued, MissionInProgress, MissionCompleted, MissionFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for COMPLETED and FAILED.
func (s MissionStatus) IsTerminal() bool {
	return s == MissionCompleted || s == MissionFailed
}

// MissionPayload is one mission as it appears on the wire, before validation.
type MissionPayload struct {
	MissionID string `json:"mission_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// MissionRecord is a validated mission.
type MissionRecord struct {
	ID          string        `json:"mission_id" yaml:"mission_id"`
	Status      MissionStatus `json:"status" yaml:"status"`
	LastUpdated time.Time     `json:"timestamp" yaml:"timestamp"`
}

// ShortID returns the first eight characters of the mission ID.
func (r MissionRecord) ShortID() string {
	return ShortID(r.ID)
}

// ShortID truncates an ID for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// timestampLayouts are tried in order. The service emits either RFC3339 or
// Python isoformat() without a zone, which is read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a service timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseRecord validates a payload and converts it to a MissionRecord.
// Errors are DataIntegrity errors naming the offending field.
func ParseRecord(p MissionPayload) (MissionRecord, error) {
	id := strings.TrimSpace(p.MissionID)
	if id == "" {
		return MissionRecord{}, apierrors.DataIntegrity("mission record has empty mission_id", nil)
	}

	status := MissionStatus(p.Status)
	if !status.IsValid() {
		return MissionRecord{}, apierrors.DataIntegrity(
			fmt.Sprintf("mission %s has unrecognized status %q", id, p.Status), nil).
			WithDetail("mission_id", id)
	}

	ts, err := ParseTimestamp(p.Timestamp)
	if err != nil {
		return MissionRecord{}, apierrors.DataIntegrity(
			fmt.Sprintf("mission %s has invalid timestamp", id), err).
			WithDetail("mission_id", id)
	}

	return MissionRecord{
		ID:          id,
		Status:      status,
		LastUpdated: ts,
	}, nil
}

// SortNewestFirst orders records by LastUpdated descending, ties broken by ID.
func SortNewestFirst(records []MissionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].LastUpdated.Equal(records[j].LastUpdated) {
			return records[i].LastUpdated.After(records[j].LastUpdated)
		}
		return records[i].ID < records[j].ID
	})
}
