package model

import "time"

// MissionSnapshot is an immutable view of every known mission plus per-status
// counts. Aggregates always equal the counts of Records by status.
type MissionSnapshot struct {
	records     map[string]MissionRecord
	aggregates  map[MissionStatus]int
	generation  uint64
	refreshedAt time.Time
}

// EmptySnapshot returns the snapshot held before the first successful fetch.
func EmptySnapshot() *MissionSnapshot {
	return NewSnapshot(map[string]MissionRecord{}, 0, time.Time{})
}

// NewSnapshot takes ownership of records and derives the aggregates from them.
func NewSnapshot(records map[string]MissionRecord, generation uint64, refreshedAt time.Time) *MissionSnapshot {
	aggregates := make(map[MissionStatus]int, len(AllStatuses))
	for _, s := range AllStatuses {
		aggregates[s] = 0
	}
	for _, r := range records {
		aggregates[r.Status]++
	}
	return &MissionSnapshot{
		records:     records,
		aggregates:  aggregates,
		generation:  generation,
		refreshedAt: refreshedAt,
	}
}

// Len returns the number of missions.
func (s *MissionSnapshot) Len() int {
	return len(s.records)
}

// Get looks up a mission by ID.
func (s *MissionSnapshot) Get(id string) (MissionRecord, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Records returns a copy of the record mapping.
func (s *MissionSnapshot) Records() map[string]MissionRecord {
	out := make(map[string]MissionRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Sorted returns the records newest first.
func (s *MissionSnapshot) Sorted() []MissionRecord {
	out := make([]MissionRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	SortNewestFirst(out)
	return out
}

// Aggregates returns a copy of the per-status counts; every status is present.
func (s *MissionSnapshot) Aggregates() map[MissionStatus]int {
	out := make(map[MissionStatus]int, len(s.aggregates))
	for k, v := range s.aggregates {
		out[k] = v
	}
	return out
}

// Count returns the number of missions in the given status.
func (s *MissionSnapshot) Count(status MissionStatus) int {
	return s.aggregates[status]
}

// Generation increments on every replace; zero means never fetched.
func (s *MissionSnapshot) Generation() uint64 {
	return s.generation
}

// RefreshedAt is when the snapshot was built.
func (s *MissionSnapshot) RefreshedAt() time.Time {
	return s.refreshedAt
}

// SnapshotView is the serializable form of a snapshot.
type SnapshotView struct {
	Missions    []MissionRecord       `json:"missions" yaml:"missions"`
	Counts      map[MissionStatus]int `json:"counts" yaml:"counts"`
	Generation  uint64                `json:"generation" yaml:"generation"`
	RefreshedAt time.Time             `json:"refreshed_at" yaml:"refreshed_at"`
}

// View renders the snapshot for output.
func (s *MissionSnapshot) View() SnapshotView {
	return SnapshotView{
		Missions:    s.Sorted(),
		Counts:      s.Aggregates(),
		Generation:  s.generation,
		RefreshedAt: s.refreshedAt,
	}
}
