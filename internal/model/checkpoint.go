package model

import "time"

// CheckpointKind identifies a timing checkpoint on the course.
// The set is closed and ordered: START < MID < FINISH.
type CheckpointKind string

const (
	CheckpointStart  CheckpointKind = "START"
	CheckpointMid    CheckpointKind = "MID"
	CheckpointFinish CheckpointKind = "FINISH"
)

// AllCheckpointKinds lists the checkpoint kinds in course order
func AllCheckpointKinds() []CheckpointKind {
	return []CheckpointKind{CheckpointStart, CheckpointMid, CheckpointFinish}
}

// ParseCheckpointKind validates and converts a raw checkpoint string
func ParseCheckpointKind(s string) (CheckpointKind, error) {
	switch CheckpointKind(s) {
	case CheckpointStart, CheckpointMid, CheckpointFinish:
		return CheckpointKind(s), nil
	default:
		return "", ErrInvalidCheckpoint
	}
}

// Order returns the position of the checkpoint on the course
func (k CheckpointKind) Order() int {
	switch k {
	case CheckpointStart:
		return 0
	case CheckpointMid:
		return 1
	case CheckpointFinish:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the kind is one of the closed set
func (k CheckpointKind) Valid() bool {
	return k.Order() >= 0
}

// TimingEvent records that a participant passed a checkpoint.
// At most one event exists per (participant, checkpoint) pair; the first
// recorded timestamp is authoritative.
type TimingEvent struct {
	ParticipantID ParticipantID
	Checkpoint    CheckpointKind
	RecordedAt    time.Time
}
