package model

import "time"

// TimingResult is a derived view of one participant's race, recomputed on
// demand from the event store and never persisted.
type TimingResult struct {
	ParticipantID ParticipantID
	DisplayName   string
	Team          string
	Rank          int

	StartAt  time.Time
	MidAt    time.Time // zero when no MID event was recorded
	FinishAt time.Time

	TotalElapsed time.Duration

	// Segment times are present only when START < MID < FINISH
	HasSegments bool
	StartToMid  time.Duration
	MidToFinish time.Duration
}

// TeamResult aggregates timing results by team affiliation
type TeamResult struct {
	Team        string
	Rank        int
	MemberCount int
	// Score is the mean of member total elapsed times
	Score time.Duration
}
