package model

import "time"

// ParticipantID is the race/bib number that uniquely identifies a participant
type ParticipantID string

// TeamIndividual is the default affiliation for participants racing alone.
// Participants with this affiliation are excluded from team aggregation.
const TeamIndividual = "individual"

// Participant represents a registered athlete
type Participant struct {
	ID          ParticipantID
	DisplayName string
	Team        string
	CreatedAt   time.Time
}

// HasTeam reports whether the participant counts towards team results
func (p *Participant) HasTeam() bool {
	return p.Team != "" && p.Team != TeamIndividual
}

// ParticipantCredential holds authentication data for a participant
// Stored separately so the passcode hash never travels with the roster
type ParticipantCredential struct {
	ParticipantID ParticipantID
	PasscodeHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
