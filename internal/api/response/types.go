package response

import (
	"time"

	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/recorder"
	"github.com/rhale/trailtime/internal/services/results"
	"github.com/rhale/trailtime/internal/services/station"
)

// Participant represents a roster entry in API responses
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team"`
}

// ParticipantFromModel converts a model.Participant
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Team:        p.Team,
	}
}

// AuthResponse is the response for login endpoints
type AuthResponse struct {
	SessionToken  string `json:"session_token"`
	Role          string `json:"role"`
	ParticipantID string `json:"participant_id,omitempty"`
	ExpiresAt     string `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		SessionToken:  s.Token,
		Role:          string(s.Role),
		ParticipantID: string(s.ParticipantID),
		ExpiresAt:     s.ExpiresAt.Format(time.RFC3339),
	}
}

// ScanResponse is the response for checkpoint recording endpoints
type ScanResponse struct {
	ParticipantID string `json:"participant_id"`
	Checkpoint    string `json:"checkpoint"`
	Status        string `json:"status"`
	RecordedAt    string `json:"recorded_at"`
}

// ScanResponseFromRecord converts a recorder.Record
func ScanResponseFromRecord(r *recorder.Record) ScanResponse {
	return ScanResponse{
		ParticipantID: string(r.ParticipantID),
		Checkpoint:    string(r.Checkpoint),
		Status:        string(r.Status),
		RecordedAt:    r.RecordedAt.Format(time.RFC3339Nano),
	}
}

// StationCode is the response for the station display surface
type StationCode struct {
	Checkpoint       string `json:"checkpoint"`
	Token            string `json:"token"`
	URL              string `json:"url"`
	IssuedAt         string `json:"issued_at"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// StationCodeFromCode converts a station.Code
func StationCodeFromCode(c *station.Code) StationCode {
	return StationCode{
		Checkpoint:       string(c.Checkpoint),
		Token:            c.Token,
		URL:              c.URL,
		IssuedAt:         c.IssuedAt.Format(time.RFC3339),
		ExpiresInSeconds: int(c.ExpiresIn.Seconds()),
	}
}

// TimingResult represents one ranked participant
type TimingResult struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Team          string `json:"team"`
	TotalElapsed  string `json:"total_elapsed"`
	StartToMid    string `json:"start_to_mid"`
	MidToFinish   string `json:"mid_to_finish"`
}

// TimingResultFromModel converts a model.TimingResult, rendering elapsed
// times as MM:SS.mmm and absent segments as the not-applicable marker
func TimingResultFromModel(r model.TimingResult) TimingResult {
	out := TimingResult{
		Rank:          r.Rank,
		ParticipantID: string(r.ParticipantID),
		DisplayName:   r.DisplayName,
		Team:          r.Team,
		TotalElapsed:  results.FormatElapsed(r.TotalElapsed),
		StartToMid:    results.NotApplicable,
		MidToFinish:   results.NotApplicable,
	}
	if r.HasSegments {
		out.StartToMid = results.FormatElapsed(r.StartToMid)
		out.MidToFinish = results.FormatElapsed(r.MidToFinish)
	}
	return out
}

// TeamResult represents one ranked team
type TeamResult struct {
	Rank        int    `json:"rank"`
	Team        string `json:"team"`
	MemberCount int    `json:"member_count"`
	Score       string `json:"score"`
}

// TeamResultFromModel converts a model.TeamResult
func TeamResultFromModel(r model.TeamResult) TeamResult {
	return TeamResult{
		Rank:        r.Rank,
		Team:        r.Team,
		MemberCount: r.MemberCount,
		Score:       results.FormatElapsed(r.Score),
	}
}

// ParticipantTime is one recorded checkpoint in a participant's timing view
type ParticipantTime struct {
	Checkpoint string `json:"checkpoint"`
	RecordedAt string `json:"recorded_at"`
}

// ParticipantTimesFromEvents converts a participant's recorded events
func ParticipantTimesFromEvents(events []model.TimingEvent) []ParticipantTime {
	out := make([]ParticipantTime, 0, len(events))
	for _, e := range events {
		out = append(out, ParticipantTime{
			Checkpoint: string(e.Checkpoint),
			RecordedAt: e.RecordedAt.Format(time.RFC3339Nano),
		})
	}
	return out
}

// ImportResponse is the response for roster import
type ImportResponse struct {
	Imported int `json:"imported"`
}
