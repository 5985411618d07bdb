package request

// LoginRequest is the body for POST /login
type LoginRequest struct {
	ParticipantID string `json:"participant_id"`
	Passcode      string `json:"passcode"`
}

// StaffLoginRequest is the body for POST /staff/login
type StaffLoginRequest struct {
	Key string `json:"key"`
}

// RegisterParticipantRequest is the body for POST /participants
type RegisterParticipantRequest struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Team          string `json:"team,omitempty"`
	Passcode      string `json:"passcode,omitempty"`
}

// ScanRequest is the body for POST /scan
type ScanRequest struct {
	Token string `json:"token"`
}

// ManualCheckpointRequest is the body for POST /checkpoints (staff entry).
// Timestamp is optional RFC3339; empty means "now".
type ManualCheckpointRequest struct {
	ParticipantID string `json:"participant_id"`
	Checkpoint    string `json:"checkpoint"`
	Timestamp     string `json:"timestamp,omitempty"`
}
