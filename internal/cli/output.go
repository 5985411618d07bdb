package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Participant:
		o.printParticipant(v)
	case []Participant:
		o.printParticipants(v)
	case AuthResult:
		o.printAuthResult(v)
	case ScanResult:
		o.printScanResult(v)
	case StationCode:
		o.printStationCode(v)
	case []TimingResult:
		o.printTimingResults(v)
	case []TeamResult:
		o.printTeamResults(v)
	case []ParticipantTime:
		o.printParticipantTimes(v)
	case ImportResult:
		fmt.Printf("Imported %d participants\n", v.Imported)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Participant response type (matches API)
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team"`
}

// AuthResult response type
type AuthResult struct {
	SessionToken  string `json:"session_token"`
	Role          string `json:"role"`
	ParticipantID string `json:"participant_id,omitempty"`
	ExpiresAt     string `json:"expires_at"`
}

// ScanResult response type
type ScanResult struct {
	ParticipantID string `json:"participant_id"`
	Checkpoint    string `json:"checkpoint"`
	Status        string `json:"status"`
	RecordedAt    string `json:"recorded_at"`
}

// StationCode response type
type StationCode struct {
	Checkpoint       string `json:"checkpoint"`
	Token            string `json:"token"`
	URL              string `json:"url"`
	IssuedAt         string `json:"issued_at"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// TimingResult response type
type TimingResult struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Team          string `json:"team"`
	TotalElapsed  string `json:"total_elapsed"`
	StartToMid    string `json:"start_to_mid"`
	MidToFinish   string `json:"mid_to_finish"`
}

// TeamResult response type
type TeamResult struct {
	Rank        int    `json:"rank"`
	Team        string `json:"team"`
	MemberCount int    `json:"member_count"`
	Score       string `json:"score"`
}

// ParticipantTime response type
type ParticipantTime struct {
	Checkpoint string `json:"checkpoint"`
	RecordedAt string `json:"recorded_at"`
}

// ImportResult response type
type ImportResult struct {
	Imported int `json:"imported"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printParticipant(p Participant) {
	fmt.Printf("Participant: %s (%s)\n", p.DisplayName, p.ID)
	if p.Team != "" {
		fmt.Printf("Team: %s\n", p.Team)
	}
}

func (o *Output) printParticipants(ps []Participant) {
	fmt.Printf("Participants (%d):\n", len(ps))
	for _, p := range ps {
		team := p.Team
		if team == "" {
			team = "-"
		}
		fmt.Printf("  %s  %s  %s\n", p.ID, p.DisplayName, team)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Logged in as %s", a.Role)
	if a.ParticipantID != "" {
		fmt.Printf(" (%s)", a.ParticipantID)
	}
	fmt.Println()
	fmt.Printf("Session expires: %s\n", a.ExpiresAt)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printScanResult(r ScanResult) {
	fmt.Printf("Participant: %s\n", r.ParticipantID)
	fmt.Printf("Checkpoint: %s\n", r.Checkpoint)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Recorded At: %s\n", r.RecordedAt)
}

func (o *Output) printStationCode(c StationCode) {
	fmt.Printf("Checkpoint: %s\n", c.Checkpoint)
	fmt.Printf("Scan URL: %s\n", c.URL)
	fmt.Printf("Issued At: %s\n", c.IssuedAt)
	fmt.Printf("Expires In: %ds\n", c.ExpiresInSeconds)
	fmt.Printf("Token: %s\n", c.Token)
}

func (o *Output) printTimingResults(rs []TimingResult) {
	if len(rs) == 0 {
		fmt.Println("No finishers yet")
		return
	}
	fmt.Printf("%-5s %-8s %-24s %-16s %-12s %-12s %-12s\n",
		"Rank", "Bib", "Name", "Team", "Total", "Start-Mid", "Mid-Finish")
	for _, r := range rs {
		team := r.Team
		if team == "" {
			team = "-"
		}
		fmt.Printf("%-5d %-8s %-24s %-16s %-12s %-12s %-12s\n",
			r.Rank, r.ParticipantID, r.DisplayName, team,
			r.TotalElapsed, r.StartToMid, r.MidToFinish)
	}
}

func (o *Output) printTeamResults(rs []TeamResult) {
	if len(rs) == 0 {
		fmt.Println("No team results yet")
		return
	}
	fmt.Printf("%-5s %-16s %-8s %-12s\n", "Rank", "Team", "Members", "Score")
	for _, r := range rs {
		fmt.Printf("%-5d %-16s %-8d %-12s\n", r.Rank, r.Team, r.MemberCount, r.Score)
	}
}

func (o *Output) printParticipantTimes(ts []ParticipantTime) {
	if len(ts) == 0 {
		fmt.Println("No checkpoints recorded")
		return
	}
	for _, t := range ts {
		fmt.Printf("  %-8s %s\n", t.Checkpoint, t.RecordedAt)
	}
}
