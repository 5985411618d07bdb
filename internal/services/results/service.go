package results

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

// NotApplicable is rendered for absent or invalid durations, never zero
const NotApplicable = "--:--.---"

// ParticipantRegistry is the roster lookup the aggregator joins against
type ParticipantRegistry interface {
	List(ctx context.Context) ([]*model.Participant, error)
}

// Service derives rankings from the event store. It is read-only and always
// computes against a snapshot of the recorded events.
type Service struct {
	storage  storage.Storage
	registry ParticipantRegistry
	logger   *slog.Logger
}

// New creates a new results service
func New(storage storage.Storage, registry ParticipantRegistry, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		registry: registry,
		logger:   logger,
	}
}

// ComputeResults computes per-participant elapsed times and rankings.
//
// Participants lacking either START or FINISH, or whose FINISH is not
// strictly after START, are silently excluded; an out-of-order timestamp is
// a data-entry or clock anomaly, not a reportable error. Segment times are
// present only when START < MID < FINISH. Ranking is by total elapsed time
// ascending; ties order by earlier START, then bib number.
func (s *Service) ComputeResults(ctx context.Context) ([]model.TimingResult, error) {
	events, err := s.storage.AllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}

	roster, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	byID := make(map[model.ParticipantID]*model.Participant, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	times := firstSeenTimes(events)

	ids := make([]model.ParticipantID, 0, len(times))
	for id := range times {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]model.TimingResult, 0, len(ids))
	for _, id := range ids {
		result, ok := s.buildResult(id, times[id])
		if !ok {
			continue
		}
		if p, found := byID[id]; found {
			result.DisplayName = p.DisplayName
			result.Team = p.Team
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalElapsed != results[j].TotalElapsed {
			return results[i].TotalElapsed < results[j].TotalElapsed
		}
		if !results[i].StartAt.Equal(results[j].StartAt) {
			return results[i].StartAt.Before(results[j].StartAt)
		}
		return results[i].ParticipantID < results[j].ParticipantID
	})

	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// ComputeTeamResults aggregates individual results by team affiliation.
// Participants racing as individuals are excluded, not treated as a team of
// one. A team's score is the mean of its members' total elapsed times.
func (s *Service) ComputeTeamResults(ctx context.Context) ([]model.TeamResult, error) {
	individual, err := s.ComputeResults(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]time.Duration)
	counts := make(map[string]int)
	for _, r := range individual {
		if r.Team == "" || r.Team == model.TeamIndividual {
			continue
		}
		totals[r.Team] += r.TotalElapsed
		counts[r.Team]++
	}

	teams := make([]model.TeamResult, 0, len(totals))
	for team, total := range totals {
		teams = append(teams, model.TeamResult{
			Team:        team,
			MemberCount: counts[team],
			Score:       total / time.Duration(counts[team]),
		})
	}

	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Score != teams[j].Score {
			return teams[i].Score < teams[j].Score
		}
		return teams[i].Team < teams[j].Team
	})

	for i := range teams {
		teams[i].Rank = i + 1
	}
	return teams, nil
}

// ParticipantTimes returns the first-seen checkpoint times recorded for one
// participant, in course order
func (s *Service) ParticipantTimes(ctx context.Context, id model.ParticipantID) ([]model.TimingEvent, error) {
	return s.storage.EventsForParticipant(ctx, id)
}

// buildResult derives one participant's TimingResult from their first-seen
// checkpoint times. Returns false when the participant has no valid result.
func (s *Service) buildResult(id model.ParticipantID, seen map[model.CheckpointKind]time.Time) (model.TimingResult, bool) {
	start, hasStart := seen[model.CheckpointStart]
	finish, hasFinish := seen[model.CheckpointFinish]
	if !hasStart || !hasFinish {
		return model.TimingResult{}, false
	}
	if !finish.After(start) {
		// Clock-skew or data-entry anomaly: no result, not an error
		s.logger.Warn("excluding participant with invalid time ordering",
			slog.String("participant_id", string(id)))
		return model.TimingResult{}, false
	}

	result := model.TimingResult{
		ParticipantID: id,
		StartAt:       start,
		FinishAt:      finish,
		TotalElapsed:  finish.Sub(start),
	}

	if mid, hasMid := seen[model.CheckpointMid]; hasMid {
		result.MidAt = mid
		if mid.After(start) && finish.After(mid) {
			result.HasSegments = true
			result.StartToMid = mid.Sub(start)
			result.MidToFinish = finish.Sub(mid)
		}
	}

	return result, true
}

// firstSeenTimes groups events by participant, keeping the earliest
// timestamp per checkpoint. The store already enforces one event per pair;
// taking the minimum guards against any duplicate that slipped through.
func firstSeenTimes(events []model.TimingEvent) map[model.ParticipantID]map[model.CheckpointKind]time.Time {
	times := make(map[model.ParticipantID]map[model.CheckpointKind]time.Time)
	for _, e := range events {
		seen := times[e.ParticipantID]
		if seen == nil {
			seen = make(map[model.CheckpointKind]time.Time)
			times[e.ParticipantID] = seen
		}
		if existing, ok := seen[e.Checkpoint]; !ok || e.RecordedAt.Before(existing) {
			seen[e.Checkpoint] = e.RecordedAt
		}
	}
	return times
}

// FormatElapsed renders an elapsed duration as MM:SS.mmm (e.g. 07:03.500).
// Non-positive durations render as the not-applicable sentinel.
func FormatElapsed(d time.Duration) string {
	if d <= 0 {
		return NotApplicable
	}
	ms := d.Milliseconds()
	minutes := ms / 60000
	rem := ms % 60000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, rem/1000, rem%1000)
}
