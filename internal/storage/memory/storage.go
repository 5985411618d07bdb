package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	participants map[model.ParticipantID]*model.Participant
	credentials  map[model.ParticipantID]*model.ParticipantCredential
	events       map[eventKey]model.TimingEvent
}

type eventKey struct {
	participantID model.ParticipantID
	checkpoint    model.CheckpointKind
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants: make(map[model.ParticipantID]*model.Participant),
		credentials:  make(map[model.ParticipantID]*model.ParticipantCredential),
		events:       make(map[eventKey]model.TimingEvent),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; ok {
		return model.ErrParticipantExists
	}
	s.participants[p.ID] = p
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return p, nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participants := make([]*model.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ID < participants[j].ID
	})
	return participants, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, c *model.ParticipantCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[c.ParticipantID] = c
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, id model.ParticipantID) (*model.ParticipantCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return c, nil
}

// Timing event operations

func (s *Storage) HasEvent(ctx context.Context, id model.ParticipantID, kind model.CheckpointKind) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[eventKey{participantID: id, checkpoint: kind}]
	return ok, nil
}

func (s *Storage) AppendEvent(ctx context.Context, event *model.TimingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := eventKey{participantID: event.ParticipantID, checkpoint: event.Checkpoint}
	if _, ok := s.events[key]; ok {
		return model.ErrDuplicateCheckpoint
	}
	s.events[key] = *event
	return nil
}

func (s *Storage) AllEvents(ctx context.Context) ([]model.TimingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]model.TimingEvent, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	// Stable grouping for downstream aggregation
	sort.Slice(events, func(i, j int) bool {
		if events[i].ParticipantID != events[j].ParticipantID {
			return events[i].ParticipantID < events[j].ParticipantID
		}
		return events[i].Checkpoint.Order() < events[j].Checkpoint.Order()
	})
	return events, nil
}

func (s *Storage) EventsForParticipant(ctx context.Context, id model.ParticipantID) ([]model.TimingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []model.TimingEvent
	for key, e := range s.events {
		if key.participantID == id {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Checkpoint.Order() < events[j].Checkpoint.Order()
	})
	return events, nil
}

func (s *Storage) ArchiveEvents(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[eventKey]model.TimingEvent)
	return nil
}
