package recorder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rhale/trailtime/internal/metrics"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

// Status is the outcome of a recording attempt
type Status string

const (
	// StatusRecorded means the event was written
	StatusRecorded Status = "recorded"
	// StatusDuplicate means the pair was already recorded; the stored
	// timestamp stands
	StatusDuplicate Status = "duplicate"
)

// Record is the result of a recording attempt. For duplicates, RecordedAt
// carries the authoritative first-recorded timestamp.
type Record struct {
	ParticipantID model.ParticipantID
	Checkpoint    model.CheckpointKind
	Status        Status
	RecordedAt    time.Time
}

// ParticipantRegistry is the lookup the recorder needs from the roster
type ParticipantRegistry interface {
	Exists(ctx context.Context, id model.ParticipantID) (bool, error)
}

// Service is the sole mutating entry point for checkpoint data
type Service struct {
	storage  storage.Storage
	registry ParticipantRegistry
	logger   *slog.Logger
}

// New creates a new recorder service
func New(storage storage.Storage, registry ParticipantRegistry, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		registry: registry,
		logger:   logger,
	}
}

// Record writes one checkpoint event for a participant, exactly once per
// (participant, checkpoint) pair. A second attempt for the same pair reports
// StatusDuplicate; the stored timestamp is never overwritten.
func (s *Service) Record(ctx context.Context, id model.ParticipantID, kind model.CheckpointKind, now time.Time) (*Record, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidCheckpoint
	}

	exists, err := s.registry.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrParticipantNotFound
	}

	event := &model.TimingEvent{
		ParticipantID: id,
		Checkpoint:    kind,
		RecordedAt:    now,
	}

	err = s.storage.AppendEvent(ctx, event)
	if err == nil {
		s.logger.Info("checkpoint recorded",
			slog.String("participant_id", string(id)),
			slog.String("checkpoint", string(kind)))
		metrics.RecordCheckpoint(string(kind), string(StatusRecorded))
		return &Record{
			ParticipantID: id,
			Checkpoint:    kind,
			Status:        StatusRecorded,
			RecordedAt:    now,
		}, nil
	}

	if !errors.Is(err, model.ErrDuplicateCheckpoint) {
		return nil, err
	}

	metrics.RecordCheckpoint(string(kind), string(StatusDuplicate))
	stored, err := s.firstRecordedAt(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	s.logger.Info("duplicate checkpoint ignored",
		slog.String("participant_id", string(id)),
		slog.String("checkpoint", string(kind)))
	return &Record{
		ParticipantID: id,
		Checkpoint:    kind,
		Status:        StatusDuplicate,
		RecordedAt:    stored,
	}, nil
}

// firstRecordedAt fetches the stored timestamp for an already-recorded pair
func (s *Service) firstRecordedAt(ctx context.Context, id model.ParticipantID, kind model.CheckpointKind) (time.Time, error) {
	events, err := s.storage.EventsForParticipant(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range events {
		if e.Checkpoint == kind {
			return e.RecordedAt, nil
		}
	}
	// The append reported a duplicate, so the event must exist; reaching
	// here means the store lost it between calls
	return time.Time{}, model.ErrDuplicateCheckpoint
}
