package storage

import (
	"context"

	"github.com/rhale/trailtime/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Participant operations.
	// SaveParticipant fails with model.ErrParticipantExists if the ID is taken.
	SaveParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	ListParticipants(ctx context.Context) ([]*model.Participant, error)

	// Credential operations
	SaveCredential(ctx context.Context, c *model.ParticipantCredential) error
	GetCredential(ctx context.Context, id model.ParticipantID) (*model.ParticipantCredential, error)

	// Timing event operations.
	// AppendEvent fails with model.ErrDuplicateCheckpoint if an event already
	// exists for the (participant, checkpoint) pair. The check-then-write is
	// atomic with respect to concurrent appends for the same pair.
	HasEvent(ctx context.Context, id model.ParticipantID, kind model.CheckpointKind) (bool, error)
	AppendEvent(ctx context.Context, event *model.TimingEvent) error
	AllEvents(ctx context.Context) ([]model.TimingEvent, error)
	EventsForParticipant(ctx context.Context, id model.ParticipantID) ([]model.TimingEvent, error)

	// ArchiveEvents moves all recorded events out of the live dataset
	ArchiveEvents(ctx context.Context) error
}
