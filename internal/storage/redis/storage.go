package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

const timeLayout = time.RFC3339Nano

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// SETNX gives create-only semantics for the uniqueness invariant
	set, err := s.client.SetNX(ctx, participantKey(p.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !set {
		return model.ErrParticipantExists
	}

	return s.client.SAdd(ctx, participantSetKey(), string(p.ID)).Err()
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	ids, err := s.client.SMembers(ctx, participantSetKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	participants := make([]*model.Participant, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetParticipant(ctx, model.ParticipantID(id))
		if err != nil {
			if errors.Is(err, model.ErrParticipantNotFound) {
				continue
			}
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, c *model.ParticipantCredential) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, credentialKey(c.ParticipantID), data, 0).Err()
}

func (s *Storage) GetCredential(ctx context.Context, id model.ParticipantID) (*model.ParticipantCredential, error) {
	data, err := s.client.Get(ctx, credentialKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var c model.ParticipantCredential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Timing event operations

func (s *Storage) HasEvent(ctx context.Context, id model.ParticipantID, kind model.CheckpointKind) (bool, error) {
	return s.client.HExists(ctx, eventsKey(id), string(kind)).Result()
}

func (s *Storage) AppendEvent(ctx context.Context, event *model.TimingEvent) error {
	// HSetNX is the atomic check-then-write: the first writer for a
	// (participant, checkpoint) pair wins, later writers see a duplicate
	set, err := s.client.HSetNX(ctx,
		eventsKey(event.ParticipantID),
		string(event.Checkpoint),
		event.RecordedAt.Format(timeLayout),
	).Result()
	if err != nil {
		return err
	}
	if !set {
		return model.ErrDuplicateCheckpoint
	}

	return s.client.SAdd(ctx, eventParticipantSetKey(), string(event.ParticipantID)).Err()
}

func (s *Storage) AllEvents(ctx context.Context) ([]model.TimingEvent, error) {
	ids, err := s.client.SMembers(ctx, eventParticipantSetKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	var events []model.TimingEvent
	for _, id := range ids {
		forParticipant, err := s.EventsForParticipant(ctx, model.ParticipantID(id))
		if err != nil {
			return nil, err
		}
		events = append(events, forParticipant...)
	}
	return events, nil
}

func (s *Storage) EventsForParticipant(ctx context.Context, id model.ParticipantID) ([]model.TimingEvent, error) {
	fields, err := s.client.HGetAll(ctx, eventsKey(id)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]model.TimingEvent, 0, len(fields))
	for field, value := range fields {
		kind, err := model.ParseCheckpointKind(field)
		if err != nil {
			return nil, fmt.Errorf("unexpected checkpoint field %q for %q: %w", field, id, err)
		}
		ts, err := time.Parse(timeLayout, value)
		if err != nil {
			return nil, fmt.Errorf("parsing %s time for %q: %w", kind, id, err)
		}
		events = append(events, model.TimingEvent{
			ParticipantID: id,
			Checkpoint:    kind,
			RecordedAt:    ts,
		})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Checkpoint.Order() < events[j].Checkpoint.Order()
	})
	return events, nil
}

// ArchiveEvents renames every live event hash into a timestamped archive
// keyspace and clears the live participant set
func (s *Storage) ArchiveEvents(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, eventParticipantSetKey()).Result()
	if err != nil {
		return err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	for _, id := range ids {
		pid := model.ParticipantID(id)
		err := s.client.Rename(ctx, eventsKey(pid), archivedEventsKey(stamp, pid)).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("archiving events for %q: %w", id, err)
		}
	}

	return s.client.Del(ctx, eventParticipantSetKey()).Err()
}
