package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

// File names inside the data directory. The timing file keeps the one-row-
// per-athlete column layout of the original spreadsheet exports.
const (
	athletesFile    = "athletes.csv"
	credentialsFile = "credentials.csv"
	timingFile      = "timing.csv"
)

const timeLayout = time.RFC3339Nano

// Storage is a flat-file implementation of the storage interface.
// All state is held in memory and flushed to CSV on every write; the mutex
// serialises the read-modify-write cycle so concurrent appends stay safe.
type Storage struct {
	mu  sync.RWMutex
	dir string

	participants map[model.ParticipantID]*model.Participant
	credentials  map[model.ParticipantID]*model.ParticipantCredential
	events       map[eventKey]model.TimingEvent
}

type eventKey struct {
	participantID model.ParticipantID
	checkpoint    model.CheckpointKind
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens (or initialises) a file storage rooted at dir
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	s := &Storage{
		dir:          dir,
		participants: make(map[model.ParticipantID]*model.Participant),
		credentials:  make(map[model.ParticipantID]*model.ParticipantCredential),
		events:       make(map[eventKey]model.TimingEvent),
	}

	if err := s.loadParticipants(); err != nil {
		return nil, err
	}
	if err := s.loadCredentials(); err != nil {
		return nil, err
	}
	if err := s.loadEvents(); err != nil {
		return nil, err
	}

	return s, nil
}

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; ok {
		return model.ErrParticipantExists
	}
	s.participants[p.ID] = p
	return s.flushParticipants()
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
	return s.flushCredentials()
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
	return s.flushEvents()
}

func (s *Storage) AllEvents(ctx context.Context) ([]model.TimingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]model.TimingEvent, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
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

// ArchiveEvents renames the live timing file to a timestamped archive and
// starts a fresh one
func (s *Storage) ArchiveEvents(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, timingFile)
	if _, err := os.Stat(path); err == nil {
		stamp := time.Now().UTC().Format("20060102-150405")
		archive := filepath.Join(s.dir, fmt.Sprintf("timing-%s.csv", stamp))
		if err := os.Rename(path, archive); err != nil {
			return fmt.Errorf("archiving timing file: %w", err)
		}
	}

	s.events = make(map[eventKey]model.TimingEvent)
	return s.flushEvents()
}

// Loading

func (s *Storage) loadParticipants() error {
	rows, err := s.readAll(athletesFile)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		createdAt, _ := time.Parse(timeLayout, row[3])
		s.participants[model.ParticipantID(row[0])] = &model.Participant{
			ID:          model.ParticipantID(row[0]),
			DisplayName: row[1],
			Team:        row[2],
			CreatedAt:   createdAt,
		}
	}
	return nil
}

func (s *Storage) loadCredentials() error {
	rows, err := s.readAll(credentialsFile)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		createdAt, _ := time.Parse(timeLayout, row[2])
		updatedAt, _ := time.Parse(timeLayout, row[3])
		s.credentials[model.ParticipantID(row[0])] = &model.ParticipantCredential{
			ParticipantID: model.ParticipantID(row[0]),
			PasscodeHash:  row[1],
			CreatedAt:     createdAt,
			UpdatedAt:     updatedAt,
		}
	}
	return nil
}

func (s *Storage) loadEvents() error {
	rows, err := s.readAll(timingFile)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		id := model.ParticipantID(row[0])
		for i, kind := range model.AllCheckpointKinds() {
			cell := row[i+1]
			if cell == "" {
				continue
			}
			ts, err := time.Parse(timeLayout, cell)
			if err != nil {
				return fmt.Errorf("parsing %s time for %q: %w", kind, id, err)
			}
			s.events[eventKey{participantID: id, checkpoint: kind}] = model.TimingEvent{
				ParticipantID: id,
				Checkpoint:    kind,
				RecordedAt:    ts,
			}
		}
	}
	return nil
}

// readAll reads all data rows of a CSV file, skipping the header.
// A missing file is treated as empty.
func (s *Storage) readAll(name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// Flushing

func (s *Storage) flushParticipants() error {
	rows := [][]string{{"athlete_id", "name", "team", "created_at"}}
	for _, p := range sortedParticipants(s.participants) {
		rows = append(rows, []string{
			string(p.ID), p.DisplayName, p.Team, p.CreatedAt.Format(timeLayout),
		})
	}
	return s.writeAll(athletesFile, rows)
}

func (s *Storage) flushCredentials() error {
	ids := make([]model.ParticipantID, 0, len(s.credentials))
	for id := range s.credentials {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := [][]string{{"athlete_id", "passcode_hash", "created_at", "updated_at"}}
	for _, id := range ids {
		c := s.credentials[id]
		rows = append(rows, []string{
			string(c.ParticipantID), c.PasscodeHash,
			c.CreatedAt.Format(timeLayout), c.UpdatedAt.Format(timeLayout),
		})
	}
	return s.writeAll(credentialsFile, rows)
}

func (s *Storage) flushEvents() error {
	byParticipant := make(map[model.ParticipantID]map[model.CheckpointKind]time.Time)
	for key, e := range s.events {
		if byParticipant[key.participantID] == nil {
			byParticipant[key.participantID] = make(map[model.CheckpointKind]time.Time)
		}
		byParticipant[key.participantID][key.checkpoint] = e.RecordedAt
	}

	ids := make([]model.ParticipantID, 0, len(byParticipant))
	for id := range byParticipant {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := [][]string{{"athlete_id", "START_TIME", "MID_TIME", "FINISH_TIME"}}
	for _, id := range ids {
		row := []string{string(id), "", "", ""}
		for i, kind := range model.AllCheckpointKinds() {
			if ts, ok := byParticipant[id][kind]; ok {
				row[i+1] = ts.Format(timeLayout)
			}
		}
		rows = append(rows, row)
	}
	return s.writeAll(timingFile, rows)
}

// writeAll atomically replaces a CSV file via a temp-file rename
func (s *Storage) writeAll(name string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}

	return os.Rename(tmp.Name(), path)
}

func sortedParticipants(m map[model.ParticipantID]*model.Participant) []*model.Participant {
	out := make([]*model.Participant, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
