package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rhale/trailtime/internal/dependencies/clock"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

// Service owns the participant roster. The timing core consumes it only
// through the Exists and Team lookups.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new registry service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Register adds a participant with the given bib number.
// An empty team affiliation defaults to the individual classification.
func (s *Service) Register(ctx context.Context, id model.ParticipantID, displayName, team, passcode string) (*model.Participant, error) {
	if id == "" {
		return nil, fmt.Errorf("participant id is required: %w", model.ErrParticipantNotFound)
	}
	if team == "" {
		team = model.TeamIndividual
	}

	now := s.clock.Now()
	participant := &model.Participant{
		ID:          id,
		DisplayName: displayName,
		Team:        team,
		CreatedAt:   now,
	}

	if err := s.storage.SaveParticipant(ctx, participant); err != nil {
		return nil, err
	}

	if passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		credential := &model.ParticipantCredential{
			ParticipantID: id,
			PasscodeHash:  string(hash),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.storage.SaveCredential(ctx, credential); err != nil {
			return nil, err
		}
	}

	s.logger.Info("participant registered",
		slog.String("participant_id", string(id)),
		slog.String("team", team))

	return participant, nil
}

// Get returns a participant by bib number
func (s *Service) Get(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return s.storage.GetParticipant(ctx, id)
}

// List returns the full roster ordered by bib number
func (s *Service) List(ctx context.Context) ([]*model.Participant, error) {
	return s.storage.ListParticipants(ctx)
}

// Exists reports whether a participant is registered
func (s *Service) Exists(ctx context.Context, id model.ParticipantID) (bool, error) {
	_, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Team returns the participant's team affiliation, or empty for participants
// racing as individuals
func (s *Service) Team(ctx context.Context, id model.ParticipantID) (string, error) {
	p, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		return "", err
	}
	if !p.HasTeam() {
		return "", nil
	}
	return p.Team, nil
}

// ImportCSV loads a roster in the athletes.csv layout
// (athlete_id,name,team,passcode; header row required). Rows whose bib
// number is already registered are skipped. Returns the number imported.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading roster: %w", err)
	}
	if len(rows) < 2 {
		return 0, nil
	}

	imported := 0
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return imported, fmt.Errorf("roster row %d: need at least athlete_id and name", i+2)
		}
		id := model.ParticipantID(strings.TrimSpace(row[0]))
		name := strings.TrimSpace(row[1])
		team, passcode := "", ""
		if len(row) > 2 {
			team = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			passcode = strings.TrimSpace(row[3])
		}

		_, err := s.Register(ctx, id, name, team, passcode)
		if err != nil {
			if errors.Is(err, model.ErrParticipantExists) {
				s.logger.Warn("skipping duplicate roster row",
					slog.String("participant_id", string(id)))
				continue
			}
			return imported, fmt.Errorf("roster row %d: %w", i+2, err)
		}
		imported++
	}

	return imported, nil
}
