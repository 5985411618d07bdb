package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhale/trailtime/internal/dependencies/clock"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Role distinguishes athlete sessions from staff console sessions
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleStaff   Role = "staff"
)

// Session represents an authenticated session
type Session struct {
	Token         string
	Role          Role
	ParticipantID model.ParticipantID // set for athlete sessions
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	// StaffKey grants staff console access; empty disables staff login
	StaffKey string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 12 * time.Hour,
	}
}

// Service handles login and session management
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	staffKey        string
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		staffKey:        cfg.StaffKey,
	}
}

// LoginAthlete authenticates a participant by bib number and passcode
func (s *Service) LoginAthlete(ctx context.Context, id model.ParticipantID, passcode string) (*Session, error) {
	credential, err := s.storage.GetCredential(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasscodeHash), []byte(passcode)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("athlete logged in", slog.String("participant_id", string(id)))
	return s.createSession(RoleAthlete, id), nil
}

// LoginStaff authenticates the staff console with the configured staff key
func (s *Service) LoginStaff(key string) (*Session, error) {
	if s.staffKey == "" {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.staffKey)) != 1 {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("staff logged in")
	return s.createSession(RoleStaff, ""), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

// createSession creates and stores a new session
func (s *Service) createSession(role Role, id model.ParticipantID) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:         uuid.NewString(),
		Role:          role,
		ParticipantID: id,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}
