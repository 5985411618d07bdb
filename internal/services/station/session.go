package station

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rhale/trailtime/internal/dependencies/clock"
	"github.com/rhale/trailtime/internal/metrics"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/token"
)

// Config holds configuration for a checkpoint station
type Config struct {
	// BaseURL is the externally reachable URL the scan link is built on
	BaseURL string
	// TokenExpiry is the validity window of issued tokens
	TokenExpiry time.Duration
}

// DefaultConfig returns default station configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:8080",
		TokenExpiry: 300 * time.Second,
	}
}

// Code is what a station renders for athletes to scan: the opaque token, the
// scan URL to encode as a QR image, and the remaining validity countdown
type Code struct {
	Checkpoint model.CheckpointKind
	Token      string
	URL        string
	IssuedAt   time.Time
	ExpiresIn  time.Duration
}

// Session holds the currently active token for one staff station.
// States are Empty and Active(kind, token, issuedAt); a checkpoint-selection
// change or expiry triggers rotation. Rotation never invalidates tokens
// already handed out; those stay valid until their own expiry.
// Each station instantiates its own Session; there is no shared global.
type Session struct {
	codec  *token.Codec
	clock  clock.Clock
	logger *slog.Logger

	baseURL     string
	tokenExpiry time.Duration

	mu       sync.Mutex
	kind     model.CheckpointKind
	token    string
	issuedAt time.Time
}

// NewSession creates an issuance session for one station
func NewSession(codec *token.Codec, clock clock.Clock, cfg Config, logger *slog.Logger) *Session {
	if cfg.TokenExpiry == 0 {
		cfg.TokenExpiry = DefaultConfig().TokenExpiry
	}
	return &Session{
		codec:       codec,
		clock:       clock,
		logger:      logger,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		tokenExpiry: cfg.TokenExpiry,
	}
}

// GetOrRotate returns the active code for the checkpoint, issuing a fresh
// token when the station has none, the checkpoint selection changed, or the
// active token expired. Safe to call from a polling display loop.
func (s *Session) GetOrRotate(kind model.CheckpointKind) (*Code, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidCheckpoint
	}

	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.kind != kind || now.Sub(s.issuedAt) > s.tokenExpiry {
		tok, err := s.codec.Issue(kind, now)
		if err != nil {
			return nil, err
		}
		s.kind = kind
		s.token = tok
		s.issuedAt = now

		metrics.RecordTokenIssued(string(kind))
		s.logger.Info("checkpoint code rotated",
			slog.String("checkpoint", string(kind)))
	}

	remaining := s.tokenExpiry - now.Sub(s.issuedAt)
	return &Code{
		Checkpoint: s.kind,
		Token:      s.token,
		URL:        s.scanURL(s.token),
		IssuedAt:   s.issuedAt,
		ExpiresIn:  remaining,
	}, nil
}

// TokenExpiry returns the validity window the session issues tokens for
func (s *Session) TokenExpiry() time.Duration {
	return s.tokenExpiry
}

// scanURL embeds the token as a query parameter against the base URL
func (s *Session) scanURL(tok string) string {
	return fmt.Sprintf("%s/scan?token=%s", s.baseURL, url.QueryEscape(tok))
}
