package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rhale/trailtime/internal/model"
)

// Purpose is the context label mixed into every checkpoint token so a token
// minted for timing can never be replayed against another surface
const Purpose = "checkpoint-timing"

const signingMethod = "HS256"

// Codec issues and verifies signed, time-limited checkpoint tokens.
// Tokens carry only their issuance time; the acceptable age is supplied at
// verification, so tokens already handed out stay valid for their full
// window even after the issuing station rotates.
type Codec struct {
	secret []byte
}

// checkpointClaims binds a checkpoint kind to the standard timed claims
type checkpointClaims struct {
	Checkpoint string `json:"cp"`
	jwt.RegisteredClaims
}

// New creates a Codec signing with the given process-wide secret
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Issue creates a signed token binding the checkpoint kind to the issuance
// time. The jti claim keeps tokens for identical inputs distinct.
func (c *Codec) Issue(kind model.CheckpointKind, now time.Time) (string, error) {
	if !kind.Valid() {
		return "", model.ErrInvalidCheckpoint
	}

	claims := checkpointClaims{
		Checkpoint: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  Purpose,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing checkpoint token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, purpose and age of a token against the given
// time and returns the embedded checkpoint kind.
// Fails with model.ErrTokenExpired when now - issued_at exceeds maxAge and
// with model.ErrTokenInvalidSignature for tampering or a wrong purpose.
func (c *Codec) Verify(raw string, now time.Time, maxAge time.Duration) (model.CheckpointKind, error) {
	claims := &checkpointClaims{}

	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithSubject(Purpose),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", model.ErrTokenInvalidSignature
	}

	if claims.IssuedAt == nil {
		return "", model.ErrTokenInvalidSignature
	}
	if now.Sub(claims.IssuedAt.Time) > maxAge {
		return "", model.ErrTokenExpired
	}

	kind, err := model.ParseCheckpointKind(claims.Checkpoint)
	if err != nil {
		return "", model.ErrTokenInvalidSignature
	}
	return kind, nil
}
