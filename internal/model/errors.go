package model

import "errors"

// Common errors used across the application
var (
	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already registered")

	// Checkpoint errors
	ErrInvalidCheckpoint   = errors.New("invalid checkpoint")
	ErrDuplicateCheckpoint = errors.New("checkpoint already recorded")

	// Token errors
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
)
