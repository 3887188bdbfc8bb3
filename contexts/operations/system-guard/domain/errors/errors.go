package errors

import "errors"

var (
	ErrInvalidSystemState = errors.New("system is not in the required state")
	ErrEmergencyPaused    = errors.New("system is paused for emergency")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded for actor")
	ErrCooldownActive     = errors.New("cooldown period has not elapsed")
	ErrInvalidActorID     = errors.New("invalid actor id")
	ErrInvalidEvent       = errors.New("invalid outbox event")
	ErrEventConflict      = errors.New("outbox event id already used with different payload")
	ErrNotFound           = errors.New("record not found")
)
