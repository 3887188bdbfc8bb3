package errors

import "errors"

var (
	ErrInvalidActorID = errors.New("invalid actor id")
	ErrInvalidRole    = errors.New("invalid role")
	ErrUnauthorized   = errors.New("actor lacks required role")
)
