package database

import "errors"

var (
	// ErrRoomUnavailable means an active lock or confirmed booking already
	// covers part of the requested range. Callers may retry with another
	// room or dates.
	ErrRoomUnavailable = errors.New("room is not available for the requested dates")

	// ErrLockNotFound means the token does not reference any lock.
	ErrLockNotFound = errors.New("room lock not found")

	// ErrLockExpired means the lock was already released or its expiry
	// passed; the caller must re-acquire before converting.
	ErrLockExpired = errors.New("room lock has expired")

	// ErrInvalidStateTransition means a lifecycle command was issued
	// against an event in the wrong source state.
	ErrInvalidStateTransition = errors.New("invalid event state transition")

	// ErrDataIntegrity covers violated domain invariants: non-positive
	// adjustment values, inverted date ranges, or an overlap that slipped
	// past a lock.
	ErrDataIntegrity = errors.New("data integrity violation")

	ErrRoomNotFound  = errors.New("room not found")
	ErrEventNotFound = errors.New("room event not found")
)
