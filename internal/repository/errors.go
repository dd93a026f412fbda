package repository

import "github.com/pkg/errors"

var (
	// ErrUnavailable means the durable store is not configured or not reachable.
	ErrUnavailable = errors.New("durable store unavailable")
	// ErrNotFound means no row matched the requested id.
	ErrNotFound = errors.New("record not found")
)
