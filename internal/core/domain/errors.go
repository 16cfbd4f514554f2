package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrChunkConfig indicates invalid chunking parameters.
	// Fatal at call time, never retried.
	ErrChunkConfig = errors.New("invalid chunking parameters")

	// ErrEmptyContent indicates a handler returned nothing usable for a
	// source. Recorded as per-source error state; does not abort the batch.
	ErrEmptyContent = errors.New("source content is empty")

	// ErrHandlerNotRegistered indicates a persisted source references a
	// handler id with no registered instance. This is a registration
	// invariant violation and aborts the processing run.
	ErrHandlerNotRegistered = errors.New("source handler not registered")

	// ErrChunkIndexOutOfRange indicates a chunk lookup past the end of the
	// recomputed chunk list. Live content may have shrunk since the
	// embedding was stored; surfaced to callers as not-found.
	ErrChunkIndexOutOfRange = errors.New("chunk index out of range")

	// ErrProviderUnavailable indicates an infrastructure outage of the
	// embedding provider or the store. Propagates and stops the run,
	// as opposed to a single bad source.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
