package domain

import (
	"github.com/dealgrid/vendorsync/internal/errors"
)

// Domain-specific errors for outbox operations.
var (
	// ErrOutboxEntryNotFound indicates the requested outbox entry does not exist.
	ErrOutboxEntryNotFound = errors.Wrap(errors.ErrNotFound, "outbox entry not found")

	// ErrUnknownEntryType indicates an entry whose type has no registered
	// replay handler.
	ErrUnknownEntryType = errors.Wrap(errors.ErrInvalidInput, "unknown outbox entry type")
)
