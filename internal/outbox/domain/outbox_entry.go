// Package domain defines the durable outbox entry and its retry schedule.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry records an operation whose second phase has not yet succeeded.
// While an entry exists the two stores are known-inconsistent and the entry
// is the single source of truth for what remains to be reconciled.
//
// Entries are created exactly once by the sync coordinator, mutated only by
// the outbox worker, and deleted by the worker on successful replay.
type OutboxEntry struct {
	ID uuid.UUID
	// Type selects the replay handler for this entry.
	Type string
	// Payload is operation-specific JSON, sufficient to retry without any
	// external context.
	Payload   string
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOutboxEntry creates an entry for the given handler type and payload.
func NewOutboxEntry(entryType, payload string) *OutboxEntry {
	return &OutboxEntry{
		ID:      uuid.Must(uuid.NewV7()),
		Type:    entryType,
		Payload: payload,
	}
}

// NextEligibleAt computes when the entry may next be attempted under an
// exponential backoff schedule: updatedAt + base * multiplier^attempts.
// A never-attempted entry is eligible immediately.
func (e *OutboxEntry) NextEligibleAt(base time.Duration, multiplier float64) time.Time {
	if e.Attempts == 0 {
		return e.CreatedAt
	}
	delay := time.Duration(float64(base) * math.Pow(multiplier, float64(e.Attempts)))
	return e.UpdatedAt.Add(delay)
}

// Eligible reports whether the entry may be attempted at the given time.
func (e *OutboxEntry) Eligible(now time.Time, base time.Duration, multiplier float64) bool {
	return !e.NextEligibleAt(base, multiplier).After(now)
}

// Exhausted reports whether the entry has used up its automatic attempts.
// Exhausted entries are left in place for manual inspection and alerting.
func (e *OutboxEntry) Exhausted(maxAttempts int) bool {
	return e.Attempts >= maxAttempts
}

// RecordFailure registers a failed replay attempt.
func (e *OutboxEntry) RecordFailure(err error) {
	e.Attempts++
	message := err.Error()
	e.LastError = &message
}
