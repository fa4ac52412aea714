package usecase

import (
	"context"
	"log/slog"
)

// sagaStep is one forward action paired with its compensating action.
// A nil compensate marks the step as irreversible once committed.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga executes an ordered list of steps that span systems which cannot
// share a transaction. On a step failure the already-completed steps are
// compensated in reverse order. The pairing of forward and compensating
// actions is kept as an explicit table so the cross-system ordering is
// reviewable in one place.
type saga struct {
	steps  []sagaStep
	logger *slog.Logger
}

// sagaFailure describes how a saga run ended when it did not fully succeed.
type sagaFailure struct {
	// StepName is the step whose forward action failed.
	StepName string
	// Err is the forward action's error.
	Err error
	// CompensationErr is non-nil when compensating a completed step failed.
	// The caller then owns durable reconciliation (outbox deferral).
	CompensationErr error
}

// execute runs the steps in order. Returns nil when every step succeeded.
func (s *saga) execute(ctx context.Context) *sagaFailure {
	for i, step := range s.steps {
		err := step.run(ctx)
		if err == nil {
			continue
		}

		failure := &sagaFailure{StepName: step.name, Err: err}

		// Undo completed steps, most recent first.
		for j := i - 1; j >= 0; j-- {
			prev := s.steps[j]
			if prev.compensate == nil {
				continue
			}
			if compErr := prev.compensate(ctx); compErr != nil {
				if s.logger != nil {
					s.logger.Error("saga compensation failed",
						slog.String("failed_step", step.name),
						slog.String("compensated_step", prev.name),
						slog.Any("error", compErr),
					)
				}
				failure.CompensationErr = compErr
			}
		}

		return failure
	}
	return nil
}
