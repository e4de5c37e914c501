// Package pipeline runs a short sequence of dependent, fallible steps over a shared state
// value and stops at the first failure, recording which step failed.
package pipeline

import (
	"context"
	"errors"
)

// Step is one stage of a pipeline. Skip, when set and true, bypasses Run without failing.
type Step[S any] struct {
	Name string
	Skip func(state *S) bool
	Run  func(ctx context.Context, state *S) error
}

// StepError attributes a failure to the step that produced it
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

// Run executes steps in order. Steps after a failing one never run.
func Run[S any](ctx context.Context, state *S, steps ...Step[S]) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
		if step.Skip != nil && step.Skip(state) {
			continue
		}
		if err := step.Run(ctx, state); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

// FailedStep returns the name of the step err is attributed to, or "" when it carries none
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
