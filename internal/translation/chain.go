package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrChainExhausted is wrapped by ExhaustedError.
var ErrChainExhausted = errors.New("all translation backends failed")

// Candidate is one entry of a fallback chain. Attempt is called at most once
// per FirstSuccess run.
type Candidate struct {
	Name    string
	Attempt func(ctx context.Context, req Request) (string, error)
}

// CandidateFor wraps a Backend as a Candidate.
func CandidateFor(backend Backend) Candidate {
	return Candidate{
		Name:    backend.Name(),
		Attempt: backend.Translate,
	}
}

// Attempt records one failed candidate.
type Attempt struct {
	Backend string
	Err     error
}

// ExhaustedError lists every failed attempt of a chain run.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no translation backends configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", attempt.Backend, attempt.Err))
	}
	return fmt.Sprintf("%s (%s)", ErrChainExhausted.Error(), strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() error {
	return ErrChainExhausted
}

// FirstSuccess tries candidates in order and returns the first result along
// with the name of the candidate that produced it. Intermediate failures are
// swallowed; only exhaustion is reported, as *ExhaustedError.
func FirstSuccess(ctx context.Context, candidates []Candidate, req Request, onFailure func(Attempt)) (string, string, error) {
	failed := make([]Attempt, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Attempt == nil {
			continue
		}
		translated, err := candidate.Attempt(ctx, req)
		if err == nil {
			return translated, candidate.Name, nil
		}
		attempt := Attempt{Backend: candidate.Name, Err: err}
		failed = append(failed, attempt)
		if onFailure != nil {
			onFailure(attempt)
		}
	}
	return "", "", &ExhaustedError{Attempts: failed}
}
