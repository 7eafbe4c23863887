package translation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFirstSuccess_StopsAtFirstResult(t *testing.T) {
	t.Parallel()

	first := &stubBackend{name: "first", err: errors.New("down")}
	second := &stubBackend{name: "second", translated: "Hello"}
	third := &stubBackend{name: "third", translated: "never"}

	var failures []Attempt
	text, backend, err := FirstSuccess(context.Background(), []Candidate{
		CandidateFor(first),
		CandidateFor(second),
		CandidateFor(third),
	}, Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"}, func(attempt Attempt) {
		failures = append(failures, attempt)
	})
	if err != nil {
		t.Fatalf("FirstSuccess returned error: %v", err)
	}
	if text != "Hello" || backend != "second" {
		t.Fatalf("unexpected result %q from %q", text, backend)
	}
	if third.calls != 0 {
		t.Fatalf("expected later candidates to be skipped")
	}
	if len(failures) != 1 || failures[0].Backend != "first" {
		t.Fatalf("unexpected failure callbacks: %+v", failures)
	}
}

func TestFirstSuccess_EmptyResultCounts(t *testing.T) {
	t.Parallel()

	empty := &stubBackend{name: "empty", translated: ""}
	text, backend, err := FirstSuccess(context.Background(), []Candidate{CandidateFor(empty)}, Request{Text: "Hallo"}, nil)
	if err != nil || text != "" || backend != "empty" {
		t.Fatalf("expected empty success, got text=%q backend=%q err=%v", text, backend, err)
	}
}

func TestFirstSuccess_Exhausted(t *testing.T) {
	t.Parallel()

	text, backend, err := FirstSuccess(context.Background(), []Candidate{
		CandidateFor(&stubBackend{name: "a", err: errors.New("timeout")}),
		{Name: "skipped"},
		CandidateFor(&stubBackend{name: "b", err: errors.New("quota")}),
	}, Request{Text: "Hallo"}, nil)
	if text != "" || backend != "" {
		t.Fatalf("expected no result, got text=%q backend=%q", text, backend)
	}
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("expected ErrChainExhausted, got %v", err)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) || len(exhausted.Attempts) != 2 {
		t.Fatalf("expected two attempts, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "a: timeout") || !strings.Contains(msg, "b: quota") {
		t.Fatalf("unexpected error text: %q", msg)
	}
}

func TestFirstSuccess_NoCandidates(t *testing.T) {
	t.Parallel()

	_, _, err := FirstSuccess(context.Background(), nil, Request{Text: "Hallo"}, nil)
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("expected ErrChainExhausted, got %v", err)
	}
	if err.Error() != "no translation backends configured" {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
}
