// Package prompttest provides a scripted Prompter for tests.
package prompttest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/clusterkit-dev/clusterkit/internal/prompt"
)

// Script is a Prompter that answers questions from a pre-recorded list.
// Answers are consumed in order; an answer rejected by a validator consumes
// the next scripted answer, mirroring a terminal re-ask. Running out of
// answers is a test failure surfaced as an error.
type Script struct {
	mu      sync.Mutex
	answers []string

	// Asked records every question message in order, for assertions.
	Asked []string
}

// NewScript returns a Script that will reply with the given answers.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

func (s *Script) next(message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, message)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("no scripted answer for question %q", message)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *Script) Text(ctx context.Context, q prompt.TextQuestion) (string, error) {
	for {
		raw, err := s.next(q.Message)
		if err != nil {
			return "", err
		}
		answer, err := prompt.ResolveText(q, raw)
		if err != nil {
			continue // re-ask with the next scripted answer
		}
		return answer, nil
	}
}

func (s *Script) Password(ctx context.Context, q prompt.TextQuestion) (string, error) {
	return s.Text(ctx, q)
}

func (s *Script) Select(ctx context.Context, q prompt.SelectQuestion) (string, error) {
	raw, err := s.next(q.Message)
	if err != nil {
		return "", err
	}
	if raw == "" {
		raw = q.Default
	}
	for i, opt := range q.Options {
		if opt.Label == raw && q.Selectable(i) {
			return opt.Label, nil
		}
	}
	return "", fmt.Errorf("scripted answer %q is not a selectable option of %q", raw, q.Message)
}

func (s *Script) Confirm(ctx context.Context, q prompt.ConfirmQuestion) (bool, error) {
	raw, err := s.next(q.Message)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	case "":
		return q.Default, nil
	}
	return false, fmt.Errorf("scripted answer %q is not a yes/no answer for %q", raw, q.Message)
}

// Remaining returns the number of unconsumed answers.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}
