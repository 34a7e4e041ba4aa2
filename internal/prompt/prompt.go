// Package prompt abstracts interactive terminal questions so the wizard
// logic is not coupled to a particular terminal I/O library.
package prompt

import (
	"context"
	"errors"
	"strings"
)

// ErrCanceled is returned when the user aborts a prompt (ctrl+c / esc on the
// first step).
var ErrCanceled = errors.New("prompt canceled")

// TextQuestion asks for a single line of free text.
type TextQuestion struct {
	Message  string
	Default  string
	Required bool
	// Validate rejects an answer with a user-facing error; the prompter
	// re-asks until the answer passes or the prompt is canceled.
	Validate func(string) error
}

// SelectOption is one row of a single-select list. Separator rows group the
// list visually and cannot be chosen.
type SelectOption struct {
	Label     string
	Detail    string
	Separator bool
}

// SelectQuestion asks the user to pick exactly one option.
type SelectQuestion struct {
	Message string
	Options []SelectOption
	Default string
}

// ConfirmQuestion asks a yes/no question.
type ConfirmQuestion struct {
	Message string
	Default bool
}

// Prompter renders questions and awaits answers. Implementations must
// re-ask on invalid input for required questions without a default.
type Prompter interface {
	Text(ctx context.Context, q TextQuestion) (string, error)
	Password(ctx context.Context, q TextQuestion) (string, error)
	Select(ctx context.Context, q SelectQuestion) (string, error)
	Confirm(ctx context.Context, q ConfirmQuestion) (bool, error)
}

// errReask signals that the raw answer was rejected and the question must be
// asked again.
var errReask = errors.New("answer rejected")

// ResolveText normalizes a raw answer against the question: trims space,
// applies the default, enforces required, and runs the validator. A non-nil
// error means the prompter should ask again.
func ResolveText(q TextQuestion, raw string) (string, error) {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		answer = q.Default
	}
	if answer == "" && q.Required {
		return "", errReask
	}
	if q.Validate != nil {
		if err := q.Validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

// Selectable reports whether the option at index i can be chosen.
func (q SelectQuestion) Selectable(i int) bool {
	return i >= 0 && i < len(q.Options) && !q.Options[i].Separator
}

// DefaultIndex returns the index of the default option, or the first
// selectable option when no default matches.
func (q SelectQuestion) DefaultIndex() int {
	if q.Default != "" {
		for i, opt := range q.Options {
			if !opt.Separator && opt.Label == q.Default {
				return i
			}
		}
	}
	for i, opt := range q.Options {
		if !opt.Separator {
			return i
		}
	}
	return 0
}
