// Package validator re-checks the nesting of a scanned token stack.
//
// The scanner rejects every document that would leave its stack non-empty, so
// when run after a successful scan Validate always receives an empty stack.
package validator

import (
	"github.com/pipe01/tagcheck/internal/tag"
)

// Validate drains stack, replaying its tokens from the top down.
func Validate(stack *tag.Stack[tag.Token]) error {
	open := tag.NewStack[tag.Token]()

	for {
		tk, ok := stack.Pop()
		if !ok {
			break
		}

		if tk.Opening {
			open.Push(tk)
			continue
		}

		top, ok := open.Pop()
		if !ok || top.Name != tk.Name {
			return errorAt(&tag.MismatchedClosingError{Name: tk.Name}, tk.Start)
		}
	}

	if top, ok := open.Pop(); ok {
		return errorAt(&tag.UnclosedOpeningError{Name: top.Name}, top.Start)
	}

	return nil
}

func errorAt(err error, loc tag.Location) error {
	return &tag.Error{
		Phase:    tag.PhaseValidate,
		Inner:    err,
		Location: loc,
	}
}
