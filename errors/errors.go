package errors

import "github.com/pipe01/tagcheck/internal/tag"

// SituatedErr is an error that knows where in a document it happened.
type SituatedErr interface {
	Unwrap() error
	At() tag.Location
}
