package services

import (
	"errors"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
)

// LookupStatus is the outcome of a request for data that may legitimately be
// absent, such as the current user's rating of a book.
type LookupStatus int

const (
	// Skipped means the request was not made, usually because nobody is
	// signed in.
	Skipped LookupStatus = iota
	Found
	NotFound
	Failed
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Lookup carries optional data together with how it was obtained, so callers
// can tell "absent" apart from "the request failed".
type Lookup[T any] struct {
	Value  T
	Status LookupStatus
	Err    error
}

func (l Lookup[T]) Ok() bool { return l.Status == Found }

func found[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, Status: Found}
}

func lookupError[T any](err error) Lookup[T] {
	if errors.Is(err, api.ErrNotFound) {
		return Lookup[T]{Status: NotFound}
	}
	return Lookup[T]{Status: Failed, Err: err}
}
