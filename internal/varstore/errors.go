package varstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/phasegrid/internal/quantity"
)

var (
	// ErrUnknownQuantity is returned for handles that were never issued or
	// whose quantity has been removed.
	ErrUnknownQuantity = errors.New("unknown quantity")
	// ErrDependentWrite is returned when an external caller tries to set the
	// value of a dependent quantity.
	ErrDependentWrite = errors.New("dependent quantities cannot be set directly")
	// ErrNotDependent is returned by operations that only apply to dependents.
	ErrNotDependent = errors.New("quantity is not dependent")
	// ErrAmbiguousOrMissingRole is returned when a (group, role) query does
	// not match exactly one quantity.
	ErrAmbiguousOrMissingRole = errors.New("ambiguous or missing role match")
	// ErrAmbiguousOrMissingName is returned when a (group, name) query does
	// not match exactly one quantity.
	ErrAmbiguousOrMissingName = errors.New("ambiguous or missing name match")
)

// UnknownQuantityError reports the stale or invalid handle.
type UnknownQuantityError struct {
	ID quantity.ID
}

func (e *UnknownQuantityError) Error() string {
	return fmt.Sprintf("unknown quantity %s", e.ID)
}

func (e *UnknownQuantityError) Unwrap() error {
	return ErrUnknownQuantity
}

// MatchError reports a group-scoped query that matched zero or several
// quantities.
type MatchError struct {
	Group quantity.Group
	// Field is either "role" or "name".
	Field   string
	Key     string
	Matches []quantity.ID
	// Suggestion is a close existing key when nothing matched.
	Suggestion string
}

func (e *MatchError) Error() string {
	if len(e.Matches) == 0 {
		msg := fmt.Sprintf("no quantity with %s %q in group %q", e.Field, e.Key, e.Group)
		if e.Suggestion != "" {
			msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
		}
		return msg
	}
	ids := make([]string, len(e.Matches))
	for i, id := range e.Matches {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s %q in group %q matches %d quantities (%s)", e.Field, e.Key, e.Group, len(e.Matches), strings.Join(ids, ", "))
}

func (e *MatchError) Unwrap() error {
	if e.Field == "name" {
		return ErrAmbiguousOrMissingName
	}
	return ErrAmbiguousOrMissingRole
}
