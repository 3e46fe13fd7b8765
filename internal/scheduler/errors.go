package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/phasegrid/internal/quantity"
)

// ErrUnresolvedDependencies is matched by every *UnresolvedError.
var ErrUnresolvedDependencies = errors.New("unresolved dependencies")

// UnresolvedError lists the dependents that could not become ready in a
// run, because of a cycle or a reference to a quantity that no longer
// exists. Those quantities keep their previous value.
type UnresolvedError struct {
	IDs []quantity.ID
}

func (e *UnresolvedError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("unresolved dependencies: %d quantities never became ready (%s)", len(e.IDs), strings.Join(ids, ", "))
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolvedDependencies
}
