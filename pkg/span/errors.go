package span

import (
	"errors"
	"fmt"
)

// ErrStructuralInvariant indicates a match whose capture offsets cannot form
// a containment tree: a capture outside the whole match, two captures that
// partially overlap, or a capture whose text disagrees with its offsets.
var ErrStructuralInvariant = errors.New("structural invariant violation")

// InvariantError describes the capture that broke the containment model.
// It unwraps to ErrStructuralInvariant.
type InvariantError struct {
	// Group is the capture group number at fault.
	Group int

	// Other is the conflicting group number, or -1 when there is none.
	Other int

	// Start and End are the faulty capture's offsets relative to the match.
	Start int
	End   int

	// Reason says which rule was broken.
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Other >= 0 {
		return fmt.Sprintf("%s: group %d [%d,%d) and group %d: %s",
			ErrStructuralInvariant, e.Group, e.Start, e.End, e.Other, e.Reason)
	}
	return fmt.Sprintf("%s: group %d [%d,%d): %s",
		ErrStructuralInvariant, e.Group, e.Start, e.End, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return ErrStructuralInvariant
}
