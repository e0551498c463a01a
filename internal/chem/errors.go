package chem

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the equilibrium packages.
var (
	// ErrConfig marks invalid construction input. Never corrected
	// silently; the constructing call fails.
	ErrConfig = errors.New("invalid configuration")

	// ErrDuplicateName marks a name collision inside one registry.
	ErrDuplicateName = errors.New("name already in use")

	// ErrNoRoot marks a bracket with no sign change during root
	// finding. Reported per solve; the caller decides whether to skip
	// the point or halt.
	ErrNoRoot = errors.New("no sign change across bracket")
)

// DomainError reports a deprotonation index outside [0, n].
type DomainError struct {
	Index    int
	NProtons int
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("deprotonation index %d outside [0, %d]", e.Index, e.NProtons)
}

// ResolutionError reports a species term whose acid or spectator is not
// known to the evaluating context.
type ResolutionError struct {
	Kind SpeciesKind
	ID   uint64
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s id %d in evaluation context", e.Kind, e.ID)
}
