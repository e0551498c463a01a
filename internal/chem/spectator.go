package chem

import (
	"fmt"
	"math"
	"sync/atomic"
)

var spectatorIDs atomic.Uint64

// Spectator is an ion with a fixed, pH-independent concentration, e.g.
// the counter-ion of a fully dissociated strong electrolyte. It still
// participates in expression algebra as a degenerate one-term species.
type Spectator struct {
	id    uint64
	label string
	conc  float64
}

// NewSpectator builds a spectator ion with a display label and a fixed
// concentration.
func NewSpectator(label string, concentration float64) (*Spectator, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: spectator label must not be empty", ErrConfig)
	}
	if concentration < 0 || math.IsNaN(concentration) || math.IsInf(concentration, 0) {
		return nil, fmt.Errorf("%w: concentration must be finite and non-negative, got %v", ErrConfig, concentration)
	}
	return &Spectator{id: spectatorIDs.Add(1), label: label, conc: concentration}, nil
}

// ID returns the registry identity of the spectator.
func (s *Spectator) ID() uint64 { return s.id }

// Label returns the display label.
func (s *Spectator) Label() string { return s.label }

// Concentration returns the declared concentration, before any dilution
// applied by the evaluation context.
func (s *Spectator) Concentration() float64 { return s.conc }

// Species returns the handle referencing this spectator.
func (s *Spectator) Species() Species {
	return Species{Kind: SpeciesSpectator, SpectatorID: s.id, Label: s.label}
}
