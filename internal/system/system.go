// Package system aggregates acids and spectators under user-chosen
// names, validates and evaluates auxiliary expressions against that
// composition, and hosts the pH equality solver.
package system

import (
	"fmt"

	"github.com/openchem/phdiag/internal/chem"
)

// System is an insertion-ordered registry of acids and spectators plus
// the auxiliary expressions declared against them. It implements
// chem.Lookup, so it is the evaluation context for its own expressions.
type System struct {
	order      []string
	acids      map[string]*chem.Acid
	spectators map[string]*chem.Spectator

	acidIDs      map[uint64]*chem.Acid
	spectatorIDs map[uint64]*chem.Spectator

	auxOrder    []string
	auxiliaries map[string]chem.Auxiliary

	pkw float64
}

// New creates an empty system with the default water autoionization
// constant.
func New() *System {
	return &System{
		acids:        make(map[string]*chem.Acid),
		spectators:   make(map[string]*chem.Spectator),
		acidIDs:      make(map[uint64]*chem.Acid),
		spectatorIDs: make(map[uint64]*chem.Spectator),
		auxiliaries:  make(map[string]chem.Auxiliary),
		pkw:          chem.DefaultPKw,
	}
}

// SetPKw overrides the water autoionization exponent used by every
// evaluation and solve scoped to this system.
func (s *System) SetPKw(pkw float64) { s.pkw = pkw }

// PKw returns the configured autoionization exponent.
func (s *System) PKw() float64 { return s.pkw }

// AddAcid registers an acid under a unique name.
func (s *System) AddAcid(name string, a *chem.Acid) error {
	if err := s.reserveName(name); err != nil {
		return err
	}
	s.order = append(s.order, name)
	s.acids[name] = a
	s.acidIDs[a.ID()] = a
	return nil
}

// AddSpectator registers a spectator ion under a unique name.
func (s *System) AddSpectator(name string, sp *chem.Spectator) error {
	if err := s.reserveName(name); err != nil {
		return err
	}
	s.order = append(s.order, name)
	s.spectators[name] = sp
	s.spectatorIDs[sp.ID()] = sp
	return nil
}

func (s *System) reserveName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: entry name must not be empty", chem.ErrConfig)
	}
	if _, ok := s.acids[name]; ok {
		return fmt.Errorf("%w: %q", chem.ErrDuplicateName, name)
	}
	if _, ok := s.spectators[name]; ok {
		return fmt.Errorf("%w: %q", chem.ErrDuplicateName, name)
	}
	return nil
}

// Acid returns the acid registered under name.
func (s *System) Acid(name string) (*chem.Acid, bool) {
	a, ok := s.acids[name]
	return a, ok
}

// Spectator returns the spectator registered under name.
func (s *System) Spectator(name string) (*chem.Spectator, bool) {
	sp, ok := s.spectators[name]
	return sp, ok
}

// Names returns the registered entry names in insertion order.
func (s *System) Names() []string {
	return append([]string(nil), s.order...)
}

// AcidByID implements chem.Lookup.
func (s *System) AcidByID(id uint64) (*chem.Acid, bool) {
	a, ok := s.acidIDs[id]
	return a, ok
}

// SpectatorByID implements chem.Lookup.
func (s *System) SpectatorByID(id uint64) (*chem.Spectator, bool) {
	sp, ok := s.spectatorIDs[id]
	return sp, ok
}

// Env returns the evaluation context scoped to this system. dilution 0
// selects 1.
func (s *System) Env(dilution float64) chem.Env {
	return chem.Env{PKw: s.pkw, Dilution: dilution, Lookup: s}
}

// AddAuxiliary stores an expression for later curve generation and
// solving. An empty name is assigned "aux. N" with N progressive, as in
// the classic diagram workflow. Every term is validated against the
// registry now, so later evaluation cannot hit a resolution failure.
// Returns the name actually assigned.
func (s *System) AddAuxiliary(aux chem.Auxiliary, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("aux. %d", len(s.auxiliaries)+1)
	}
	if _, ok := s.auxiliaries[name]; ok {
		return "", fmt.Errorf("%w: auxiliary %q", chem.ErrDuplicateName, name)
	}
	if err := s.validate(aux); err != nil {
		return "", fmt.Errorf("auxiliary %q: %w", name, err)
	}
	s.auxOrder = append(s.auxOrder, name)
	s.auxiliaries[name] = aux
	return name, nil
}

// Auxiliary returns a stored expression by name.
func (s *System) Auxiliary(name string) (chem.Auxiliary, bool) {
	aux, ok := s.auxiliaries[name]
	return aux, ok
}

// AuxiliaryNames returns the stored expression names in insertion order.
func (s *System) AuxiliaryNames() []string {
	return append([]string(nil), s.auxOrder...)
}

// validate checks that every acid/spectator reference in the expression
// resolves within this system and that deprotonation indexes are in
// range.
func (s *System) validate(aux chem.Auxiliary) error {
	for _, t := range aux.Terms() {
		switch t.Species.Kind {
		case chem.SpeciesAcid:
			a, ok := s.acidIDs[t.Species.AcidID]
			if !ok {
				return &chem.ResolutionError{Kind: t.Species.Kind, ID: t.Species.AcidID}
			}
			if t.Species.Index < 0 || t.Species.Index > a.NProtons() {
				return &chem.DomainError{Index: t.Species.Index, NProtons: a.NProtons()}
			}
		case chem.SpeciesSpectator:
			if _, ok := s.spectatorIDs[t.Species.SpectatorID]; !ok {
				return &chem.ResolutionError{Kind: t.Species.Kind, ID: t.Species.SpectatorID}
			}
		}
	}
	return nil
}

// Evaluate computes an expression at the given pH in this system's
// context.
func (s *System) Evaluate(aux chem.Auxiliary, pH float64) (float64, error) {
	return aux.Evaluate(s.Env(0), pH)
}

// Concentration returns the concentration of one deprotonation state of
// the named acid (or, with index 0, of the named spectator) at the given
// pH.
func (s *System) Concentration(name string, index int, pH float64) (float64, error) {
	if a, ok := s.acids[name]; ok {
		return a.Concentration(index, pH)
	}
	if sp, ok := s.spectators[name]; ok {
		if index != 0 {
			return 0, &chem.DomainError{Index: index, NProtons: 0}
		}
		return sp.Concentration(), nil
	}
	return 0, fmt.Errorf("no entry named %q in system", name)
}
