package chem

// Lookup resolves the registry keys carried by species handles. The
// System registry implements it; Registry below is the free-standing
// arena for expressions evaluated outside a named system.
type Lookup interface {
	AcidByID(id uint64) (*Acid, bool)
	SpectatorByID(id uint64) (*Spectator, bool)
}

// Env is the explicit evaluation context for expressions. The zero
// value means: pKw 14, no dilution, no registered acids or spectators
// (solvent-ion-only expressions still evaluate).
type Env struct {
	// PKw is the water autoionization exponent. 0 selects DefaultPKw.
	PKw float64

	// Dilution scales every declared acid and spectator concentration,
	// e.g. V0/(V0+Vt) during a titration. 0 selects 1 (no dilution).
	Dilution float64

	// Lookup resolves acid and spectator references. May be nil when
	// the expression contains only solvent ions.
	Lookup Lookup
}

func (e Env) pkw() float64 {
	if e.PKw == 0 {
		return DefaultPKw
	}
	return e.PKw
}

func (e Env) dilution() float64 {
	if e.Dilution == 0 {
		return 1
	}
	return e.Dilution
}

func (e Env) resolve(sp Species, pH float64) (float64, error) {
	switch sp.Kind {
	case SpeciesHydronium:
		return HydroniumConcentration(pH), nil
	case SpeciesHydroxide:
		return HydroxideConcentration(pH, e.pkw()), nil
	case SpeciesAcid:
		if e.Lookup == nil {
			return 0, &ResolutionError{Kind: sp.Kind, ID: sp.AcidID}
		}
		a, ok := e.Lookup.AcidByID(sp.AcidID)
		if !ok {
			return 0, &ResolutionError{Kind: sp.Kind, ID: sp.AcidID}
		}
		c, err := a.Concentration(sp.Index, pH)
		if err != nil {
			return 0, err
		}
		return e.dilution() * c, nil
	case SpeciesSpectator:
		if e.Lookup == nil {
			return 0, &ResolutionError{Kind: sp.Kind, ID: sp.SpectatorID}
		}
		s, ok := e.Lookup.SpectatorByID(sp.SpectatorID)
		if !ok {
			return 0, &ResolutionError{Kind: sp.Kind, ID: sp.SpectatorID}
		}
		return e.dilution() * s.Concentration(), nil
	}
	return 0, &ResolutionError{Kind: sp.Kind}
}

// Registry is a plain arena mapping registry IDs back to their acids and
// spectators, for evaluating free-standing expressions without a named
// system.
type Registry struct {
	acids      map[uint64]*Acid
	spectators map[uint64]*Spectator
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		acids:      make(map[uint64]*Acid),
		spectators: make(map[uint64]*Spectator),
	}
}

// AddAcid registers an acid for ID resolution.
func (r *Registry) AddAcid(a *Acid) { r.acids[a.ID()] = a }

// AddSpectator registers a spectator for ID resolution.
func (r *Registry) AddSpectator(s *Spectator) { r.spectators[s.ID()] = s }

// AcidByID implements Lookup.
func (r *Registry) AcidByID(id uint64) (*Acid, bool) {
	a, ok := r.acids[id]
	return a, ok
}

// SpectatorByID implements Lookup.
func (r *Registry) SpectatorByID(id uint64) (*Spectator, bool) {
	s, ok := r.spectators[id]
	return s, ok
}
