package chem

import "math"

// SpeciesKind discriminates the closed set of species variants.
type SpeciesKind uint8

const (
	SpeciesAcid       SpeciesKind = iota // one protonation state of an Acid
	SpeciesSpectator                     // fixed-concentration ion
	SpeciesHydronium                     // H3O+, concentration 10^-pH
	SpeciesHydroxide                     // OH-, concentration 10^(pH-pKw)
)

func (k SpeciesKind) String() string {
	switch k {
	case SpeciesAcid:
		return "acid species"
	case SpeciesSpectator:
		return "spectator"
	case SpeciesHydronium:
		return "hydronium"
	case SpeciesHydroxide:
		return "hydroxide"
	}
	return "unknown species"
}

// Species is a lightweight handle to one species: a protonation state of
// an acid, a spectator ion, or a solvent ion. Acid and spectator handles
// reference their owner by registry ID, never by pointer, so two handles
// are equal exactly when they name the same entity (and index).
type Species struct {
	Kind        SpeciesKind `json:"kind"`
	AcidID      uint64      `json:"acid_id,omitempty"`
	SpectatorID uint64      `json:"spectator_id,omitempty"`
	Index       int         `json:"index,omitempty"`
	Label       string      `json:"label"`
}

// Solvent ion handles, valid in any evaluation context.
var (
	Hydronium = Species{Kind: SpeciesHydronium, Label: "$H_3O^+$"}
	Hydroxide = Species{Kind: SpeciesHydroxide, Label: "$OH^-$"}
)

// Aux lifts the species into a one-term expression with coefficient 1,
// making Species usable as an Operand.
func (sp Species) Aux() Auxiliary {
	return Auxiliary{terms: []Term{{Coefficient: 1, Species: sp}}}
}

// HydroniumConcentration returns [H3O+] at the given pH.
func HydroniumConcentration(pH float64) float64 {
	return math.Pow(10, -pH)
}

// HydroxideConcentration returns [OH-] at the given pH and pKw.
func HydroxideConcentration(pH, pKw float64) float64 {
	return math.Pow(10, pH-pKw)
}
