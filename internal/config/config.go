// Package config loads YAML scenario files describing an acid-base
// system: its acids, spectators, balance expressions, and the optional
// sweep and titration to run against it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openchem/phdiag/internal/chem"
	"github.com/openchem/phdiag/internal/system"
	"github.com/openchem/phdiag/internal/titrate"
)

// Scenario is the root of a scenario file.
type Scenario struct {
	// PKw is the water autoionization exponent. default: 14
	PKw float64 `yaml:"pkw"`

	Acids      []Acid      `yaml:"acids"`
	Spectators []Spectator `yaml:"spectators"`
	Balances   []Balance   `yaml:"balances"`

	Sweep     *Sweep     `yaml:"sweep"`     // optional logarithmic-diagram sweep
	Titration *Titration `yaml:"titration"` // optional titration run
}

// Acid declares one polyprotic acid.
type Acid struct {
	Name          string    `yaml:"name"`
	PKa           []float64 `yaml:"pka"`
	Concentration float64   `yaml:"concentration"`
	Labels        []string  `yaml:"labels"` // optional, n+1 entries
}

// Spectator declares a fixed-concentration ion.
type Spectator struct {
	Name          string  `yaml:"name"`
	Label         string  `yaml:"label"` // defaults to the name
	Concentration float64 `yaml:"concentration"`
}

// Balance declares a named linear expression over the declared species.
type Balance struct {
	Name  string `yaml:"name"`
	Terms []Term `yaml:"terms"`
}

// Term references one species of the expression. Exactly one of
// Solvent, Acid, or Spectator must be set. A nil coefficient means 1.
type Term struct {
	Coefficient *float64 `yaml:"coefficient"`
	Solvent     string   `yaml:"solvent"`   // "hydronium" or "hydroxide"
	Acid        string   `yaml:"acid"`      // acid name, together with index
	Index       int      `yaml:"index"`     // deprotonation index
	Spectator   string   `yaml:"spectator"` // spectator name
}

// Sweep declares the pH grid of the logarithmic diagram.
type Sweep struct {
	From float64 `yaml:"from"` // default: 0
	To   float64 `yaml:"to"`   // default: 14
	Step float64 `yaml:"step"` // default: 0.01
}

// Titration declares a titration run against one of the balances.
type Titration struct {
	Balance              string  `yaml:"balance"`
	InitialVolume        float64 `yaml:"initial_volume"`        // liters
	TitrantConcentration float64 `yaml:"titrant_concentration"` // mol/L
	Titrant              string  `yaml:"titrant"`               // "base" (default) or "acid"
	Step                 float64 `yaml:"step"`                  // liters per point
	MaxVolume            float64 `yaml:"max_volume"`            // liters
	Dilution             *bool   `yaml:"dilution"`              // default: true
}

// Defaults returns a scenario with the documented default values.
func Defaults() Scenario {
	return Scenario{
		PKw:   chem.DefaultPKw,
		Sweep: &Sweep{From: 0, To: 14, Step: 0.01},
	}
}

// Load reads and validates a scenario file. Fields absent from the YAML
// keep their defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc := Defaults()
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario validation: %w", err)
	}
	return &sc, nil
}

// Validate checks the scenario for structural problems before any
// chemistry objects are built.
func (sc *Scenario) Validate() error {
	if len(sc.Acids) == 0 && len(sc.Spectators) == 0 {
		return fmt.Errorf("%w: scenario declares no acids and no spectators", chem.ErrConfig)
	}
	for i, a := range sc.Acids {
		if a.Name == "" {
			return fmt.Errorf("%w: acids[%d] has no name", chem.ErrConfig, i)
		}
		if len(a.PKa) == 0 {
			return fmt.Errorf("%w: acid %q has no pka values", chem.ErrConfig, a.Name)
		}
	}
	for i, sp := range sc.Spectators {
		if sp.Name == "" {
			return fmt.Errorf("%w: spectators[%d] has no name", chem.ErrConfig, i)
		}
	}
	for _, b := range sc.Balances {
		if b.Name == "" {
			return fmt.Errorf("%w: every balance needs a name", chem.ErrConfig)
		}
		if len(b.Terms) == 0 {
			return fmt.Errorf("%w: balance %q has no terms", chem.ErrConfig, b.Name)
		}
		for j, term := range b.Terms {
			if err := term.validate(); err != nil {
				return fmt.Errorf("balance %q term %d: %w", b.Name, j, err)
			}
		}
	}
	if t := sc.Titration; t != nil {
		if t.Balance == "" {
			return fmt.Errorf("%w: titration needs a balance name", chem.ErrConfig)
		}
		if t.Titrant != "" && t.Titrant != "acid" && t.Titrant != "base" {
			return fmt.Errorf("%w: titrant must be \"acid\" or \"base\", got %q", chem.ErrConfig, t.Titrant)
		}
	}
	return nil
}

func (t Term) validate() error {
	set := 0
	if t.Solvent != "" {
		if t.Solvent != "hydronium" && t.Solvent != "hydroxide" {
			return fmt.Errorf("%w: solvent must be \"hydronium\" or \"hydroxide\", got %q", chem.ErrConfig, t.Solvent)
		}
		set++
	}
	if t.Acid != "" {
		set++
	}
	if t.Spectator != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one of solvent, acid, spectator must be set", chem.ErrConfig)
	}
	return nil
}

// Build assembles the equilibrium system: acids and spectators in
// declaration order, then every balance as a named auxiliary.
func (sc *Scenario) Build() (*system.System, error) {
	sys := system.New()
	sys.SetPKw(sc.PKw)

	for _, a := range sc.Acids {
		acid, err := chem.NewAcid(a.PKa, a.Concentration, a.Labels)
		if err != nil {
			return nil, fmt.Errorf("acid %q: %w", a.Name, err)
		}
		if err := sys.AddAcid(a.Name, acid); err != nil {
			return nil, err
		}
	}
	for _, s := range sc.Spectators {
		label := s.Label
		if label == "" {
			label = s.Name
		}
		sp, err := chem.NewSpectator(label, s.Concentration)
		if err != nil {
			return nil, fmt.Errorf("spectator %q: %w", s.Name, err)
		}
		if err := sys.AddSpectator(s.Name, sp); err != nil {
			return nil, err
		}
	}
	for _, b := range sc.Balances {
		aux, err := sc.buildAuxiliary(sys, b)
		if err != nil {
			return nil, err
		}
		if _, err := sys.AddAuxiliary(aux, b.Name); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

func (sc *Scenario) buildAuxiliary(sys *system.System, b Balance) (chem.Auxiliary, error) {
	var aux chem.Auxiliary
	for j, term := range b.Terms {
		sp, err := resolveTerm(sys, term)
		if err != nil {
			return chem.Auxiliary{}, fmt.Errorf("balance %q term %d: %w", b.Name, j, err)
		}
		coeff := 1.0
		if term.Coefficient != nil {
			coeff = *term.Coefficient
		}
		aux = chem.Add(aux, chem.Scale(coeff, sp))
	}
	return aux, nil
}

func resolveTerm(sys *system.System, t Term) (chem.Species, error) {
	switch {
	case t.Solvent == "hydronium":
		return chem.Hydronium, nil
	case t.Solvent == "hydroxide":
		return chem.Hydroxide, nil
	case t.Acid != "":
		acid, ok := sys.Acid(t.Acid)
		if !ok {
			return chem.Species{}, fmt.Errorf("%w: unknown acid %q", chem.ErrConfig, t.Acid)
		}
		return acid.Species(t.Index)
	case t.Spectator != "":
		sp, ok := sys.Spectator(t.Spectator)
		if !ok {
			return chem.Species{}, fmt.Errorf("%w: unknown spectator %q", chem.ErrConfig, t.Spectator)
		}
		return sp.Species(), nil
	}
	return chem.Species{}, fmt.Errorf("%w: empty term", chem.ErrConfig)
}

// TitrationConfig translates the titration block into a solver
// configuration bound to the built system's balance.
func (sc *Scenario) TitrationConfig(sys *system.System) (*titrate.Config, error) {
	t := sc.Titration
	if t == nil {
		return nil, nil
	}
	balance, ok := sys.Auxiliary(t.Balance)
	if !ok {
		return nil, fmt.Errorf("%w: titration references unknown balance %q", chem.ErrConfig, t.Balance)
	}
	kind := titrate.TitrantBase
	if t.Titrant == "acid" {
		kind = titrate.TitrantAcid
	}
	cfg := &titrate.Config{
		Balance:              balance,
		InitialVolume:        t.InitialVolume,
		TitrantConcentration: t.TitrantConcentration,
		Titrant:              kind,
		Step:                 t.Step,
		MaxVolume:            t.MaxVolume,
	}
	if t.Dilution != nil && !*t.Dilution {
		cfg.NoDilution = true
	}
	return cfg, nil
}
