// Package titrate steps a titration forward and solves the solution pH
// at each titrant volume by root-finding on a charge/proton balance.
package titrate

import (
	"fmt"
	"math"

	"github.com/openchem/phdiag/internal/chem"
	"github.com/openchem/phdiag/internal/system"
)

// State tracks the solver lifecycle.
type State uint8

const (
	StateNotStarted State = iota
	StateStepping
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateStepping:
		return "stepping"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Kind selects the titrant sign convention. The solver adds one
// spectator-like term C_t·V_t/(V0+V_t) to the supplied balance: with a
// base titrant its counter-cation joins the positive side (+), with an
// acid titrant its counter-anion the negative side (-). The balance
// expression itself is never rewritten; an analyte sharing an ion with
// the titrant must be accounted for in the expression the caller builds.
type Kind uint8

const (
	TitrantBase Kind = iota
	TitrantAcid
)

// Config describes one titration run.
type Config struct {
	// Balance is the protonic/charge balance set to zero, built without
	// the titrant term.
	Balance chem.Auxiliary

	// InitialVolume V0 of the analyte solution, in liters. Must be > 0.
	InitialVolume float64

	// TitrantConcentration C_t, in mol/L. Must be > 0.
	TitrantConcentration float64

	// Titrant selects the sign convention above.
	Titrant Kind

	// Step is the titrant volume increment per emitted point, in
	// liters. Must be > 0.
	Step float64

	// MaxVolume is the total titrant volume to deliver, in liters.
	MaxVolume float64

	// NoDilution disables the V0/(V0+Vt) scaling of declared
	// concentrations. Dilution is applied by default.
	NoDilution bool

	// Root-finding overrides; zero values select the defaults
	// (bracket [-2, 16], tolerance 1e-6).
	BracketMin float64
	BracketMax float64
	Tolerance  float64
}

// Point is one emitted (titrant volume, pH) sample.
type Point struct {
	Volume float64 `json:"volume"`
	PH     float64 `json:"ph"`
}

// StepError records a titrant volume whose balance could not be solved.
// The run continues past it.
type StepError struct {
	Volume float64
	Err    error
}

// Result is the outcome of a full run.
type Result struct {
	Points  []Point
	Skipped []StepError
}

// flatTolerance bounds the balance magnitude below which a bracket with
// no sign change is treated as the degenerate all-zero balance (pure
// water before any titrant) rather than a failure.
const flatTolerance = 1e-20

// Solver walks titrant volumes from 0 to MaxVolume in Step increments,
// solving the balance at each. Steps are independent: every solve
// starts from the full default bracket.
type Solver struct {
	sys   *system.System
	cfg   Config
	state State

	// OnPoint, when set, is invoked for every emitted point.
	OnPoint func(Point)
}

// New validates the configuration against the system and returns a
// solver in StateNotStarted.
func New(sys *system.System, cfg Config) (*Solver, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", chem.ErrConfig)
	}
	if cfg.InitialVolume <= 0 || math.IsNaN(cfg.InitialVolume) || math.IsInf(cfg.InitialVolume, 0) {
		return nil, fmt.Errorf("%w: initial volume must be positive, got %v", chem.ErrConfig, cfg.InitialVolume)
	}
	if cfg.TitrantConcentration <= 0 {
		return nil, fmt.Errorf("%w: titrant concentration must be positive, got %v", chem.ErrConfig, cfg.TitrantConcentration)
	}
	if cfg.Step <= 0 {
		return nil, fmt.Errorf("%w: volume step must be positive, got %v", chem.ErrConfig, cfg.Step)
	}
	if cfg.MaxVolume < 0 {
		return nil, fmt.Errorf("%w: max volume must be non-negative, got %v", chem.ErrConfig, cfg.MaxVolume)
	}
	if cfg.BracketMin == 0 && cfg.BracketMax == 0 {
		cfg.BracketMin = chem.DefaultBracketMin
		cfg.BracketMax = chem.DefaultBracketMax
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = chem.DefaultTolerance
	}
	if _, err := sys.Evaluate(cfg.Balance, 7.0); err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	return &Solver{sys: sys, cfg: cfg}, nil
}

// State returns the current lifecycle state.
func (s *Solver) State() State { return s.state }

// Run steps the full volume range and returns every solved point plus
// the steps that had to be skipped. The solver ends in StateDone.
func (s *Solver) Run() Result {
	s.state = StateStepping

	var res Result
	steps := int(math.Floor(s.cfg.MaxVolume/s.cfg.Step + 0.5))
	for i := 0; i <= steps; i++ {
		vt := float64(i) * s.cfg.Step
		if vt > s.cfg.MaxVolume {
			vt = s.cfg.MaxVolume
		}
		pH, err := s.solveAt(vt)
		if err != nil {
			res.Skipped = append(res.Skipped, StepError{Volume: vt, Err: err})
			continue
		}
		p := Point{Volume: vt, PH: pH}
		res.Points = append(res.Points, p)
		if s.OnPoint != nil {
			s.OnPoint(p)
		}
	}

	s.state = StateDone
	return res
}

// solveAt solves the balance at one titrant volume.
func (s *Solver) solveAt(vt float64) (float64, error) {
	dilution := 1.0
	if !s.cfg.NoDilution {
		dilution = s.cfg.InitialVolume / (s.cfg.InitialVolume + vt)
	}
	titrant := s.cfg.TitrantConcentration * vt / (s.cfg.InitialVolume + vt)
	if s.cfg.Titrant == TitrantAcid {
		titrant = -titrant
	}

	env := chem.Env{PKw: s.sys.PKw(), Dilution: dilution, Lookup: s.sys}
	balance := func(pH float64) (float64, error) {
		v, err := s.cfg.Balance.Evaluate(env, pH)
		if err != nil {
			return 0, err
		}
		return v + titrant, nil
	}

	if s.isFlat(balance) {
		// Degenerate balance: nothing but water. Fall back to the
		// autoionization equality [H3O+] = [OH-].
		return s.sys.PKw() / 2, nil
	}
	return system.Bisect(balance, s.cfg.BracketMin, s.cfg.BracketMax, s.cfg.Tolerance)
}

// isFlat reports whether the balance is negligible across the bracket.
func (s *Solver) isFlat(balance func(float64) (float64, error)) bool {
	for _, pH := range []float64{s.cfg.BracketMin, 0.5 * (s.cfg.BracketMin + s.cfg.BracketMax), s.cfg.BracketMax} {
		v, err := balance(pH)
		if err != nil || math.Abs(v) > flatTolerance {
			return false
		}
	}
	return true
}
