package system

import (
	"fmt"
	"math"

	"github.com/openchem/phdiag/internal/chem"
)

// SolveOptions configures the root-finding bracket and stopping
// tolerance. Zero fields select the documented defaults: bracket
// [-2, 16], tolerance 1e-6 pH units.
type SolveOptions struct {
	BracketMin float64
	BracketMax float64
	Tolerance  float64
}

func (o SolveOptions) withDefaults() SolveOptions {
	if o.BracketMin == 0 && o.BracketMax == 0 {
		o.BracketMin = chem.DefaultBracketMin
		o.BracketMax = chem.DefaultBracketMax
	}
	if o.Tolerance == 0 {
		o.Tolerance = chem.DefaultTolerance
	}
	return o
}

// SolveEquality finds the pH at which first(pH) == second(pH) within
// this system, by bisection on the difference expression. Returns
// chem.ErrNoRoot when the difference does not change sign across the
// bracket.
func (s *System) SolveEquality(first, second chem.Operand, opts SolveOptions) (float64, error) {
	diff := chem.Sub(first, second)
	if err := s.validate(diff); err != nil {
		return 0, err
	}
	env := s.Env(0)
	f := func(pH float64) (float64, error) {
		return diff.Evaluate(env, pH)
	}
	o := opts.withDefaults()
	return Bisect(f, o.BracketMin, o.BracketMax, o.Tolerance)
}

// Bisect finds a root of f in [lo, hi] by interval halving. The
// function must change sign across the bracket; otherwise chem.ErrNoRoot
// is returned. Each call is independent; no state survives between
// solves.
func Bisect(f func(float64) (float64, error), lo, hi, tol float64) (float64, error) {
	if hi < lo {
		lo, hi = hi, lo
	}
	if tol <= 0 {
		tol = chem.DefaultTolerance
	}

	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return 0, fmt.Errorf("%w: [%g, %g]", chem.ErrNoRoot, lo, hi)
	}

	for hi-lo > tol {
		mid := 0.5 * (lo + hi)
		fmid, err := f(mid)
		if err != nil {
			return 0, err
		}
		if fmid == 0 {
			return mid, nil
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
