package system

import (
	"fmt"

	"github.com/openchem/phdiag/internal/chem"
)

// CurvePoint is one (pH, concentration) sample, the exact shape handed
// to an external plotting collaborator.
type CurvePoint struct {
	PH            float64 `json:"ph"`
	Concentration float64 `json:"concentration"`
}

// Series is a labeled curve: the label passes through unchanged for
// legend rendering.
type Series struct {
	Label  string       `json:"label"`
	Points []CurvePoint `json:"points"`
}

// SampleError records one failed sample of a sweep. Sweeps never abort
// on a per-sample failure; the partial result ships together with the
// errors.
type SampleError struct {
	Series string
	PH     float64
	Err    error
}

// Diagram holds every series of a full logarithmic-diagram sweep.
type Diagram struct {
	Series []Series      `json:"series"`
	Errors []SampleError `json:"-"`
}

// PHRange returns the sample grid [min, max] with the given step. The
// result is a pure function of its inputs; callers may reuse or rebuild
// it freely.
func PHRange(min, max, step float64) []float64 {
	if step <= 0 || max < min {
		return nil
	}
	n := int((max-min)/step) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, min+float64(i)*step)
	}
	return out
}

// SpeciesCurve samples the concentration of one deprotonation state of
// the named acid over the given pH values.
func (s *System) SpeciesCurve(name string, index int, phs []float64) ([]CurvePoint, error) {
	a, ok := s.acids[name]
	if !ok {
		return nil, fmt.Errorf("no acid named %q in system", name)
	}
	if index < 0 || index > a.NProtons() {
		return nil, &chem.DomainError{Index: index, NProtons: a.NProtons()}
	}
	points := make([]CurvePoint, 0, len(phs))
	for _, pH := range phs {
		c, err := a.Concentration(index, pH)
		if err != nil {
			return nil, err
		}
		points = append(points, CurvePoint{PH: pH, Concentration: c})
	}
	return points, nil
}

// AuxiliaryCurve samples a stored expression over the given pH values.
// Per-sample failures are collected and returned alongside the points
// that succeeded.
func (s *System) AuxiliaryCurve(name string, phs []float64) ([]CurvePoint, []SampleError, error) {
	aux, ok := s.auxiliaries[name]
	if !ok {
		return nil, nil, fmt.Errorf("no auxiliary named %q in system", name)
	}
	env := s.Env(0)
	points := make([]CurvePoint, 0, len(phs))
	var errs []SampleError
	for _, pH := range phs {
		v, err := aux.Evaluate(env, pH)
		if err != nil {
			errs = append(errs, SampleError{Series: name, PH: pH, Err: err})
			continue
		}
		points = append(points, CurvePoint{PH: pH, Concentration: v})
	}
	return points, errs, nil
}

// LogDiagram sweeps every tracked series over [min, max]: hydronium and
// hydroxide first, then each deprotonation state of each acid in
// insertion order, spectators, and finally the stored auxiliaries.
func (s *System) LogDiagram(min, max, step float64) (*Diagram, error) {
	phs := PHRange(min, max, step)
	if len(phs) == 0 {
		return nil, fmt.Errorf("%w: empty pH range [%g, %g] step %g", chem.ErrConfig, min, max, step)
	}

	d := &Diagram{}

	hydronium := Series{Label: chem.Hydronium.Label}
	hydroxide := Series{Label: chem.Hydroxide.Label}
	for _, pH := range phs {
		hydronium.Points = append(hydronium.Points, CurvePoint{PH: pH, Concentration: chem.HydroniumConcentration(pH)})
		hydroxide.Points = append(hydroxide.Points, CurvePoint{PH: pH, Concentration: chem.HydroxideConcentration(pH, s.pkw)})
	}
	d.Series = append(d.Series, hydronium, hydroxide)

	for _, name := range s.order {
		if a, ok := s.acids[name]; ok {
			for i := 0; i <= a.NProtons(); i++ {
				label, _ := a.Label(i)
				points, err := s.SpeciesCurve(name, i, phs)
				if err != nil {
					return nil, err
				}
				d.Series = append(d.Series, Series{Label: label, Points: points})
			}
			continue
		}
		sp := s.spectators[name]
		series := Series{Label: sp.Label()}
		for _, pH := range phs {
			series.Points = append(series.Points, CurvePoint{PH: pH, Concentration: sp.Concentration()})
		}
		d.Series = append(d.Series, series)
	}

	for _, name := range s.auxOrder {
		points, errs, err := s.AuxiliaryCurve(name, phs)
		if err != nil {
			return nil, err
		}
		d.Series = append(d.Series, Series{Label: name, Points: points})
		d.Errors = append(d.Errors, errs...)
	}

	return d, nil
}
