package chem

// Term is one (coefficient, species) pair of a linear expression.
type Term struct {
	Coefficient float64 `json:"coefficient"`
	Species     Species `json:"species"`
}

// Auxiliary is an immutable ordered linear combination of species. It is
// produced by the builder functions below; every operation returns a new
// value and never mutates an operand. Terms are kept in construction
// order without merging: evaluation is a commutative sum, so merging
// equal species would only matter for display.
type Auxiliary struct {
	terms []Term
}

// Operand is anything that can enter the expression algebra: a Species
// or an Auxiliary.
type Operand interface {
	Aux() Auxiliary
}

// Aux returns the expression itself, making Auxiliary an Operand.
func (a Auxiliary) Aux() Auxiliary { return a }

// Terms returns a copy of the term list.
func (a Auxiliary) Terms() []Term {
	return append([]Term(nil), a.terms...)
}

// Len returns the number of terms. A zero-term expression evaluates to 0
// at every pH.
func (a Auxiliary) Len() int { return len(a.terms) }

// Add returns x + y.
func Add(x, y Operand) Auxiliary {
	return concat(x.Aux(), y.Aux(), 1)
}

// Sub returns x - y.
func Sub(x, y Operand) Auxiliary {
	return concat(x.Aux(), y.Aux(), -1)
}

// Scale returns k·x.
func Scale(k float64, x Operand) Auxiliary {
	src := x.Aux().terms
	terms := make([]Term, len(src))
	for i, t := range src {
		terms[i] = Term{Coefficient: k * t.Coefficient, Species: t.Species}
	}
	return Auxiliary{terms: terms}
}

// Combine returns the sum of all operands.
func Combine(operands ...Operand) Auxiliary {
	var out Auxiliary
	for _, op := range operands {
		out = concat(out, op.Aux(), 1)
	}
	return out
}

func concat(a, b Auxiliary, sign float64) Auxiliary {
	terms := make([]Term, 0, len(a.terms)+len(b.terms))
	terms = append(terms, a.terms...)
	for _, t := range b.terms {
		terms = append(terms, Term{Coefficient: sign * t.Coefficient, Species: t.Species})
	}
	return Auxiliary{terms: terms}
}

// Evaluate computes the expression value at the given pH. Acid and
// spectator terms resolve through env.Lookup and are scaled by the
// dilution factor; solvent ions use their closed forms and are never
// diluted (their concentration is fixed by the pH itself).
func (a Auxiliary) Evaluate(env Env, pH float64) (float64, error) {
	var value float64
	for _, t := range a.terms {
		c, err := env.resolve(t.Species, pH)
		if err != nil {
			return 0, err
		}
		value += t.Coefficient * c
	}
	return value, nil
}
