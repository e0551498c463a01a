// Package chem models aqueous acid-base equilibria: polyprotic acids,
// spectator ions, and linear combinations of species that evaluate to a
// concentration at a given pH.
package chem

// DefaultPKw is the water autoionization exponent at 25 °C.
// [H3O+][OH-] = 10^-pKw.
const DefaultPKw = 14.0

// Default root-finding window for pH solvers. The bracket is wider than
// the usual 0–14 scale so strongly acidic or basic mixtures still
// produce a sign change.
const (
	DefaultBracketMin = -2.0
	DefaultBracketMax = 16.0
	DefaultTolerance  = 1e-6
)

// ln10 converts decadic exponents to natural ones: 10^x = e^(x·ln10).
const ln10 = 2.302585092994045684
