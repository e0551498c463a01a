package chem

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
)

// acidIDs allocates process-unique acid identities, used as the registry
// key that species handles carry.
var acidIDs atomic.Uint64

// Acid encodes a mono- or polyprotic acid: its stepwise pKa values and
// total (analytical) concentration. The number of acidic protons n is
// the length of the pKa list; deprotonation index 0 is the fully
// protonated form and index n the fully deprotonated one. Immutable
// after construction, so every query is a pure function of pH.
type Acid struct {
	id     uint64
	pka    []float64
	ca     float64
	labels []string
	lnBeta []float64 // lnBeta[j] = ln(β_j), β_0 = 1, β_j = β_{j-1}·Ka_j
}

// NewAcid builds an acid from its pKa values and total concentration.
// The pKa list is sorted ascending so index semantics hold regardless of
// input order. labels may be nil, in which case display labels are
// generated per deprotonation state ($H_2A$, $HA^-$, $A^{2-}$, ... with
// a progressive letter per acid); when provided there must be exactly
// n+1 of them, protonated form first.
func NewAcid(pka []float64, concentration float64, labels []string) (*Acid, error) {
	if len(pka) == 0 {
		return nil, fmt.Errorf("%w: at least one pKa value required", ErrConfig)
	}
	for _, p := range pka {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: pKa values must be finite, got %v", ErrConfig, p)
		}
	}
	if concentration < 0 || math.IsNaN(concentration) || math.IsInf(concentration, 0) {
		return nil, fmt.Errorf("%w: concentration must be finite and non-negative, got %v", ErrConfig, concentration)
	}
	if labels != nil && len(labels) != len(pka)+1 {
		return nil, fmt.Errorf("%w: %d labels provided for %d deprotonation states",
			ErrConfig, len(labels), len(pka)+1)
	}

	sorted := append([]float64(nil), pka...)
	sort.Float64s(sorted)

	lnBeta := make([]float64, len(sorted)+1)
	for j, p := range sorted {
		lnBeta[j+1] = lnBeta[j] - ln10*p
	}

	id := acidIDs.Add(1)
	if labels == nil {
		labels = autoLabels(len(sorted), id)
	} else {
		labels = append([]string(nil), labels...)
	}

	return &Acid{
		id:     id,
		pka:    sorted,
		ca:     concentration,
		labels: labels,
		lnBeta: lnBeta,
	}, nil
}

// ID returns the registry identity of the acid.
func (a *Acid) ID() uint64 { return a.id }

// NProtons returns the number of acidic protons n.
func (a *Acid) NProtons() int { return len(a.pka) }

// TotalConcentration returns the analytical concentration Ca.
func (a *Acid) TotalConcentration() float64 { return a.ca }

// PKa returns a copy of the sorted pKa values.
func (a *Acid) PKa() []float64 { return append([]float64(nil), a.pka...) }

// Labels returns a copy of the display labels, protonated form first.
func (a *Acid) Labels() []string { return append([]string(nil), a.labels...) }

// Label returns the display label of one deprotonation state.
func (a *Acid) Label(index int) (string, error) {
	if index < 0 || index > a.NProtons() {
		return "", &DomainError{Index: index, NProtons: a.NProtons()}
	}
	return a.labels[index], nil
}

// Species returns the handle for the state reached after index
// deprotonations.
func (a *Acid) Species(index int) (Species, error) {
	if index < 0 || index > a.NProtons() {
		return Species{}, &DomainError{Index: index, NProtons: a.NProtons()}
	}
	return Species{Kind: SpeciesAcid, AcidID: a.id, Index: index, Label: a.labels[index]}, nil
}

// Concentration returns the equilibrium concentration of the state with
// the given deprotonation index at the given pH:
//
//	[H_{n-i}A^{i-}] = Ca · β_i·h^{-i} / Σ_m β_m·h^{-m},  h = 10^-pH
//
// Evaluated in log space with a max-shift before exponentiating, so
// h^{-m} never overflows for many dissociation steps or extreme pH.
func (a *Acid) Concentration(index int, pH float64) (float64, error) {
	if index < 0 || index > a.NProtons() {
		return 0, &DomainError{Index: index, NProtons: a.NProtons()}
	}
	if a.ca == 0 {
		return 0, nil
	}

	logTerms := make([]float64, len(a.lnBeta))
	maxTerm := math.Inf(-1)
	for m := range a.lnBeta {
		lt := a.lnBeta[m] + ln10*float64(m)*pH
		logTerms[m] = lt
		if lt > maxTerm {
			maxTerm = lt
		}
	}

	var sum float64
	for _, lt := range logTerms {
		sum += math.Exp(lt - maxTerm)
	}
	return a.ca * math.Exp(logTerms[index]-maxTerm) / sum, nil
}

// autoLabels generates per-state display labels in the scheme of the
// classic logarithmic-diagram notation, e.g. $H_{2}B$, $HB^-$, $B^{2-}$.
// The letter advances with the acid identity.
func autoLabels(n int, id uint64) []string {
	letter := string(rune('A' + (id-1)%26))
	labels := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		var b strings.Builder
		b.WriteString("$")
		if n-i > 0 {
			b.WriteString("H")
		}
		if n-i > 1 {
			fmt.Fprintf(&b, "_{%d}", n-i)
		}
		b.WriteString(letter)
		switch {
		case i == 1:
			b.WriteString("^-")
		case i > 1:
			fmt.Fprintf(&b, "^{%d-}", i)
		}
		b.WriteString("$")
		labels = append(labels, b.String())
	}
	return labels
}
