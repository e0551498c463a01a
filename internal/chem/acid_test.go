package chem

import (
	"errors"
	"math"
	"testing"
)

func TestNewAcid_RejectsEmptyPKa(t *testing.T) {
	if _, err := NewAcid(nil, 0.1, nil); !errors.Is(err, ErrConfig) {
		t.Errorf("want ErrConfig for empty pKa list, got %v", err)
	}
}

func TestNewAcid_RejectsNegativeConcentration(t *testing.T) {
	if _, err := NewAcid([]float64{4.756}, -0.01, nil); !errors.Is(err, ErrConfig) {
		t.Errorf("want ErrConfig for negative concentration, got %v", err)
	}
}

func TestNewAcid_RejectsLabelCountMismatch(t *testing.T) {
	_, err := NewAcid([]float64{1.25, 4.14}, 0.05, []string{"only", "two"})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("want ErrConfig for label mismatch, got %v", err)
	}
}

func TestNewAcid_SortsPKa(t *testing.T) {
	a, err := NewAcid([]float64{7.2, 2.1, 12.3}, 0.1, nil)
	if err != nil {
		t.Fatalf("NewAcid: %v", err)
	}
	pka := a.PKa()
	if pka[0] != 2.1 || pka[1] != 7.2 || pka[2] != 12.3 {
		t.Errorf("pKa not sorted ascending: %v", pka)
	}
}

func TestConcentration_IndexOutOfRange(t *testing.T) {
	a, _ := NewAcid([]float64{4.756}, 0.01, nil)
	var derr *DomainError
	if _, err := a.Concentration(2, 7); !errors.As(err, &derr) {
		t.Errorf("want DomainError for index 2, got %v", err)
	}
	if _, err := a.Concentration(-1, 7); !errors.As(err, &derr) {
		t.Errorf("want DomainError for index -1, got %v", err)
	}
}

func TestConcentration_HalfDissociatedAtPKa(t *testing.T) {
	a, _ := NewAcid([]float64{4.756}, 0.01, nil)
	c, err := a.Concentration(1, 4.756)
	if err != nil {
		t.Fatalf("Concentration: %v", err)
	}
	if math.Abs(c-0.005) > 1e-9 {
		t.Errorf("at pH = pKa want [A-] = 0.005, got %g", c)
	}
}

func TestConcentration_MassBalance(t *testing.T) {
	a, _ := NewAcid([]float64{2.12, 7.21, 12.67}, 0.05, nil)
	for pH := -2.0; pH <= 16.0; pH += 0.25 {
		var sum float64
		for i := 0; i <= a.NProtons(); i++ {
			c, err := a.Concentration(i, pH)
			if err != nil {
				t.Fatalf("Concentration(%d, %g): %v", i, pH, err)
			}
			if c < 0 {
				t.Fatalf("negative concentration %g at index %d, pH %g", c, i, pH)
			}
			sum += c
		}
		if math.Abs(sum-0.05) > 1e-12 {
			t.Errorf("mass balance broken at pH %g: sum = %g, want 0.05", pH, sum)
		}
	}
}

func TestConcentration_DiproticExtremes(t *testing.T) {
	a, _ := NewAcid([]float64{1.25, 4.14}, 0.05, nil)

	c0, _ := a.Concentration(0, -1)
	if math.Abs(c0-0.05) > 1e-4 {
		t.Errorf("at pH -1 want fully protonated ≈ 0.05, got %g", c0)
	}
	c2, _ := a.Concentration(2, 14)
	if math.Abs(c2-0.05) > 1e-4 {
		t.Errorf("at pH 14 want fully deprotonated ≈ 0.05, got %g", c2)
	}
}

func TestConcentration_QualitativeMonotonicity(t *testing.T) {
	a, _ := NewAcid([]float64{1.25, 4.14}, 0.05, nil)
	prevFirst, prevLast := math.Inf(1), 0.0
	for pH := -2.0; pH <= 16.0; pH += 0.5 {
		first, _ := a.Concentration(0, pH)
		last, _ := a.Concentration(2, pH)
		if first > prevFirst+1e-12 {
			t.Errorf("fully protonated form increased with pH at %g", pH)
		}
		if last < prevLast-1e-12 {
			t.Errorf("fully deprotonated form decreased with pH at %g", pH)
		}
		prevFirst, prevLast = first, last
	}
}

func TestConcentration_ExtremePHStaysFinite(t *testing.T) {
	// Direct h^{-m} evaluation overflows for six steps at pH 60; the
	// log-space path must not.
	a, _ := NewAcid([]float64{1, 3, 5, 7, 9, 11}, 0.1, nil)
	for _, pH := range []float64{-50, -10, 60, 120} {
		var sum float64
		for i := 0; i <= a.NProtons(); i++ {
			c, err := a.Concentration(i, pH)
			if err != nil {
				t.Fatalf("Concentration(%d, %g): %v", i, pH, err)
			}
			if math.IsNaN(c) || math.IsInf(c, 0) {
				t.Fatalf("non-finite concentration %g at index %d, pH %g", c, i, pH)
			}
			sum += c
		}
		if math.Abs(sum-0.1) > 1e-9 {
			t.Errorf("mass balance broken at pH %g: sum = %g", pH, sum)
		}
	}
}

func TestConcentration_ZeroTotalConcentration(t *testing.T) {
	a, err := NewAcid([]float64{4.756}, 0, nil)
	if err != nil {
		t.Fatalf("NewAcid with Ca = 0: %v", err)
	}
	for _, pH := range []float64{0, 7, 14} {
		c, _ := a.Concentration(1, pH)
		if c != 0 {
			t.Errorf("want 0 concentration for Ca = 0, got %g at pH %g", c, pH)
		}
	}
}

func TestAutoLabels_MonoproticScheme(t *testing.T) {
	a, _ := NewAcid([]float64{4.756}, 0.01, nil)
	labels := a.Labels()
	if len(labels) != 2 {
		t.Fatalf("want 2 labels, got %d", len(labels))
	}
	// $HX$ then $X^-$ for some progressive letter X.
	if labels[0][0] != '$' || labels[0][1] != 'H' {
		t.Errorf("protonated label should start $H..., got %q", labels[0])
	}
	if labels[1][len(labels[1])-2] != '-' {
		t.Errorf("deprotonated label should carry a negative charge, got %q", labels[1])
	}
}

func TestAutoLabels_DiproticScheme(t *testing.T) {
	a, _ := NewAcid([]float64{1.25, 4.14}, 0.05, nil)
	labels := a.Labels()
	if len(labels) != 3 {
		t.Fatalf("want 3 labels, got %d", len(labels))
	}
	letter := labels[2][1] // $X^{2-}$
	want0 := "$H_{2}" + string(letter) + "$"
	want2 := "$" + string(letter) + "^{2-}$"
	if labels[0] != want0 {
		t.Errorf("want %q, got %q", want0, labels[0])
	}
	if labels[2] != want2 {
		t.Errorf("want %q, got %q", want2, labels[2])
	}
}

func TestSpecies_EqualityByIdentityAndIndex(t *testing.T) {
	a, _ := NewAcid([]float64{4.756}, 0.01, nil)
	b, _ := NewAcid([]float64{4.756}, 0.01, nil)

	a1, _ := a.Species(1)
	a1again, _ := a.Species(1)
	a0, _ := a.Species(0)
	b1, _ := b.Species(1)

	if a1 != a1again {
		t.Errorf("same acid, same index: handles should be equal")
	}
	if a1 == a0 {
		t.Errorf("same acid, different index: handles should differ")
	}
	if a1.AcidID == b1.AcidID {
		t.Errorf("distinct acids must not share an identity")
	}
}
