package system

import (
	"errors"
	"math"
	"testing"

	"github.com/openchem/phdiag/internal/chem"
)

func mustAcid(t *testing.T, pka []float64, ca float64) *chem.Acid {
	t.Helper()
	a, err := chem.NewAcid(pka, ca, nil)
	if err != nil {
		t.Fatalf("NewAcid: %v", err)
	}
	return a
}

func mustSpecies(t *testing.T, a *chem.Acid, index int) chem.Species {
	t.Helper()
	sp, err := a.Species(index)
	if err != nil {
		t.Fatalf("Species(%d): %v", index, err)
	}
	return sp
}

func TestAddAcid_DuplicateName(t *testing.T) {
	s := New()
	if err := s.AddAcid("acetic", mustAcid(t, []float64{4.756}, 0.01)); err != nil {
		t.Fatalf("AddAcid: %v", err)
	}
	err := s.AddAcid("acetic", mustAcid(t, []float64{4.756}, 0.01))
	if !errors.Is(err, chem.ErrDuplicateName) {
		t.Errorf("want ErrDuplicateName, got %v", err)
	}
	// Names are unique across kinds too.
	sp, _ := chem.NewSpectator("$Cl^-$", 0.01)
	if err := s.AddSpectator("acetic", sp); !errors.Is(err, chem.ErrDuplicateName) {
		t.Errorf("want ErrDuplicateName across kinds, got %v", err)
	}
}

func TestNames_InsertionOrder(t *testing.T) {
	s := New()
	s.AddAcid("phosphoric", mustAcid(t, []float64{2.12, 7.21, 12.67}, 0.05))
	cl, _ := chem.NewSpectator("$Cl^-$", 0.01)
	s.AddSpectator("chloride", cl)
	s.AddAcid("acetic", mustAcid(t, []float64{4.756}, 0.01))

	names := s.Names()
	want := []string{"phosphoric", "chloride", "acetic"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestAddAuxiliary_ValidatesReferences(t *testing.T) {
	s := New()
	outsider := mustAcid(t, []float64{4.756}, 0.01) // never registered
	sp := mustSpecies(t, outsider, 1)

	var rerr *chem.ResolutionError
	if _, err := s.AddAuxiliary(sp.Aux(), "bad"); !errors.As(err, &rerr) {
		t.Errorf("want ResolutionError for unregistered acid, got %v", err)
	}
}

func TestAddAuxiliary_AutoNaming(t *testing.T) {
	s := New()
	name1, err := s.AddAuxiliary(chem.Hydronium.Aux(), "")
	if err != nil {
		t.Fatalf("AddAuxiliary: %v", err)
	}
	name2, _ := s.AddAuxiliary(chem.Hydroxide.Aux(), "")
	if name1 != "aux. 1" || name2 != "aux. 2" {
		t.Errorf("auto names = %q, %q; want \"aux. 1\", \"aux. 2\"", name1, name2)
	}
	if _, err := s.AddAuxiliary(chem.Hydronium.Aux(), "aux. 1"); !errors.Is(err, chem.ErrDuplicateName) {
		t.Errorf("want ErrDuplicateName for reused auxiliary name, got %v", err)
	}
}

func TestSpeciesCurve_Restartable(t *testing.T) {
	s := New()
	s.AddAcid("acetic", mustAcid(t, []float64{4.756}, 0.01))
	phs := PHRange(0, 14, 0.5)

	first, err := s.SpeciesCurve("acetic", 1, phs)
	if err != nil {
		t.Fatalf("SpeciesCurve: %v", err)
	}
	second, err := s.SpeciesCurve("acetic", 1, phs)
	if err != nil {
		t.Fatalf("SpeciesCurve: %v", err)
	}
	if len(first) != len(phs) {
		t.Fatalf("want %d points, got %d", len(phs), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sweep not restartable: point %d differs", i)
		}
	}
}

func TestLogDiagram_SeriesOrderAndLabels(t *testing.T) {
	s := New()
	labels := []string{"$CH_3COOH$", "$CH_3COO^-$"}
	acid, err := chem.NewAcid([]float64{4.756}, 0.01, labels)
	if err != nil {
		t.Fatalf("NewAcid: %v", err)
	}
	s.AddAcid("acetic", acid)
	cl, _ := chem.NewSpectator("$Cl^-$", 0.01)
	s.AddSpectator("chloride", cl)
	s.AddAuxiliary(chem.Add(chem.Hydronium, chem.Hydroxide), "balance")

	d, err := s.LogDiagram(0, 14, 0.1)
	if err != nil {
		t.Fatalf("LogDiagram: %v", err)
	}
	want := []string{"$H_3O^+$", "$OH^-$", "$CH_3COOH$", "$CH_3COO^-$", "$Cl^-$", "balance"}
	if len(d.Series) != len(want) {
		t.Fatalf("want %d series, got %d", len(want), len(d.Series))
	}
	for i, label := range want {
		if d.Series[i].Label != label {
			t.Errorf("series[%d].Label = %q, want %q", i, d.Series[i].Label, label)
		}
	}
	if len(d.Errors) != 0 {
		t.Errorf("unexpected sample errors: %v", d.Errors)
	}
}

func TestSolveEquality_StrongElectrolyte(t *testing.T) {
	// 0.01 M strong acid: [H3O+] = [OH-] + [Cl-] at pH ≈ 2.00.
	s := New()
	cl, _ := chem.NewSpectator("$Cl^-$", 0.01)
	s.AddSpectator("chloride", cl)

	pH, err := s.SolveEquality(chem.Hydronium, chem.Add(chem.Hydroxide, cl.Species()), SolveOptions{})
	if err != nil {
		t.Fatalf("SolveEquality: %v", err)
	}
	if math.Abs(pH-2.00) > 1e-3 {
		t.Errorf("pH = %g, want ≈ 2.00", pH)
	}
}

func TestSolveEquality_AceticProtonicBalance(t *testing.T) {
	// 0.01 M acetic acid: [H3O+] = [OH-] + [Ac-]; pH ≈ 3.39.
	s := New()
	acid := mustAcid(t, []float64{4.756}, 0.01)
	s.AddAcid("acetic", acid)
	ac := mustSpecies(t, acid, 1)

	pH, err := s.SolveEquality(chem.Hydronium, chem.Add(chem.Hydroxide, ac), SolveOptions{})
	if err != nil {
		t.Fatalf("SolveEquality: %v", err)
	}
	if math.Abs(pH-3.39) > 0.01 {
		t.Errorf("pH = %g, want ≈ 3.39", pH)
	}
}
