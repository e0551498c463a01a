package persistence

import (
	"path/filepath"
	"testing"

	"github.com/openchem/phdiag/internal/chem"
	"github.com/openchem/phdiag/internal/system"
	"github.com/openchem/phdiag/internal/titrate"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSystem(t *testing.T) *system.System {
	t.Helper()
	sys := system.New()
	acid, err := chem.NewAcid([]float64{4.756}, 0.01, nil)
	if err != nil {
		t.Fatalf("NewAcid: %v", err)
	}
	if err := sys.AddAcid("acetic", acid); err != nil {
		t.Fatalf("AddAcid: %v", err)
	}
	return sys
}

func TestSaveDiagram_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	sys := testSystem(t)

	diagram, err := sys.LogDiagram(0, 14, 1)
	if err != nil {
		t.Fatalf("LogDiagram: %v", err)
	}

	id, err := db.SaveDiagram("acetic sweep", diagram)
	if err != nil {
		t.Fatalf("SaveDiagram: %v", err)
	}

	run, err := db.Run(id)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Kind != KindDiagram || run.Name != "acetic sweep" {
		t.Errorf("run = %+v, want diagram/acetic sweep", run)
	}

	samples, err := db.RunSamples(id)
	if err != nil {
		t.Fatalf("RunSamples: %v", err)
	}
	want := len(diagram.Series) * 15
	if len(samples) != want {
		t.Fatalf("want %d samples, got %d", want, len(samples))
	}

	// Samples come back grouped by series and ordered within it.
	seen := make(map[string]int)
	for _, s := range samples {
		if s.Ord != seen[s.Series] {
			t.Fatalf("series %q out of order: ord %d, want %d", s.Series, s.Ord, seen[s.Series])
		}
		seen[s.Series]++
	}
	if len(seen) != len(diagram.Series) {
		t.Errorf("want %d series back, got %d", len(diagram.Series), len(seen))
	}
}

func TestSaveTitration_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	res := titrate.Result{
		Points: []titrate.Point{
			{Volume: 0, PH: 3.39},
			{Volume: 0.005, PH: 4.76},
			{Volume: 0.010, PH: 8.23},
		},
	}
	id, err := db.SaveTitration("acetic vs NaOH", res)
	if err != nil {
		t.Fatalf("SaveTitration: %v", err)
	}

	run, err := db.Run(id)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Kind != KindTitration {
		t.Errorf("kind = %q, want %q", run.Kind, KindTitration)
	}

	samples, err := db.RunSamples(id)
	if err != nil {
		t.Fatalf("RunSamples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("want 3 samples, got %d", len(samples))
	}
	if samples[1].X != 0.005 || samples[1].Y != 4.76 {
		t.Errorf("sample[1] = %+v, want volume 0.005 / pH 4.76", samples[1])
	}
}

func TestRecentRuns(t *testing.T) {
	db := openTestDB(t)

	res := titrate.Result{Points: []titrate.Point{{Volume: 0, PH: 7}}}
	for i := 0; i < 3; i++ {
		if _, err := db.SaveTitration("run", res); err != nil {
			t.Fatalf("SaveTitration: %v", err)
		}
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("want 2 runs, got %d", len(runs))
	}
}

func TestRun_Missing(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Run("no-such-id"); err == nil {
		t.Errorf("want error for missing run")
	}
}
