// Package api serves a built equilibrium system over HTTP: the declared
// species, on-demand diagram sweeps and balance solves, and the stored
// runs. All endpoints are GET and read-only.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/openchem/phdiag/internal/chem"
	"github.com/openchem/phdiag/internal/persistence"
	"github.com/openchem/phdiag/internal/system"
)

// Server serves one equilibrium system over HTTP. DB may be nil, in
// which case the run endpoints report 404.
type Server struct {
	Sys  *system.System
	DB   *persistence.DB
	Port int
}

// Handler assembles the route table. Split from Start so tests can
// drive the mux directly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/species", s.handleSpecies)
	mux.HandleFunc("/api/v1/diagram", s.handleDiagram)
	mux.HandleFunc("/api/v1/solve", s.handleSolve)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/run/", s.handleRunDetail)
	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "store", s.DB != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

type acidInfo struct {
	Name          string    `json:"name"`
	PKa           []float64 `json:"pka"`
	Concentration float64   `json:"concentration"`
	Labels        []string  `json:"labels"`
}

type spectatorInfo struct {
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	Concentration float64 `json:"concentration"`
}

// handleSpecies lists everything the system tracks.
func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	acids := []acidInfo{}
	spectators := []spectatorInfo{}
	for _, name := range s.Sys.Names() {
		if a, ok := s.Sys.Acid(name); ok {
			acids = append(acids, acidInfo{
				Name:          name,
				PKa:           a.PKa(),
				Concentration: a.TotalConcentration(),
				Labels:        a.Labels(),
			})
			continue
		}
		if sp, ok := s.Sys.Spectator(name); ok {
			spectators = append(spectators, spectatorInfo{
				Name:          name,
				Label:         sp.Label(),
				Concentration: sp.Concentration(),
			})
		}
	}

	writeJSON(w, map[string]any{
		"pkw":        s.Sys.PKw(),
		"acids":      acids,
		"spectators": spectators,
		"balances":   s.Sys.AuxiliaryNames(),
	})
}

// handleDiagram runs a sweep over min/max/step query parameters, all
// optional (defaults 0, 14, 0.1).
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	min := queryFloat(r, "min", 0)
	max := queryFloat(r, "max", 14)
	step := queryFloat(r, "step", 0.1)

	d, err := s.Sys.LogDiagram(min, max, step)
	if err != nil {
		if errors.Is(err, chem.ErrConfig) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, d)
}

// handleSolve finds the pH where the named balance is zero.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("balance")
	if name == "" {
		http.Error(w, "missing balance parameter", http.StatusBadRequest)
		return
	}
	balance, ok := s.Sys.Auxiliary(name)
	if !ok {
		http.Error(w, fmt.Sprintf("no balance named %q", name), http.StatusNotFound)
		return
	}

	pH, err := s.Sys.SolveEquality(balance, chem.Auxiliary{}, system.SolveOptions{})
	if err != nil {
		if errors.Is(err, chem.ErrNoRoot) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"balance": name, "ph": pH})
}

// handleRuns lists the stored runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no run store configured", http.StatusNotFound)
		return
	}
	limit := int(queryFloat(r, "limit", 20))
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// handleRunDetail returns one run with its data points.
func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no run store configured", http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/run/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "bad run id", http.StatusBadRequest)
		return
	}

	run, err := s.DB.Run(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("run %s not found", id), http.StatusNotFound)
		return
	}
	samples, err := s.DB.RunSamples(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"run": run, "samples": samples})
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
