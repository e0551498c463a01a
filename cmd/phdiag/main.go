// Command phdiag computes logarithmic acid-base diagrams and titration
// curves from a YAML scenario, optionally storing the results and
// serving them over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/openchem/phdiag/internal/api"
	"github.com/openchem/phdiag/internal/config"
	"github.com/openchem/phdiag/internal/persistence"
	"github.com/openchem/phdiag/internal/titrate"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to the YAML scenario file (required)")
	dbPath := flag.String("db", "", "SQLite file for storing runs (optional)")
	serve := flag.Bool("serve", false, "serve the system and stored runs over HTTP after computing")
	port := flag.Int("port", 8080, "HTTP port for -serve")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *scenarioPath == "" {
		slog.Error("no scenario file given, see -help")
		os.Exit(1)
	}

	sc, err := config.Load(*scenarioPath)
	if err != nil {
		slog.Error("failed to load scenario", "path", *scenarioPath, "error", err)
		os.Exit(1)
	}
	sys, err := sc.Build()
	if err != nil {
		slog.Error("failed to build system", "error", err)
		os.Exit(1)
	}
	slog.Info("system built",
		"species", len(sys.Names()),
		"balances", len(sys.AuxiliaryNames()),
		"pkw", sys.PKw(),
	)

	var db *persistence.DB
	if *dbPath != "" {
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", *dbPath)
	}

	// ── Diagram sweep ─────────────────────────────────────────────────
	if sw := sc.Sweep; sw != nil {
		diagram, err := sys.LogDiagram(sw.From, sw.To, sw.Step)
		if err != nil {
			slog.Error("sweep failed", "error", err)
			os.Exit(1)
		}
		samples := 0
		for _, s := range diagram.Series {
			samples += len(s.Points)
		}
		fmt.Printf("diagram: %s series, %s samples over pH [%g, %g]\n",
			humanize.Comma(int64(len(diagram.Series))),
			humanize.Comma(int64(samples)),
			sw.From, sw.To,
		)
		for _, e := range diagram.Errors {
			slog.Warn("sweep sample skipped", "series", e.Series, "ph", e.PH, "error", e.Err)
		}
		if db != nil {
			id, err := db.SaveDiagram(*scenarioPath, diagram)
			if err != nil {
				slog.Error("failed to save diagram", "error", err)
				os.Exit(1)
			}
			fmt.Printf("diagram stored as run %s\n", id)
		}
	}

	// ── Titration ─────────────────────────────────────────────────────
	if sc.Titration != nil {
		cfg, err := sc.TitrationConfig(sys)
		if err != nil {
			slog.Error("bad titration block", "error", err)
			os.Exit(1)
		}
		solver, err := titrate.New(sys, *cfg)
		if err != nil {
			slog.Error("failed to set up titration", "error", err)
			os.Exit(1)
		}
		res := solver.Run()
		fmt.Printf("titration: %s points (%s skipped)\n",
			humanize.Comma(int64(len(res.Points))),
			humanize.Comma(int64(len(res.Skipped))),
		)
		if n := len(res.Points); n > 0 {
			fmt.Printf("final point: %.4f L titrant, pH %.3f\n",
				res.Points[n-1].Volume, res.Points[n-1].PH)
		}
		for _, e := range res.Skipped {
			slog.Warn("titration step skipped", "volume", e.Volume, "error", e.Err)
		}
		if db != nil {
			id, err := db.SaveTitration(*scenarioPath, res)
			if err != nil {
				slog.Error("failed to save titration", "error", err)
				os.Exit(1)
			}
			fmt.Printf("titration stored as run %s\n", id)
		}
	}

	if !*serve {
		return
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{Sys: sys, DB: db, Port: *port}
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
}
