// serpgap is the batch CLI: it reads one search-performance CSV export,
// runs the scoring and classification pipeline, and writes the enriched
// CSV back out.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/serpgap/serpgap/internal/config"
	"github.com/serpgap/serpgap/internal/engine"
	"github.com/serpgap/serpgap/internal/table"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional; defaults apply when empty)")
	inputPath := flag.String("input", "", "path to the performance CSV export (required)")
	outputPath := flag.String("output", "", "path for the enriched CSV (required)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *inputPath == "" || *outputPath == "" {
		slog.Error("both -input and -output are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	engCfg, err := cfg.Engine.Runtime()
	if err != nil {
		slog.Error("invalid engine config", "err", err)
		os.Exit(1)
	}

	t, err := table.ReadFile(*inputPath)
	if err != nil {
		var schemaErr *table.SchemaError
		if errors.As(err, &schemaErr) {
			slog.Error("export is missing a required column",
				"column", schemaErr.Column, "input", *inputPath)
			os.Exit(1)
		}
		slog.Error("failed to read export", "input", *inputPath, "err", err)
		os.Exit(1)
	}

	summary := engine.Run(t, engCfg)

	if err := table.WriteFile(*outputPath, t); err != nil {
		slog.Error("failed to write output", "output", *outputPath, "err", err)
		os.Exit(1)
	}

	slog.Info("batch processed",
		"input", *inputPath,
		"output", *outputPath,
		"rows", summary.Rows,
		"eligible", summary.Eligible,
		"defective", summary.Defective,
		"rescue", summary.Candidates[table.CandidateRescue],
		"scale", summary.Candidates[table.CandidateScale],
		"expand", summary.Candidates[table.CandidateExpand],
		"monitor", summary.Candidates[table.CandidateMonitor],
		"ignore", summary.Candidates[table.CandidateIgnore],
		"cannibal_groups", summary.CannibalGroups,
		"duration", summary.Duration,
	)
}
