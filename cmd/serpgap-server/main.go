// serpgap-server is the continuous service: it watches an input directory
// for search-performance CSV exports, runs each one through the scoring
// pipeline, keeps results in a TTL store, and serves them over REST,
// WebSocket and Prometheus /metrics. Alert rules are evaluated on every
// processed batch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/serpgap/serpgap/internal/alerts"
	"github.com/serpgap/serpgap/internal/api"
	"github.com/serpgap/serpgap/internal/config"
	"github.com/serpgap/serpgap/internal/engine"
	"github.com/serpgap/serpgap/internal/metrics"
	"github.com/serpgap/serpgap/internal/store"
	"github.com/serpgap/serpgap/internal/table"
	"github.com/serpgap/serpgap/internal/watcher"
	"github.com/serpgap/serpgap/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("serpgap-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	engCfg, err := cfg.Engine.Runtime()
	if err != nil {
		slog.Error("invalid engine config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"input_dir", cfg.Server.InputDir,
		"batch_ttl", cfg.Server.BatchTTL,
		"auth_mode", cfg.Server.Auth.Mode,
		"alert_rules", len(cfg.Server.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Batch store with background TTL eviction.
	st := store.New(cfg.Server.BatchTTL)
	go st.Run(ctx)

	metrics.Init(st)

	// Alert engine — evaluates rules on every processed batch.
	alertEngine := alerts.New(cfg.Server.Alerts)

	// processFile is the single path from an export on disk to a stored,
	// alerted-on batch.
	processFile := func(path string) {
		t, err := table.ReadFile(path)
		if err != nil {
			slog.Error("failed to read export", "path", path, "err", err)
			return
		}

		summary := engine.Run(t, engCfg)
		id := batchID(path)

		if out := cfg.Server.OutputDir; out != "" {
			dst := filepath.Join(out, id+"_scored.csv")
			if err := os.MkdirAll(out, 0o755); err != nil {
				slog.Error("cannot create output dir", "dir", out, "err", err)
			} else if err := table.WriteFile(dst, t); err != nil {
				slog.Error("failed to write enriched CSV", "path", dst, "err", err)
			}
		}

		st.Put(&store.Batch{ID: id, Source: path, Table: t, Summary: summary})
		alertEngine.Evaluate(id, summary)

		slog.Info("batch processed",
			"batch", id,
			"rows", summary.Rows,
			"eligible", summary.Eligible,
			"actionable", summary.Actionable(),
			"cannibal_groups", summary.CannibalGroups,
			"duration", summary.Duration,
		)
	}

	// Input directory watcher — drives all processing.
	wtch, err := watcher.New(cfg.Server.InputDir, processFile)
	if err != nil {
		slog.Error("failed to set up input watcher", "err", err)
		os.Exit(1)
	}
	go func() {
		if err := wtch.Run(ctx); err != nil {
			slog.Error("input watcher stopped", "err", err)
		}
	}()

	// Watch config file for hot-reload (logs only in this phase; a restart
	// is required for engine or server changes to take effect).
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded — restart to apply engine changes",
				"alert_rules", len(updated.Server.Alerts.Rules))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts the overview to dashboard clients.
	hub := ws.New(st, alertEngine, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API + WebSocket + Prometheus metrics.
	authWrap := func(next http.Handler) http.Handler {
		return api.APIKeyMiddleware(
			cfg.Server.Auth.Mode,
			cfg.Server.Auth.EffectiveHeader(),
			cfg.Server.Auth.Key(),
			next,
		)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/", authWrap(api.New(st, alertEngine)))
	mux.Handle("/ws/stream", hub)
	mux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("serpgap-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// batchID derives the batch identifier from the export file name.
func batchID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
