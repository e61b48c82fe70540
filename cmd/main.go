// jobradar-pipeline-service
//
// Periodic, fault-tolerant job-listing aggregation pipeline:
//   - pulls listings from external board APIs on a configurable cadence
//   - deduplicates by identity hash, scores and ghost-flags each listing
//   - persists new/changed records idempotently in PostgreSQL
//   - dispatches alerts across the enabled notification channels
//
// Partial failure of any single source or channel never aborts a cycle.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/cache"
	"jobradar/pipeline-service/internal/config"
	"jobradar/pipeline-service/internal/credstore"
	"jobradar/pipeline-service/internal/db"
	"jobradar/pipeline-service/internal/fetch"
	"jobradar/pipeline-service/internal/logger"
	"jobradar/pipeline-service/internal/metrics"
	"jobradar/pipeline-service/internal/model"
	"jobradar/pipeline-service/internal/notify"
	"jobradar/pipeline-service/internal/pipeline"
	"jobradar/pipeline-service/internal/scoring"
	"jobradar/pipeline-service/internal/source"
	"jobradar/pipeline-service/internal/store"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[pipeline-service] Config error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[pipeline-service] Logger error: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ──────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("postgres", zap.Error(err))
	}
	defer pool.Close()
	zlog.Info("postgres connected")

	// ── Redis ───────────────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zlog.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()
	zlog.Info("redis connected")

	// ── Pipeline wiring ─────────────────────────────────────────────────────
	respCache := cache.NewResponseCache()
	scoreCache := cache.NewScoreCache()
	fetcher := fetch.New(respCache, zlog)

	engine := scoring.NewEngine(scoring.Profile{
		Skills:         cfg.Skills,
		Locations:      cfg.Locations,
		RemoteOK:       cfg.RemoteOK,
		SalaryTarget:   cfg.SalaryTarget,
		AlertThreshold: cfg.AlertThreshold,
	})

	dispatcher := notify.NewDispatcher(
		credstore.NewRedisStore(rdb),
		[]notify.Sender{
			notify.NewSlackSender(),
			notify.NewDiscordSender(),
			notify.NewTeamsSender(),
			notify.NewTelegramSender(),
			notify.NewEmailSender(),
			notify.NewDesktopSender(zlog),
		},
		zlog,
	)

	var queries []source.Query
	for _, skill := range cfg.Skills {
		if len(cfg.Locations) == 0 {
			queries = append(queries, source.Query{Title: skill})
			continue
		}
		for _, loc := range cfg.Locations {
			queries = append(queries, source.Query{Title: skill, Location: loc})
		}
	}
	adapters := []source.Adapter{
		source.NewBoardAPI(source.BoardConfig{
			Name:    "adzuna",
			BaseURL: "https://api.adzuna.com/v1/api/jobs",
			AppID:   cfg.BoardAppID,
			AppKey:  cfg.BoardAppKey,
			Country: cfg.BoardCountry,
			Queries: queries,
		}, fetcher, zlog),
	}

	m := metrics.New()
	sched := pipeline.New(pipeline.Options{
		Sources:         adapters,
		Engine:          engine,
		Ghost:           scoring.NewGhostDetector(),
		ScoreCache:      scoreCache,
		Gateway:         store.NewPostgresGateway(pool),
		Dispatcher:      dispatcher,
		EnabledChannels: cfg.EnabledChannels,
		IntervalHours:   cfg.SearchIntervalHours,
		Metrics:         m,
		Logger:          zlog,
	})

	if err := sched.Start(ctx); err != nil {
		zlog.Fatal("scheduler start", zap.Error(err))
	}

	// ── HTTP surface ────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		m.ObserveCache(respCache.Stats())
		writeJSON(w, map[string]any{
			"responseCache": respCache.Stats(),
			"scoreCache":    map[string]int{"entries": scoreCache.Len()},
			"lastRun":       sched.LastResult(),
		})
	})
	mux.HandleFunc("/run", runHandler(sched.RunOnce))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		zlog.Info("listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	sched.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}
	zlog.Info("stopped")
}

// runHandler serves the on-demand "search now" trigger. Safe concurrently
// with the cron loop. The cycle runs on a context detached from the request:
// a client disconnect must not abort it mid-way.
func runHandler(run func(context.Context) *model.PipelineRunResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res := run(context.WithoutCancel(r.Context()))
		writeJSON(w, res)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "ok",
		"service": "pipeline-service",
		"version": version,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already out; nothing useful left to do.
		return
	}
}
