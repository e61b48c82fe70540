// Package pipeline contains the cancellable control loop that sequences one
// cycle: fetch from every source, score, persist, notify. No error in any
// single source, record or channel stops the others; every cycle completes
// and reports an itemized result.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/cache"
	"jobradar/pipeline-service/internal/identity"
	"jobradar/pipeline-service/internal/metrics"
	"jobradar/pipeline-service/internal/model"
	"jobradar/pipeline-service/internal/notify"
	"jobradar/pipeline-service/internal/scoring"
	"jobradar/pipeline-service/internal/source"
	"jobradar/pipeline-service/internal/store"
)

// Scheduler owns the interval loop and the single-cycle RunOnce path. Both
// the cron loop and on-demand callers ("search now") may invoke RunOnce
// concurrently; shared state is either internally synchronized (caches,
// gateway) or guarded by mu (last result).
type Scheduler struct {
	sources    []source.Adapter
	engine     *scoring.Engine
	ghost      *scoring.GhostDetector
	scoreCache *cache.ScoreCache
	gateway    store.Gateway
	dispatcher *notify.Dispatcher
	channels   []string
	metrics    *metrics.Metrics
	log        *zap.Logger

	cron     *cron.Cron
	interval time.Duration

	mu         sync.Mutex
	lastResult *model.PipelineRunResult

	inflight sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// Options bundles the collaborators for New.
type Options struct {
	Sources         []source.Adapter
	Engine          *scoring.Engine
	Ghost           *scoring.GhostDetector
	ScoreCache      *cache.ScoreCache
	Gateway         store.Gateway
	Dispatcher      *notify.Dispatcher
	EnabledChannels []string
	IntervalHours   int
	Metrics         *metrics.Metrics // optional
	Logger          *zap.Logger
}

// New constructs a Scheduler. It does not start the loop.
func New(opts Options) *Scheduler {
	return &Scheduler{
		sources:    opts.Sources,
		engine:     opts.Engine,
		ghost:      opts.Ghost,
		scoreCache: opts.ScoreCache,
		gateway:    opts.Gateway,
		dispatcher: opts.Dispatcher,
		channels:   opts.EnabledChannels,
		metrics:    opts.Metrics,
		log:        opts.Logger.Named("pipeline"),
		cron:       cron.New(),
		interval:   time.Duration(opts.IntervalHours) * time.Hour,
		done:       make(chan struct{}),
	}
}

// Start runs one cycle immediately, then repeats every interval. Shutdown is
// observed only between cycles: a cycle in progress always runs to
// completion.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		select {
		case <-s.done:
			return
		default:
		}
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	// Populate the feed without waiting for the first tick. Added to
	// inflight here so a Shutdown racing the goroutine still waits for it.
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Shutdown stops future cycles and waits for every cycle in flight,
// including the startup cycle and on-demand runs. Idempotent; a running
// cycle is never aborted.
func (s *Scheduler) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.done)
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.inflight.Wait()
		s.log.Info("scheduler stopped")
	})
}

// Done is closed once Shutdown has been requested.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// LastResult returns the most recent cycle result, or nil before any cycle.
func (s *Scheduler) LastResult() *model.PipelineRunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// RunOnce executes one full cycle: fetch → score → sort → persist → notify.
func (s *Scheduler) RunOnce(ctx context.Context) *model.PipelineRunResult {
	s.inflight.Add(1)
	defer s.inflight.Done()

	res := &model.PipelineRunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := s.log.With(zap.String("runId", res.RunID))
	log.Info("cycle started", zap.Int("sources", len(s.sources)))

	records := s.collect(ctx, log, res)
	res.RecordsFound = len(records)

	// Boards overlap; the identity hash is the only dedup key. Folding
	// duplicates here keeps a listing carried by two sources from being
	// upserted and alerted twice in the same cycle.
	records = dedupeByIdentity(records)

	s.scoreAll(records)

	// Highest-value matches are persisted and notified first. Stable sort
	// keeps the original order on ties.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score.Total > records[j].Score.Total
	})

	s.persistAll(ctx, log, res, records)
	s.alertAll(ctx, log, res, records)

	res.FinishedAt = time.Now()
	log.Info("cycle complete",
		zap.Int("found", res.RecordsFound),
		zap.Int("new", res.RecordsNew),
		zap.Int("updated", res.RecordsUpdated),
		zap.Int("highMatches", res.HighMatches),
		zap.Int("alertsSent", res.AlertsSent),
		zap.Int("errors", len(res.Errors)),
	)

	if s.metrics != nil {
		s.metrics.ObserveRun(res)
	}

	s.mu.Lock()
	s.lastResult = res
	s.mu.Unlock()
	return res
}

// collect invokes every adapter, assigns identity hashes and merges the
// results. A failing adapter contributes an error, never aborts the cycle.
func (s *Scheduler) collect(ctx context.Context, log *zap.Logger, res *model.PipelineRunResult) []*model.Record {
	var merged []*model.Record
	for _, adapter := range s.sources {
		recs, err := adapter.Fetch(ctx)
		if err != nil {
			log.Error("source failed", zap.String("source", adapter.Name()), zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("source %s: %v", adapter.Name(), err))
			continue
		}
		for _, rec := range recs {
			rec.IdentityHash = identity.Hash(rec.Company, rec.Title, rec.Location, rec.URL)
		}
		merged = append(merged, recs...)
	}
	return merged
}

// dedupeByIdentity keeps the first sighting of each identity hash, preserving
// order otherwise.
func dedupeByIdentity(records []*model.Record) []*model.Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if _, ok := seen[rec.IdentityHash]; ok {
			continue
		}
		seen[rec.IdentityHash] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// scoreAll attaches a score to every record, consulting the score cache
// before computing.
func (s *Scheduler) scoreAll(records []*model.Record) {
	for _, rec := range records {
		key := cache.ScoreKey(rec.IdentityHash, scoring.ContextVersion)
		if cached, ok := s.scoreCache.Get(key); ok {
			sc := cached
			rec.Score = &sc
			continue
		}
		sc := s.engine.Score(rec)
		s.scoreCache.Set(key, sc)
		rec.Score = &sc
	}
}

// persistAll annotates each record with its ghost report and upserts it.
// Gateway lookups degrade to zero counts on error rather than dropping the
// record.
func (s *Scheduler) persistAll(ctx context.Context, log *zap.Logger, res *model.PipelineRunResult, records []*model.Record) {
	for _, rec := range records {
		repost, err := s.gateway.GetRepostCount(ctx, rec.Company, rec.Title, rec.Source, rec.IdentityHash)
		if err != nil {
			log.Warn("repost count lookup failed", zap.String("identityHash", rec.IdentityHash), zap.Error(err))
		}
		open, err := s.gateway.CountCompanyOpenJobs(ctx, rec.Company)
		if err != nil {
			log.Warn("open-jobs lookup failed", zap.String("company", rec.Company), zap.Error(err))
		}

		ghost := s.ghost.Analyze(rec, repost, open)
		rec.Ghost = &ghost
		rec.RepostCount = repost

		created, err := s.gateway.UpsertByIdentity(ctx, rec)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("upsert %s: %v", rec.IdentityHash, err))
			continue
		}
		if created {
			res.RecordsNew++
		} else {
			res.RecordsUpdated++
		}
	}
}

// alertAll dispatches every alert-worthy record that has not alerted yet.
// The persisted alert_sent flag, refreshed by the upsert, gates redelivery;
// MarkAlertSent is conditional so overlapping cycles cannot double-send.
func (s *Scheduler) alertAll(ctx context.Context, log *zap.Logger, res *model.PipelineRunResult, records []*model.Record) {
	for _, rec := range records {
		if rec.Score == nil || !s.engine.ShouldAlertImmediately(rec.Score.Total) {
			continue
		}
		res.HighMatches++
		if rec.AlertSent {
			continue
		}

		if _, err := s.dispatcher.SendAlert(ctx, rec, s.channels); err != nil {
			// Left unsent on purpose: the next cycle retries.
			res.Errors = append(res.Errors, fmt.Sprintf("alert %s: %v", rec.IdentityHash, err))
			continue
		}
		if err := s.gateway.MarkAlertSent(ctx, rec.IdentityHash); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("mark alert %s: %v", rec.IdentityHash, err))
			continue
		}
		rec.AlertSent = true
		res.AlertsSent++
	}
}
