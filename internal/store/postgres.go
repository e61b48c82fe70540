// Package store implements the persistence gateway over PostgreSQL. The
// job_listings table carries a uniqueness constraint on identity_hash; that
// constraint is what makes cross-cycle deduplication and alert idempotence
// hold even when cycles overlap.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobradar/pipeline-service/internal/model"
)

// Gateway is the persistence interface consumed by the pipeline scheduler.
type Gateway interface {
	// UpsertByIdentity inserts the record or, when its identity hash already
	// exists, refreshes it (times_seen increment, last_seen_at touch). The
	// record's TimesSeen and AlertSent fields are updated from the stored
	// row; created reports whether the hash was new.
	UpsertByIdentity(ctx context.Context, rec *model.Record) (created bool, err error)
	GetByIdentity(ctx context.Context, hash string) (*model.Record, bool, error)
	// MarkAlertSent is a conditional update: a no-op when the flag is
	// already set, so overlapping cycles cannot both "win".
	MarkAlertSent(ctx context.Context, hash string) error
	// GetRepostCount counts stored listings of the same role from the same
	// source under an identity hash other than excludeHash.
	GetRepostCount(ctx context.Context, company, title, source, excludeHash string) (int, error)
	CountCompanyOpenJobs(ctx context.Context, company string) (int, error)
}

// PostgresGateway implements Gateway on a pgx pool.
type PostgresGateway struct {
	pool *pgxpool.Pool
}

// NewPostgresGateway wraps an established pool.
func NewPostgresGateway(pool *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{pool: pool}
}

// UpsertByIdentity relies on the identity_hash unique constraint: the insert
// path sets times_seen = 1, the conflict path increments it, and the returned
// counter classifies the sighting as new or repeat.
func (g *PostgresGateway) UpsertByIdentity(ctx context.Context, rec *model.Record) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	row := g.pool.QueryRow(ctx,
		`INSERT INTO job_listings
		     (identity_hash, company, title, location, source, url,
		      score, ghost_score, raw_data, times_seen,
		      created_at, updated_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, 1, now(), now(), now())
		 ON CONFLICT (identity_hash) DO UPDATE SET
		     score        = EXCLUDED.score,
		     ghost_score  = EXCLUDED.ghost_score,
		     raw_data     = EXCLUDED.raw_data,
		     times_seen   = job_listings.times_seen + 1,
		     updated_at   = now(),
		     last_seen_at = now()
		 RETURNING times_seen, alert_sent`,
		rec.IdentityHash, rec.Company, rec.Title, rec.Location, rec.Source, rec.URL,
		scoreTotal(rec), ghostScore(rec), string(raw),
	)

	if err := row.Scan(&rec.TimesSeen, &rec.AlertSent); err != nil {
		return false, fmt.Errorf("upsert %s: %w", rec.IdentityHash, err)
	}
	return rec.TimesSeen == 1, nil
}

// GetByIdentity loads the stored record for hash.
func (g *PostgresGateway) GetByIdentity(ctx context.Context, hash string) (*model.Record, bool, error) {
	var raw []byte
	var timesSeen int
	var alertSent bool

	err := g.pool.QueryRow(ctx,
		`SELECT raw_data, times_seen, alert_sent
		 FROM job_listings
		 WHERE identity_hash = $1`,
		hash,
	).Scan(&raw, &timesSeen, &alertSent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", hash, err)
	}

	var rec model.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal %s: %w", hash, err)
	}
	rec.TimesSeen = timesSeen
	rec.AlertSent = alertSent
	return &rec, true, nil
}

// MarkAlertSent sets the alert flag only when it is still unset.
func (g *PostgresGateway) MarkAlertSent(ctx context.Context, hash string) error {
	_, err := g.pool.Exec(ctx,
		`UPDATE job_listings
		 SET alert_sent = true, updated_at = now()
		 WHERE identity_hash = $1 AND alert_sent = false`,
		hash,
	)
	if err != nil {
		return fmt.Errorf("mark alert sent %s: %w", hash, err)
	}
	return nil
}

// GetRepostCount counts prior listings of the same role from the same
// source. A different identity hash with matching company+title means the
// posting came back under a fresh URL. The current listing is excluded by
// hash: the lookup runs before that listing's own upsert, so it may or may
// not have a row yet.
func (g *PostgresGateway) GetRepostCount(ctx context.Context, company, title, source, excludeHash string) (int, error) {
	var n int
	err := g.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM job_listings
		 WHERE lower(company) = lower($1)
		   AND lower(title) = lower($2)
		   AND source = $3
		   AND identity_hash <> $4`,
		company, title, source, excludeHash,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repost count (%s, %s): %w", company, title, err)
	}
	return n, nil
}

// CountCompanyOpenJobs counts the company's listings seen within the open
// window (30 days).
func (g *PostgresGateway) CountCompanyOpenJobs(ctx context.Context, company string) (int, error) {
	var n int
	err := g.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM job_listings
		 WHERE lower(company) = lower($1)
		   AND last_seen_at > now() - interval '30 days'`,
		company,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("open jobs for %s: %w", company, err)
	}
	return n, nil
}

func scoreTotal(rec *model.Record) float64 {
	if rec.Score == nil {
		return 0
	}
	return rec.Score.Total
}

func ghostScore(rec *model.Record) float64 {
	if rec.Ghost == nil {
		return 0
	}
	return rec.Ghost.Score
}
