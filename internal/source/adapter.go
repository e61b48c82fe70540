// Package source defines the adapter contract for external job boards and a
// JSON board-API adapter. Adapter failures are non-fatal to the pipeline: the
// scheduler collects them into the cycle's error list and keeps going.
package source

import (
	"context"

	"jobradar/pipeline-service/internal/model"
)

// Adapter fetches one board's listings as normalised records. Implementations
// go through the shared retrying fetcher so backoff behaviour is uniform, and
// must be safe to call concurrently with other adapters.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]*model.Record, error)
}
