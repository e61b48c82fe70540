package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/fetch"
	"jobradar/pipeline-service/internal/model"
)

const (
	boardPageSize = 50
	boardMaxPages = 3 // max 150 results per query
)

// Query is one (title, location) search the adapter runs per cycle.
type Query struct {
	Title    string
	Location string
}

// BoardConfig configures a BoardAPI adapter instance.
type BoardConfig struct {
	Name    string // source tag stored on records, e.g. "adzuna"
	BaseURL string // e.g. "https://api.adzuna.com/v1/api/jobs"
	AppID   string
	AppKey  string
	Country string // "fr", "gb", "us", …
	Queries []Query
}

// BoardAPI fetches listings from an Adzuna-style JSON board API through the
// shared retrying fetcher, so responses are cached and rate limits are
// honoured centrally. Missing credentials disable the adapter gracefully:
// Fetch returns (nil, nil) and the cycle skips this source.
type BoardAPI struct {
	cfg     BoardConfig
	fetcher *fetch.Fetcher
	log     *zap.Logger
}

// NewBoardAPI constructs a BoardAPI adapter.
func NewBoardAPI(cfg BoardConfig, fetcher *fetch.Fetcher, log *zap.Logger) *BoardAPI {
	return &BoardAPI{cfg: cfg, fetcher: fetcher, log: log.Named("source." + cfg.Name)}
}

// Name returns the source tag.
func (b *BoardAPI) Name() string { return b.cfg.Name }

type boardResponse struct {
	Results []boardResult `json:"results"`
	Count   int           `json:"count"`
}

type boardResult struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Company     boardCompany  `json:"company"`
	Location    boardLocation `json:"location"`
	SalaryMin   float64       `json:"salary_min"`
	SalaryMax   float64       `json:"salary_max"`
	RedirectURL string        `json:"redirect_url"`
	Created     string        `json:"created"`
}

type boardCompany struct {
	DisplayName string `json:"display_name"`
}

type boardLocation struct {
	DisplayName string `json:"display_name"`
}

// Fetch runs every configured query, paging until the board runs out of
// results or boardMaxPages is reached.
func (b *BoardAPI) Fetch(ctx context.Context) ([]*model.Record, error) {
	if b.cfg.AppID == "" || b.cfg.AppKey == "" {
		b.log.Warn("board credentials not set, skipping source")
		return nil, nil
	}

	var records []*model.Record
	for _, q := range b.cfg.Queries {
		for page := 1; page <= boardMaxPages; page++ {
			batch, err := b.fetchPage(ctx, q, page)
			if err != nil {
				return records, fmt.Errorf("%s (%q, %q) page %d: %w",
					b.cfg.Name, q.Title, q.Location, page, err)
			}
			if len(batch) == 0 {
				break
			}
			records = append(records, batch...)
			if len(batch) < boardPageSize {
				break
			}
		}
	}
	return records, nil
}

func (b *BoardAPI) fetchPage(ctx context.Context, q Query, page int) ([]*model.Record, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", b.cfg.BaseURL, b.cfg.Country, page)

	params := url.Values{}
	params.Set("app_id", b.cfg.AppID)
	params.Set("app_key", b.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(boardPageSize))
	params.Set("what", q.Title)
	params.Set("where", q.Location)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	body, err := b.fetcher.GetCached(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp boardResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	records := make([]*model.Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, b.toRecord(r))
	}
	return records, nil
}

func (b *BoardAPI) toRecord(r boardResult) *model.Record {
	rec := &model.Record{
		Title:       r.Title,
		Company:     r.Company.DisplayName,
		Location:    r.Location.DisplayName,
		Description: r.Description,
		URL:         r.RedirectURL,
		Source:      b.cfg.Name,
		Remote:      strings.Contains(strings.ToLower(r.Location.DisplayName), "remote"),
	}
	if rec.URL == "" {
		rec.URL = fmt.Sprintf("%s:%s", b.cfg.Name, r.ID)
	}
	if r.SalaryMin > 0 {
		v := r.SalaryMin
		rec.SalaryMin = &v
	}
	if r.SalaryMax > 0 {
		v := r.SalaryMax
		rec.SalaryMax = &v
	}
	if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
		rec.PostedAt = &t
	}
	return rec
}
