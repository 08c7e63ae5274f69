package pinsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/pinsearch/internal/db"
	dbElastic "github.com/kailas-cloud/pinsearch/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/pinsearch/internal/db/redis"
	"github.com/kailas-cloud/pinsearch/internal/domain"
	dombatch "github.com/kailas-cloud/pinsearch/internal/domain/batch"
	"github.com/kailas-cloud/pinsearch/internal/domain/page"
	"github.com/kailas-cloud/pinsearch/internal/domain/pin"
	documentrepo "github.com/kailas-cloud/pinsearch/internal/repository/document"
	searchrepo "github.com/kailas-cloud/pinsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/pinsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/pinsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/pinsearch/internal/usecase/search"
)

const (
	driverElasticsearch = "elasticsearch"
	driverRedis         = "redis"

	defaultReadinessTimeout = 10 * time.Second
	defaultRequestTimeout   = 10 * time.Second
)

var defaultSearchFields = []string{"title^3", "description"}

// Internal interfaces, swapped for fakes in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *page.Request) (*page.Page, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, index string, body io.Reader) (*dombatch.Summary, error)
}

// Client is the pinsearch SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	index     string
	searchSvc searchUseCase
	ingestSvc ingestUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and waits for the backend to answer.
// The provided context bounds the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:            domain.DefaultIndex,
		fields:           defaultSearchFields,
		requestTimeout:   defaultRequestTimeout,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.requestTimeout <= 0 {
		cfg.requestTimeout = defaultRequestTimeout
	}
	if cfg.readinessTimeout <= 0 {
		cfg.readinessTimeout = defaultReadinessTimeout
	}

	if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
		return nil, errors.New("pinsearch: backend address required (use WithElasticsearch or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("pinsearch: backend not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverElasticsearch:
		s, err := dbElastic.NewStore(dbElastic.Config{
			Addrs:       cfg.addrs,
			Username:    cfg.username,
			Password:    cfg.password,
			VerifyCerts: !cfg.insecureSkipVerify,
			CACert:      cfg.caCert,
			Timeout:     cfg.requestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("pinsearch: create elasticsearch store: %w", err)
		}
		return s, nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("pinsearch: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("pinsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	if err := domain.ValidateIndexName(cfg.index); err != nil {
		return nil, fmt.Errorf("pinsearch: index: %w", err)
	}
	fields, err := db.ParseFields(cfg.fields)
	if err != nil {
		return nil, fmt.Errorf("pinsearch: search fields: %w", err)
	}

	searchRepo := searchuc.NewInstrumentedRepository(
		searchrepo.New(store, cfg.index, fields), store.Name(),
	)
	docRepo := documentrepo.New(store, fields)

	return &Client{
		store:     store,
		index:     cfg.index,
		searchSvc: searchuc.New(searchRepo),
		ingestSvc: ingestuc.New(docRepo, ingestuc.Config{
			IDField:      cfg.idField,
			BatchSize:    cfg.batchSize,
			MaxLineBytes: cfg.maxLineBytes,
			DataFile:     cfg.dataFile,
		}),
		healthSvc: healthuc.New(store, cfg.dataFile),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Index returns the index the client searches.
func (c *Client) Index() string { return c.index }

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search assembles one result page. Pins whose document does not exist are
// ignored and their positions filled by ranked results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (_ *Page, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err, "term", req.Term, "pins", len(req.Pins), "page", req.Page)
	}()

	size, number := req.Size, req.Page
	if size == 0 {
		size = page.DefaultSize
	}
	if number == 0 {
		number = page.DefaultNumber
	}
	pins := make([]pin.Pin, len(req.Pins))
	for i, p := range req.Pins {
		pins[i] = pin.Pin{ProductID: p.ProductID.id, Position: p.Position}
	}
	pr, err := page.NewRequest(req.Term, pins, size, number)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	p, err := c.searchSvc.Search(ctx, &pr)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromPage(p), nil
}

// Ingest stores NDJSON records from r into index (the client's index when
// empty). A nil or empty r reads the file set by WithDataFile.
func (c *Client) Ingest(ctx context.Context, index string, r io.Reader) (_ *IngestResult, err error) {
	start := time.Now()
	if index == "" {
		index = c.index
	}
	var res *IngestResult
	defer func() {
		attrs := []any{"index", index}
		if res != nil {
			attrs = append(attrs, "ingested", res.Ingested, "failed", len(res.Failed))
		}
		c.obs.observe("ingest", start, err, attrs...)
	}()

	summary, err := c.ingestSvc.Ingest(ctx, index, r)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	res = fromSummary(summary)
	return res, nil
}

func fromPage(p *page.Page) *Page {
	out := &Page{
		Number:  p.Number,
		Size:    p.Size,
		Results: make([]Document, len(p.Results)),
	}
	for i, d := range p.Results {
		out.Results[i] = Document{ID: d.ID(), Source: d.Source()}
	}
	return out
}

func fromSummary(s *dombatch.Summary) *IngestResult {
	failed := s.Failed()
	out := &IngestResult{
		Ingested: s.Ingested,
		Skipped:  s.Skipped,
		Errors:   len(failed) > 0,
		Failed:   make([]IngestFailure, len(failed)),
	}
	for i, f := range failed {
		out.Failed[i] = IngestFailure{Line: f.Line(), ID: f.ID(), Err: f.Err()}
	}
	return out
}
