package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pinsearch/internal/domain"
	dombatch "github.com/kailas-cloud/pinsearch/internal/domain/batch"
	domdoc "github.com/kailas-cloud/pinsearch/internal/domain/document"
	"github.com/kailas-cloud/pinsearch/internal/logger"
	"github.com/kailas-cloud/pinsearch/internal/metrics"
)

// Defaults for Config fields left at zero.
const (
	DefaultIDField      = "productId"
	DefaultBatchSize    = 500
	DefaultMaxLineBytes = 1 << 20
)

// Config controls how NDJSON input is turned into bulk writes.
type Config struct {
	// IDField names the record field used as document id.
	IDField      string
	BatchSize    int
	MaxLineBytes int
	// DataFile is read when a request carries no body. Empty disables the fallback.
	DataFile string
}

// Service ingests newline-delimited JSON records with per-record error reporting.
type Service struct {
	repo  Repository
	cfg   Config
	newID func() string
}

// New creates an ingest service.
func New(repo Repository, cfg Config) *Service {
	if cfg.IDField == "" {
		cfg.IDField = DefaultIDField
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Service{repo: repo, cfg: cfg, newID: uuid.NewString}
}

// Ingest reads NDJSON from body, or from the configured data file when body
// is nil or empty, and bulk-indexes every record into index.
//
// Malformed lines become failed items. A batch the backend rejects as a whole
// fails the call; batches already written stay written.
func (s *Service) Ingest(ctx context.Context, index string, body io.Reader) (*dombatch.Summary, error) {
	if index == "" {
		index = domain.DefaultIndex
	}
	if err := domain.ValidateIndexName(index); err != nil {
		return nil, err
	}
	ctx = logger.With(ctx, zap.String("index", index))

	src, closeFn, err := s.source(body)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if err := s.repo.EnsureIndex(ctx, index); err != nil {
		return nil, backendErr("ensure index", err)
	}

	run := &ingestRun{svc: s, index: index, summary: &dombatch.Summary{}}
	if err := run.consume(ctx, src); err != nil {
		return nil, err
	}
	if err := run.flush(ctx); err != nil {
		return nil, err
	}

	summary := run.summary
	slices.SortStableFunc(summary.Items, func(a, b dombatch.Result) int { return a.Line() - b.Line() })

	failed := len(summary.Failed())
	metrics.IngestDocumentsTotal.WithLabelValues("ok").Add(float64(len(summary.Items) - failed))
	metrics.IngestDocumentsTotal.WithLabelValues("error").Add(float64(failed))
	metrics.IngestDocumentsTotal.WithLabelValues("skipped").Add(float64(summary.Skipped))

	logger.FromContext(ctx).Info("Ingest completed",
		zap.Int("ingested", summary.Ingested),
		zap.Int("failed", failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// source picks the request body if it has content, else the data file.
func (s *Service) source(body io.Reader) (io.Reader, func(), error) {
	if body != nil {
		br := bufio.NewReader(body)
		if _, err := br.Peek(1); err == nil {
			return br, func() {}, nil
		} else if !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: read body: %w", domain.ErrInvalidRequest, err)
		}
	}

	if s.cfg.DataFile == "" {
		return nil, nil, domain.ErrNoIngestSource
	}
	f, err := os.Open(s.cfg.DataFile)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open data file: %w", domain.ErrNoIngestSource, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// ingestRun holds the state of one Ingest call.
type ingestRun struct {
	svc     *Service
	index   string
	summary *dombatch.Summary

	pending []domdoc.Raw
	lines   []int
}

func (r *ingestRun) consume(ctx context.Context, src io.Reader) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, min(64*1024, r.svc.cfg.MaxLineBytes)), r.svc.cfg.MaxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ingest cancelled at line %d: %w", line, err)
		}

		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			r.summary.Skipped++
			continue
		}

		doc, err := r.svc.parseLine(raw)
		if err != nil {
			r.summary.Items = append(r.summary.Items, dombatch.NewError("", line, domain.NewLineError(line, err)))
			continue
		}

		r.pending = append(r.pending, doc)
		r.lines = append(r.lines, line)
		if len(r.pending) >= r.svc.cfg.BatchSize {
			if err := r.flush(ctx); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("%w: line %d exceeds %d bytes", domain.ErrInvalidRequest, line+1, r.svc.cfg.MaxLineBytes)
		}
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (r *ingestRun) flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	errs, err := r.svc.repo.Save(ctx, r.index, r.pending)
	if err != nil {
		return backendErr("save batch", err)
	}

	r.summary.Ingested += len(errs)
	for i, doc := range r.pending {
		var itemErr error
		if i < len(errs) {
			itemErr = errs[i]
		}
		if itemErr != nil {
			r.summary.Items = append(r.summary.Items, dombatch.NewError(doc.ID, r.lines[i], itemErr))
		} else {
			r.summary.Items = append(r.summary.Items, dombatch.NewOK(doc.ID, r.lines[i]))
		}
	}

	r.pending = nil
	r.lines = nil
	return nil
}

// parseLine checks that raw is a JSON object and derives its id.
func (s *Service) parseLine(raw []byte) (domdoc.Raw, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domdoc.Raw{}, fmt.Errorf("not a JSON object: %w", err)
	}
	if fields == nil {
		return domdoc.Raw{}, errors.New("not a JSON object: null")
	}

	id := idFromField(fields[s.cfg.IDField])
	if id == "" {
		id = s.newID()
	}
	return domdoc.Raw{ID: id, Body: bytes.Clone(raw)}, nil
}

// idFromField renders a string id as-is and a number in its JSON literal form.
// Anything else (missing, null, empty string, bool, object, array) yields "".
func idFromField(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch c := v[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case c == '-' || (c >= '0' && c <= '9'):
		return string(v)
	default:
		return ""
	}
}

func backendErr(op string, err error) error {
	if errors.Is(err, domain.ErrIndexNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrBackendUnavailable, op, err)
}
