package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/pinsearch/internal/domain"
	dombatch "github.com/kailas-cloud/pinsearch/internal/domain/batch"
	domdoc "github.com/kailas-cloud/pinsearch/internal/domain/document"
)

// --- Mocks ---

type mockRepo struct {
	ensured   []string
	batches   [][]domdoc.Raw
	ensureErr error
	saveErr   error
	// itemErrs maps document id to a per-item failure.
	itemErrs map[string]error
}

func (m *mockRepo) EnsureIndex(_ context.Context, index string) error {
	m.ensured = append(m.ensured, index)
	return m.ensureErr
}

func (m *mockRepo) Save(_ context.Context, _ string, docs []domdoc.Raw) ([]error, error) {
	m.batches = append(m.batches, docs)
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	errs := make([]error, len(docs))
	for i, d := range docs {
		errs[i] = m.itemErrs[d.ID]
	}
	return errs, nil
}

func newTestService(repo *mockRepo, cfg Config) *Service {
	svc := New(repo, cfg)
	n := 0
	svc.newID = func() string {
		n++
		return "gen-" + strings.Repeat("x", n)
	}
	return svc
}

// --- Ingest ---

func TestIngest_HappyPath(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, Config{})

	body := strings.NewReader(`{"productId":"P0001","title":"a"}
{"productId":5,"title":"b"}

{"title":"no id"}
`)
	sum, err := svc.Ingest(context.Background(), "products", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Ingested != 3 || sum.Skipped != 1 || sum.HasErrors() {
		t.Fatalf("summary = %+v", sum)
	}
	if len(repo.ensured) != 1 || repo.ensured[0] != "products" {
		t.Errorf("ensured = %v", repo.ensured)
	}
	if len(repo.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(repo.batches))
	}
	got := []string{sum.Items[0].ID(), sum.Items[1].ID(), sum.Items[2].ID()}
	want := []string{"P0001", "5", "gen-x"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if sum.Items[2].Line() != 4 {
		t.Errorf("line = %d, want 4", sum.Items[2].Line())
	}
	if string(repo.batches[0][0].Body) != `{"productId":"P0001","title":"a"}` {
		t.Errorf("body = %s", repo.batches[0][0].Body)
	}
}

func TestIngest_DefaultIndex(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, Config{})

	if _, err := svc.Ingest(context.Background(), "", strings.NewReader(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.ensured[0] != domain.DefaultIndex {
		t.Errorf("index = %q, want %q", repo.ensured[0], domain.DefaultIndex)
	}
}

func TestIngest_InvalidIndex(t *testing.T) {
	svc := newTestService(&mockRepo{}, Config{})
	_, err := svc.Ingest(context.Background(), "bad index!", strings.NewReader(`{}`))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestIngest_MalformedLines(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, Config{})

	body := strings.NewReader("{\"productId\":\"P1\"}\nnot json\n[1,2]\nnull\n{\"productId\":\"P2\"}\n")
	sum, err := svc.Ingest(context.Background(), "products", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Ingested != 2 {
		t.Errorf("ingested = %d, want 2", sum.Ingested)
	}
	if !sum.HasErrors() {
		t.Fatal("expected errors")
	}
	failed := sum.Failed()
	if len(failed) != 3 {
		t.Fatalf("failed = %d, want 3", len(failed))
	}
	for i, wantLine := range []int{2, 3, 4} {
		if failed[i].Line() != wantLine {
			t.Errorf("failed[%d].Line = %d, want %d", i, failed[i].Line(), wantLine)
		}
		var le *domain.LineError
		if !errors.As(failed[i].Err(), &le) || !errors.Is(failed[i].Err(), domain.ErrInvalidRequest) {
			t.Errorf("failed[%d] err = %v, want LineError", i, failed[i].Err())
		}
	}
	// Items come back in source order.
	for i := 1; i < len(sum.Items); i++ {
		if sum.Items[i-1].Line() > sum.Items[i].Line() {
			t.Fatalf("items out of order: %d before %d", sum.Items[i-1].Line(), sum.Items[i].Line())
		}
	}
}

func TestIngest_PerItemBackendErrors(t *testing.T) {
	repo := &mockRepo{itemErrs: map[string]error{"P2": errors.New("mapper_parsing_exception")}}
	svc := newTestService(repo, Config{})

	sum, err := svc.Ingest(context.Background(), "products",
		strings.NewReader("{\"productId\":\"P1\"}\n{\"productId\":\"P2\"}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Ingested != 2 {
		t.Errorf("ingested = %d, want 2 (acknowledged items)", sum.Ingested)
	}
	failed := sum.Failed()
	if len(failed) != 1 || failed[0].ID() != "P2" || failed[0].Status() != dombatch.StatusError {
		t.Errorf("failed = %+v", failed)
	}
}

func TestIngest_Batching(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, Config{BatchSize: 2})

	var sb strings.Builder
	for range 5 {
		sb.WriteString(`{"x":1}` + "\n")
	}
	sum, err := svc.Ingest(context.Background(), "products", strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(repo.batches))
	}
	if len(repo.batches[0]) != 2 || len(repo.batches[2]) != 1 {
		t.Errorf("batch sizes = %d/%d/%d", len(repo.batches[0]), len(repo.batches[1]), len(repo.batches[2]))
	}
	if sum.Ingested != 5 {
		t.Errorf("ingested = %d", sum.Ingested)
	}
}

func TestIngest_BatchFailure(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("connection refused")}
	svc := newTestService(repo, Config{})

	_, err := svc.Ingest(context.Background(), "products", strings.NewReader(`{"a":1}`))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestIngest_EnsureIndexFailure(t *testing.T) {
	repo := &mockRepo{ensureErr: errors.New("timeout")}
	svc := newTestService(repo, Config{})

	_, err := svc.Ingest(context.Background(), "products", strings.NewReader(`{"a":1}`))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if len(repo.batches) != 0 {
		t.Error("nothing should be saved")
	}
}

func TestIngest_LineTooLong(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, Config{MaxLineBytes: 16})

	_, err := svc.Ingest(context.Background(), "products",
		strings.NewReader(`{"title":"`+strings.Repeat("a", 64)+`"}`))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestIngest_DataFileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample_products.ndjson")
	if err := os.WriteFile(path, []byte("{\"productId\":\"P0001\"}\n{\"productId\":\"P0002\"}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := &mockRepo{}
	svc := newTestService(repo, Config{DataFile: path})

	for _, body := range []*strings.Reader{nil, strings.NewReader("")} {
		var sum *dombatch.Summary
		var err error
		if body == nil {
			sum, err = svc.Ingest(context.Background(), "products", nil)
		} else {
			sum, err = svc.Ingest(context.Background(), "products", body)
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum.Ingested != 2 {
			t.Errorf("ingested = %d, want 2", sum.Ingested)
		}
	}
}

func TestIngest_NoSource(t *testing.T) {
	svc := newTestService(&mockRepo{}, Config{})
	_, err := svc.Ingest(context.Background(), "products", strings.NewReader(""))
	if !errors.Is(err, domain.ErrNoIngestSource) {
		t.Fatalf("expected ErrNoIngestSource, got %v", err)
	}
}

func TestIngest_MissingDataFile(t *testing.T) {
	svc := newTestService(&mockRepo{}, Config{DataFile: "/nonexistent/data.ndjson"})
	_, err := svc.Ingest(context.Background(), "products", nil)
	if !errors.Is(err, domain.ErrNoIngestSource) {
		t.Fatalf("expected ErrNoIngestSource, got %v", err)
	}
}

func TestIngest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestService(&mockRepo{}, Config{})
	_, err := svc.Ingest(ctx, "products", strings.NewReader(`{"a":1}`))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIDFromField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"P0001"`, "P0001"},
		{`42`, "42"},
		{`-3.5`, "-3.5"},
		{`""`, ""},
		{`null`, ""},
		{`true`, ""},
		{`{"a":1}`, ""},
		{``, ""},
	}
	for _, tc := range tests {
		if got := idFromField([]byte(tc.in)); got != tc.want {
			t.Errorf("idFromField(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	svc := New(&mockRepo{}, Config{})
	if svc.cfg.IDField != DefaultIDField || svc.cfg.BatchSize != DefaultBatchSize || svc.cfg.MaxLineBytes != DefaultMaxLineBytes {
		t.Errorf("cfg = %+v", svc.cfg)
	}
	if svc.newID() == svc.newID() {
		t.Error("generated ids must be unique")
	}
}
