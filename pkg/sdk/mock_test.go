package pinsearch

import (
	"context"
	"io"

	dombatch "github.com/kailas-cloud/pinsearch/internal/domain/batch"
	"github.com/kailas-cloud/pinsearch/internal/domain/page"
	healthuc "github.com/kailas-cloud/pinsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *page.Request) (*page.Page, error)
	last     *page.Request
}

func (m *mockSearchUC) Search(ctx context.Context, req *page.Request) (*page.Page, error) {
	m.last = req
	return m.searchFn(ctx, req)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn  func(ctx context.Context, index string, body io.Reader) (*dombatch.Summary, error)
	lastIndex string
}

func (m *mockIngestUC) Ingest(ctx context.Context, index string, body io.Reader) (*dombatch.Summary, error) {
	m.lastIndex = index
	return m.ingestFn(ctx, index, body)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(searchSvc searchUseCase, ingestSvc ingestUseCase, obs *observer) *Client {
	return &Client{
		index:     "products",
		searchSvc: searchSvc,
		ingestSvc: ingestSvc,
		obs:       obs,
	}
}
