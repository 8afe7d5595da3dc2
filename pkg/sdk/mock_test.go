package cardex

import (
	"context"

	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/search/request"
	"github.com/kailas-cloud/cardex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/cardex/internal/usecase/health"
)

// --- catalogUseCase mock ---

type mockCatalog struct {
	getFn    func(ctx context.Context, res string, req *request.Get) (record.Record, error)
	searchFn func(ctx context.Context, res string, req *request.Request) (result.Page, error)
	valuesFn func(name string) ([]string, error)
}

func (m *mockCatalog) Get(ctx context.Context, res string, req *request.Get) (record.Record, error) {
	return m.getFn(ctx, res, req)
}

func (m *mockCatalog) Search(ctx context.Context, res string, req *request.Request) (result.Page, error) {
	return m.searchFn(ctx, res, req)
}

func (m *mockCatalog) Values(name string) ([]string, error) {
	return m.valuesFn(name)
}

// --- healthUseCase mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	return m.report
}

// --- helpers ---

func testClient(catalog catalogUseCase, obs *observer) *Client {
	return &Client{catalog: catalog, maxPageSize: 10, obs: obs}
}
