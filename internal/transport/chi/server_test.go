package chi

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
	"github.com/kailas-cloud/cardex/internal/repository/stringset"
	cataloguc "github.com/kailas-cloud/cardex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/cardex/internal/usecase/health"
)

// --- Mocks ---

type fakeIndex struct {
	records []record.Record
	partial bool
	err     error
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ []string, start, _ int) (*resource.Hits, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &resource.Hits{Total: len(f.records), Start: start, Partial: f.partial}, nil
}

func (f *fakeIndex) Iterate(_ *resource.Hits, _ []string, start, stop int) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		for i := start; i < stop && i < len(f.records); i++ {
			if !yield(f.records[i], nil) {
				return
			}
		}
	}
}

func (f *fakeIndex) Get(_ context.Context, id string, _ []string) (record.Record, error) {
	for _, r := range f.records {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeIndex) Generation() string { return "" }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, cards *fakeIndex, index healthuc.Pinger) http.Handler {
	t.Helper()
	return newTestRouterWithOrigin(t, cards, index, "*")
}

func newTestRouterWithOrigin(t *testing.T, cards *fakeIndex, index healthuc.Pinger, origin string) http.Handler {
	t.Helper()
	catalog, err := cataloguc.New(
		map[string]cataloguc.Index{resource.Cards: cards, resource.Sets: &fakeIndex{}},
		map[string][]string{stringset.Types: {"Fire", "Water"}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	health := healthuc.New(map[string]healthuc.Pinger{resource.Cards: index}, nil)
	return NewRouter(NewServer(catalog, health, 3, zap.NewNop()), origin, zap.NewNop())
}

func testCards() *fakeIndex {
	return &fakeIndex{records: []record.Record{
		{"id": "base1-1", "name": "Alakazam"},
		{"id": "base1-2", "name": "Blastoise"},
		{"id": "base1-3", "name": "Chansey"},
		{"id": "base1-4", "name": "Charizard"},
	}}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rr.Body.String(), err)
	}
	return out
}

// --- Tests ---

func TestGetRecord(t *testing.T) {
	h := newTestRouter(t, testCards(), fakePinger{})

	rr := do(t, h, http.MethodGet, "/cards/BASE1-4")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	body := decode(t, rr)
	data, _ := body["data"].(map[string]any)
	if data["name"] != "Charizard" {
		t.Errorf("data = %v", body["data"])
	}
	if rr.Header().Get(RuntimeHeader) == "" {
		t.Error("expected X-Runtime header")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestErrors(t *testing.T) {
	h := newTestRouter(t, testCards(), fakePinger{})

	tests := []struct {
		name    string
		method  string
		target  string
		status  int
		message string
	}{
		{"missing card", http.MethodGet, "/cards/nope", http.StatusNotFound, msgNotFound},
		{"unknown route", http.MethodGet, "/decks", http.StatusNotFound, msgNotFound},
		{"bad page", http.MethodGet, "/cards?page=abc", http.StatusBadRequest, msgBadRequest},
		{"bad page size", http.MethodGet, "/cards?pageSize=1.5", http.StatusBadRequest, msgBadRequest},
		{"method", http.MethodPost, "/cards", http.StatusMethodNotAllowed, msgMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			e, _ := decode(t, rr)["error"].(map[string]any)
			if e["message"] != tt.message || e["code"] != float64(tt.status) {
				t.Errorf("error = %v", e)
			}
		})
	}
}

func TestSearchRecords(t *testing.T) {
	h := newTestRouter(t, testCards(), fakePinger{})

	tests := []struct {
		target   string
		page     float64
		pageSize float64
		names    []any
	}{
		{"/cards", 1, 3, []any{"Alakazam", "Blastoise", "Chansey"}},
		{"/cards?page=2&pageSize=2", 2, 2, []any{"Chansey", "Charizard"}},
		{"/cards?page=0&pageSize=100", 1, 3, []any{"Alakazam", "Blastoise", "Chansey"}},
		{"/cards?page=3&pageSize=2", 3, 2, []any{}},
		{"/cards?pageSize=-4", 1, 1, []any{"Alakazam"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.target)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
			}
			body := decode(t, rr)
			if body["page"] != tt.page || body["pageSize"] != tt.pageSize {
				t.Errorf("page = %v/%v, want %v/%v", body["page"], body["pageSize"], tt.page, tt.pageSize)
			}
			if body["totalCount"] != float64(4) {
				t.Errorf("totalCount = %v", body["totalCount"])
			}
			data, _ := body["data"].([]any)
			names := []any{}
			for _, d := range data {
				names = append(names, d.(map[string]any)["name"])
			}
			if !reflect.DeepEqual(names, tt.names) {
				t.Errorf("names = %v, want %v", names, tt.names)
			}
			if body["count"] != float64(len(tt.names)) {
				t.Errorf("count = %v", body["count"])
			}
		})
	}
}

func TestSearchRecords_Partial(t *testing.T) {
	cards := testCards()
	cards.partial = true
	h := newTestRouter(t, cards, fakePinger{})

	rr := do(t, h, http.MethodGet, "/cards?q=name:a*")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get(PartialHeader) != "true" {
		t.Error("expected partial header")
	}
}

func TestSearchRecords_InternalError(t *testing.T) {
	cards := testCards()
	cards.err = io.ErrUnexpectedEOF
	h := newTestRouter(t, cards, fakePinger{})

	rr := do(t, h, http.MethodGet, "/cards")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	e, _ := decode(t, rr)["error"].(map[string]any)
	if e["message"] != msgServerError {
		t.Errorf("error = %v", e)
	}
}

func TestValues(t *testing.T) {
	h := newTestRouter(t, testCards(), fakePinger{})

	rr := do(t, h, http.MethodGet, "/types")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !reflect.DeepEqual(decode(t, rr)["data"], []any{"Fire", "Water"}) {
		t.Errorf("body = %s", rr.Body)
	}

	if rr := do(t, h, http.MethodGet, "/rarities"); rr.Code != http.StatusNotFound {
		t.Errorf("unloaded set status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	ok := do(t, newTestRouter(t, testCards(), fakePinger{}), http.MethodGet, "/health")
	if ok.Code != http.StatusOK || decode(t, ok)["status"] != "ok" {
		t.Errorf("healthy: %d %s", ok.Code, ok.Body)
	}

	down := do(t, newTestRouter(t, testCards(), fakePinger{err: io.EOF}), http.MethodGet, "/health")
	if down.Code != http.StatusServiceUnavailable || decode(t, down)["status"] != "error" {
		t.Errorf("unhealthy: %d %s", down.Code, down.Body)
	}
}

func TestGzip(t *testing.T) {
	h := newTestRouter(t, testCards(), fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/cards", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", rr.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	if err := json.NewDecoder(zr).Decode(&body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["count"] != float64(3) {
		t.Errorf("count = %v", body["count"])
	}
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, testCards(), fakePinger{})

	req := httptest.NewRequest(http.MethodOptions, "/cards", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "X-Api-Key")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET" {
		t.Errorf("allow methods = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); !strings.EqualFold(got, "X-Api-Key") {
		t.Errorf("allow headers = %q", got)
	}

	get := httptest.NewRequest(http.MethodGet, "/types", http.NoBody)
	get.Header.Set("Origin", "https://example.com")
	grr := httptest.NewRecorder()
	h.ServeHTTP(grr, get)
	if grr.Code != http.StatusOK {
		t.Fatalf("status = %d", grr.Code)
	}
	if got := grr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("simple request allow origin = %q", got)
	}
}

func TestCORS_SingleOrigin(t *testing.T) {
	h := newTestRouterWithOrigin(t, testCards(), fakePinger{}, "https://cards.example.com")

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "https://cards.example.com", want: "https://cards.example.com"},
		{origin: "https://other.example.com", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/types", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORS_Disabled(t *testing.T) {
	h := newTestRouterWithOrigin(t, testCards(), fakePinger{}, "")

	req := httptest.NewRequest(http.MethodGet, "/types", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow origin = %q, want none", got)
	}
}

func TestJSONRecoverer(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := httptest.NewRecorder()
	JSONRecoverer(zap.NewNop())(panicky).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	e, _ := decode(t, rr)["error"].(map[string]any)
	if e["message"] != msgServerError {
		t.Errorf("error = %v", e)
	}
}
