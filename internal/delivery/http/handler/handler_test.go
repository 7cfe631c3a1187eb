package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/user/price-tracker/internal/adapter/memory"
	"github.com/user/price-tracker/internal/delivery/http/handler"
	"github.com/user/price-tracker/internal/delivery/http/response"
	"github.com/user/price-tracker/internal/delivery/http/router"
	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
	"github.com/user/price-tracker/internal/usecase"
)

// stubExtractor maps URLs to fixed prices; unknown URLs fail.
type stubExtractor map[string]float64

func (s stubExtractor) Extract(_ context.Context, url string) (*entity.Extraction, error) {
	price, ok := s[url]
	if !ok {
		return nil, fmt.Errorf("%w: schema mismatch", repository.ErrExtractionFailed)
	}
	return &entity.Extraction{URL: url, Name: "Widget", Price: price, CheckedAt: time.Now().UTC()}, nil
}

type testEnv struct {
	router http.Handler
	store  *memory.Store
	lock   *memory.RunLock
}

func newTestEnv(t *testing.T, extractor stubExtractor) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	lock := memory.NewRunLock()

	catalog := usecase.NewCatalog(store.Products(), store.Competitors(), extractor, logger)
	refresher := usecase.NewRefresher(store.Competitors(), extractor, lock, usecase.RefreshOptions{}, logger)
	h := handler.NewHandler(catalog, refresher, logger)

	return &testEnv{router: router.New(h, logger, 30*time.Second), store: store, lock: lock}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return v
}

func createProduct(t *testing.T, e *testEnv, name string, price float64) response.ProductResponse {
	t.Helper()
	w := e.do(http.MethodPost, "/api/products", fmt.Sprintf(`{"name":%q,"your_price":%v}`, name, price))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	return decode[response.ProductResponse](t, w)
}

func TestHealthCheck(t *testing.T) {
	e := newTestEnv(t, nil)
	w := e.do(http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateAndListProducts(t *testing.T) {
	e := newTestEnv(t, nil)

	w := e.do(http.MethodPost, "/api/products", `{"name":"Laptop","your_price":1500,"url":"https://mine.example.com/laptop"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d", w.Code)
	}
	created := decode[response.ProductResponse](t, w)
	if created.ID == "" || created.Name != "Laptop" || created.YourPrice != 1500 {
		t.Errorf("unexpected product %+v", created)
	}

	w = e.do(http.MethodGet, "/api/products", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := decode[[]response.ProductResponse](t, w)
	if len(list) != 1 || list[0].ID != created.ID || list[0].URL != "https://mine.example.com/laptop" {
		t.Errorf("unexpected list %+v", list)
	}
	if list[0].Competitors == nil {
		t.Error("competitors should be an empty array, not null")
	}
}

func TestCreateProductInvalid(t *testing.T) {
	e := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing price", `{"name":"Mouse"}`},
		{"empty name", `{"name":"","your_price":10}`},
		{"negative price", `{"name":"Mouse","your_price":-5}`},
		{"string price", `{"name":"Mouse","your_price":"5"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/products", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetProductNotFound(t *testing.T) {
	e := newTestEnv(t, nil)
	w := e.do(http.MethodGet, "/api/products/does-not-exist", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateCompetitor(t *testing.T) {
	e := newTestEnv(t, stubExtractor{"https://rival.example.com/widget": 19.99})
	p := createProduct(t, e, "My Widget", 20)

	w := e.do(http.MethodPost, "/api/products/"+p.ID+"/competitors", `{"url":"https://rival.example.com/widget"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	c := decode[response.CompetitorResponse](t, w)
	if c.Name != "Widget" || c.CurrentPrice != 19.99 || c.ProductID != p.ID {
		t.Errorf("unexpected competitor %+v", c)
	}

	w = e.do(http.MethodGet, "/api/products/"+p.ID, "")
	got := decode[response.ProductResponse](t, w)
	if len(got.Competitors) != 1 {
		t.Fatalf("expected 1 competitor, got %d", len(got.Competitors))
	}
	if got.LowestCompetitorPrice == nil || *got.LowestCompetitorPrice != 19.99 {
		t.Errorf("unexpected lowest price %v", got.LowestCompetitorPrice)
	}
	diff := got.Competitors[0].PriceDifference
	if diff == nil || *diff > -0.0099 || *diff < -0.0101 {
		t.Errorf("expected price difference of about -0.01, got %v", diff)
	}

	w = e.do(http.MethodGet, "/api/competitors/"+c.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateCompetitorErrors(t *testing.T) {
	e := newTestEnv(t, stubExtractor{"https://rival.example.com/widget": 19.99})
	p := createProduct(t, e, "My Widget", 20)

	tests := []struct {
		name       string
		productID  string
		body       string
		expectCode int
	}{
		{"extraction failure", p.ID, `{"url":"https://rival.example.com/unknown"}`, http.StatusBadGateway},
		{"invalid url", p.ID, `{"url":"rival.example.com"}`, http.StatusBadRequest},
		{"malformed body", p.ID, `nope`, http.StatusBadRequest},
		{"unknown product", "missing", `{"url":"https://rival.example.com/widget"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/products/"+tt.productID+"/competitors", tt.body)
			if w.Code != tt.expectCode {
				t.Errorf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
		})
	}

	all, _ := e.store.Competitors().FindAll(context.Background())
	if len(all) != 0 {
		t.Errorf("no competitor should be stored, got %d", len(all))
	}
}

func TestDeleteProductCascades(t *testing.T) {
	e := newTestEnv(t, stubExtractor{"https://rival.example.com/widget": 5})
	p := createProduct(t, e, "My Widget", 20)
	w := e.do(http.MethodPost, "/api/products/"+p.ID+"/competitors", `{"url":"https://rival.example.com/widget"}`)
	c := decode[response.CompetitorResponse](t, w)

	w = e.do(http.MethodDelete, "/api/products/"+p.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/competitors/"+c.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected competitor gone, got %d", w.Code)
	}

	// Delete-if-exists: repeating is still a success.
	if w := e.do(http.MethodDelete, "/api/products/"+p.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on repeated delete, got %d", w.Code)
	}
	if w := e.do(http.MethodDelete, "/api/competitors/"+c.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 deleting missing competitor, got %d", w.Code)
	}
}

func TestRefresh(t *testing.T) {
	prices := stubExtractor{"https://rival.example.com/widget": 10}
	e := newTestEnv(t, prices)
	p := createProduct(t, e, "My Widget", 20)
	w := e.do(http.MethodPost, "/api/products/"+p.ID+"/competitors", `{"url":"https://rival.example.com/widget"}`)
	c := decode[response.CompetitorResponse](t, w)

	prices["https://rival.example.com/widget"] = 12
	w = e.do(http.MethodPost, "/api/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	report := decode[response.RefreshReportResponse](t, w)
	if report.Total != 1 || report.Updated != 1 || report.Failed != 0 {
		t.Errorf("unexpected report %+v", report)
	}

	w = e.do(http.MethodGet, "/api/competitors/"+c.ID, "")
	got := decode[response.CompetitorResponse](t, w)
	if got.CurrentPrice != 12 {
		t.Errorf("expected refreshed price 12, got %v", got.CurrentPrice)
	}
}

func TestRefreshInProgress(t *testing.T) {
	e := newTestEnv(t, nil)
	release, ok, _ := e.lock.TryAcquire(context.Background(), time.Minute)
	if !ok {
		t.Fatal("could not take lock")
	}
	defer release()

	w := e.do(http.MethodPost, "/api/refresh", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already in progress") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	e.do(http.MethodGet, "/api/health", "")

	w := e.do(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `http_requests_total{method="GET",path="/api/health",status="200"}`) {
		t.Errorf("expected request counter labelled by route pattern")
	}
}
