package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/price-tracker/internal/delivery/http/request"
	"github.com/user/price-tracker/internal/delivery/http/response"
	"github.com/user/price-tracker/internal/repository"
	"github.com/user/price-tracker/internal/usecase"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	catalog   usecase.Catalog
	refresher usecase.Refresher
	logger    *zap.Logger
}

func NewHandler(catalog usecase.Catalog, refresher usecase.Refresher, logger *zap.Logger) *Handler {
	return &Handler{
		catalog:   catalog,
		refresher: refresher,
		logger:    logger,
	}
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeUseCaseError(w, "list products", err)
		return
	}

	resp := make([]response.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, response.NewProductResponse(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.YourPrice == nil {
		h.writeJSONError(w, "your_price is required", http.StatusBadRequest)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req.Name, *req.YourPrice, req.URL)
	if err != nil {
		h.writeUseCaseError(w, "create product", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response.NewProductResponse(p))
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeUseCaseError(w, "get product", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewProductResponse(p))
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeUseCaseError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCreateCompetitor(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCompetitorRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.catalog.CreateCompetitor(r.Context(), chi.URLParam(r, "id"), req.URL)
	if err != nil {
		h.writeUseCaseError(w, "create competitor", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response.NewCompetitorResponse(c, nil))
}

func (h *Handler) HandleGetCompetitor(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetCompetitor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeUseCaseError(w, "get competitor", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewCompetitorResponse(c, nil))
}

func (h *Handler) HandleDeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCompetitor(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeUseCaseError(w, "delete competitor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh runs a full refresh pass synchronously.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.refresher.RefreshAll(r.Context())
	if err != nil {
		h.writeUseCaseError(w, "refresh prices", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewRefreshReportResponse(report))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeUseCaseError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		h.writeJSONError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrExtractionFailed):
		h.writeJSONError(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, usecase.ErrRefreshInProgress):
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("Request failed", zap.String("operation", op), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
