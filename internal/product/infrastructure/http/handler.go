package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	inventoryapp "github.com/minicrm/backoffice/internal/inventory/application"
	"github.com/minicrm/backoffice/internal/product/application"
	"github.com/minicrm/backoffice/internal/product/domain"
	"github.com/minicrm/backoffice/pkg/httpapi"
	"github.com/minicrm/backoffice/pkg/validate"
)

type Handler struct {
	log       *slog.Logger
	service   *application.Service
	inventory *inventoryapp.Service
	tracer    trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, inventory *inventoryapp.Service) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		inventory: inventory,
		tracer:    otel.Tracer("product-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/stock", h.updateStock)
	return r
}

type listResponse struct {
	Data       []domain.Product   `json:"data"`
	Pagination httpapi.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	var f application.Filter
	q := r.URL.Query()
	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			httpapi.WriteError(w, http.StatusBadRequest, "Invalid query parameters")
			return
		}
		f.IsActive = &active
	}

	page, limit := httpapi.ParsePagination(r)
	products, total, err := h.service.List(ctx, f, page, limit)
	if err != nil {
		h.fail(w, err, "Error listing products")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, listResponse{
		Data:       products,
		Pagination: httpapi.NewPagination(total, page, limit),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(w, err, "Error getting product")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var in domain.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	p, err := h.service.Create(ctx, in)
	if err != nil {
		h.fail(w, err, "Error creating product")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in domain.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	p, err := h.service.Update(ctx, id, in)
	if err != nil {
		h.fail(w, err, "Error updating product")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrReferencedByOrders) {
			httpapi.WriteError(w, http.StatusBadRequest, "Cannot delete product that is referenced in orders")
			return
		}
		h.fail(w, err, "Error deleting product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStockReq struct {
	Quantity  *int   `json:"quantity"`
	Operation string `json:"operation"`
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateStock")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req updateStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var errs validate.Errors
	if req.Quantity == nil {
		errs.Add("quantity", "Quantity is required")
	} else if *req.Quantity < 1 {
		errs.Add("quantity", "Quantity must be a positive integer")
	}
	op, err := inventoryapp.ParseOperation(req.Operation)
	if err != nil {
		errs.Add("operation", "Operation must be one of set, add, subtract")
	}
	if verr := errs.Err(); verr != nil {
		httpapi.WriteValidation(w, &errs)
		return
	}

	stock, err := h.inventory.AdjustStock(ctx, id, *req.Quantity, op)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStockNotFound):
			httpapi.WriteError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, domain.ErrInsufficientStock):
			httpapi.WriteError(w, http.StatusBadRequest, "Insufficient stock for operation")
		default:
			h.log.Error("Error updating stock", "err", err, "product_id", id)
			httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, stock)
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		httpapi.WriteValidation(w, verrs)
	case errors.Is(err, domain.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrDuplicateSKU):
		httpapi.WriteError(w, http.StatusBadRequest, "SKU already exists")
	default:
		h.log.Error(logMsg, "err", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, http.StatusNotFound, "Product not found")
		return uuid.Nil, false
	}
	return id, true
}
