package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/minicrm/backoffice/internal/order/application"
	"github.com/minicrm/backoffice/internal/order/domain"
	"github.com/minicrm/backoffice/pkg/httpapi"
	"github.com/minicrm/backoffice/pkg/validate"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

type listResponse struct {
	Data       []domain.Order     `json:"data"`
	Pagination httpapi.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	var f application.Filter
	q := r.URL.Query()
	if v := q.Get("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpapi.WriteError(w, http.StatusBadRequest, "Invalid query parameters")
			return
		}
		f.CustomerID = &id
	}
	if v := q.Get("status"); v != "" {
		status := domain.Status(v)
		if !domain.ValidStatus(status) {
			httpapi.WriteError(w, http.StatusBadRequest, "Invalid query parameters")
			return
		}
		f.Status = &status
	}

	page, limit := httpapi.ParsePagination(r)
	orders, total, err := h.service.List(ctx, f, page, limit)
	if err != nil {
		h.fail(w, err, "Error listing orders")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, listResponse{
		Data:       orders,
		Pagination: httpapi.NewPagination(total, page, limit),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	o, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(w, err, "Error getting order")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, o)
}

type createResponse struct {
	domain.Order
	SkippedItems []application.SkippedItem `json:"skippedItems,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var in domain.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	result, err := h.service.Create(ctx, in)
	if err != nil {
		h.fail(w, err, "Error creating order")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, createResponse{
		Order:        result.Order,
		SkippedItems: result.Skipped,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrder")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in domain.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	o, err := h.service.Update(ctx, id, in)
	if err != nil {
		h.fail(w, err, "Error updating order")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, err, "Error deleting order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	var verrs *validate.Errors
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &verrs):
		httpapi.WriteValidation(w, verrs)
	case errors.Is(err, domain.ErrCustomerNotFound):
		httpapi.WriteError(w, http.StatusBadRequest, "Customer not found")
	case errors.Is(err, domain.ErrCustomerInactive):
		httpapi.WriteError(w, http.StatusBadRequest, "Customer is inactive")
	case errors.As(err, &stockErr):
		httpapi.WriteError(w, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "Order not found")
	default:
		h.log.Error(logMsg, "err", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, http.StatusNotFound, "Order not found")
		return uuid.Nil, false
	}
	return id, true
}
