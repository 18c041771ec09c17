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

	"github.com/minicrm/backoffice/internal/customer/application"
	"github.com/minicrm/backoffice/internal/customer/domain"
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
		tracer:  otel.Tracer("customer-http"),
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
	Data       []domain.Customer  `json:"data"`
	Pagination httpapi.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCustomers")
	defer span.End()

	page, limit := httpapi.ParsePagination(r)
	customers, total, err := h.service.List(ctx, page, limit)
	if err != nil {
		h.fail(w, err, "Error listing customers")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, listResponse{
		Data:       customers,
		Pagination: httpapi.NewPagination(total, page, limit),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCustomer")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(w, err, "Error getting customer")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCustomer")
	defer span.End()

	var in domain.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	c, err := h.service.Create(ctx, in)
	if err != nil {
		h.fail(w, err, "Error creating customer")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCustomer")
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
	c, err := h.service.Update(ctx, id, in)
	if err != nil {
		h.fail(w, err, "Error updating customer")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteCustomer")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, err, "Error deleting customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		httpapi.WriteValidation(w, verrs)
	case errors.Is(err, domain.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "Customer not found")
	default:
		h.log.Error(logMsg, "err", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, http.StatusNotFound, "Customer not found")
		return uuid.Nil, false
	}
	return id, true
}
