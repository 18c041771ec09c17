package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/minicrm/backoffice/pkg/validate"
)

// ErrorItem is a single field-level problem inside an error response.
type ErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the wire shape for every non-2xx body:
// { message, errors?: [{field, message}] }.
type ErrorResponse struct {
	Message string      `json:"message"`
	Errors  []ErrorItem `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

func WriteFieldErrors(w http.ResponseWriter, items []ErrorItem) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Validation error", Errors: items})
}

// WriteValidation renders collected field errors as a 400 response.
func WriteValidation(w http.ResponseWriter, errs *validate.Errors) {
	items := make([]ErrorItem, 0, len(errs.Fields()))
	for _, f := range errs.Fields() {
		items = append(items, ErrorItem{Field: f.Field, Message: f.Message})
	}
	WriteFieldErrors(w, items)
}
