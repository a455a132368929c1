package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/backoffice/internal/validation"
)

// envelope is the response shape of every endpoint.
type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  validation.Fields `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Status: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: false, Message: message})
}

func writeInvalid(w http.ResponseWriter, fields validation.Fields) {
	writeJSON(w, http.StatusUnprocessableEntity, envelope{
		Status:  false,
		Message: "The given data was invalid.",
		Errors:  fields,
	})
}
