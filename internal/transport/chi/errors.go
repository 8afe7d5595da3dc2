package chi

import (
	"errors"
	"net/http"
)

// Client-facing error messages.
const (
	msgBadRequest       = "Bad Request. Your request is either malformed, or is missing one or more required fields."
	msgNotFound         = "The requested resource was not found."
	msgMethodNotAllowed = "The requested method is not allowed on this resource."
	msgServerError      = "Something went wrong on our end."
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

type errorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Message: message, Code: status}})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}
