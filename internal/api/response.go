package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"surfari/boardwalk/internal/models/dtos/responses"
	"surfari/boardwalk/internal/providers"
	"surfari/boardwalk/internal/services"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// respondWithServiceError maps the service failure taxonomy onto HTTP
// statuses. Unknown errors become opaque 500s; the detail stays in logs.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var conflict *services.ConflictError
	var upstream *providers.ProviderError

	switch {
	case errors.Is(err, services.ErrAuthentication):
		respondWithError(w, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrSessionInPast):
		respondWithError(w, http.StatusBadRequest, "session is in the past")
	case errors.As(err, &conflict):
		respondWithError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &upstream):
		respondWithError(w, http.StatusBadGateway, "upstream service failed")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
