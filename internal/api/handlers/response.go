package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error's type to a status code. Internal details are
// logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		status = http.StatusConflict
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	respondWithError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewInvalidArgumentError("invalid request payload")
	}
	return nil
}

func parseDate(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.NewInvalidArgumentError(fmt.Sprintf("%s is required", name))
	}
	date, err := time.Parse(entities.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid %s %q (use YYYY-MM-DD)", name, value))
	}
	return date, nil
}

func parsePositiveInt(value, name string) (int, error) {
	if value == "" {
		return 0, apperrors.NewInvalidArgumentError(fmt.Sprintf("%s is required", name))
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("%s must be a positive integer, got %q", name, value))
	}
	return n, nil
}
