package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meucofre/cofre/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto HTTP statuses, surfacing
// only the user-facing message.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, common.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrDuplicateCategory), errors.Is(err, common.ErrCategoryInUse):
		status = http.StatusConflict
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrNoReceiptData):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		common.LogError(err, "request failed", nil)
	}

	writeError(w, status, common.UserMessage(err))
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.NewUserError("Malformed request body.", common.ErrInvalidInput)
	}
	return nil
}
