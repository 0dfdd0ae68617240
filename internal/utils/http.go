package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/models"
)

const maxBodyBytes = 1 << 20

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON parses the JSON body into v and handles invalid JSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		JSONError(w, http.StatusBadRequest, "empty request body")
		return http.ErrBodyNotAllowed
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return err
	}

	return nil
}

// WriteError maps domain errors onto HTTP statuses. Unknown errors are
// logged, when log is set, and answered with a generic 500.
func WriteError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		JSONError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, models.ErrValidation):
		JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		JSONError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, models.ErrUnauthenticated):
		JSONError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, models.ErrForbidden):
		JSONError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, models.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrConflict):
		JSONError(w, http.StatusConflict, "already exists")
	default:
		if log != nil {
			log.Errorw("request failed", "error", err)
		}
		JSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
