package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Message   string          `json:"message"`
	Field     string          `json:"field,omitempty"`
	StepIndex int             `json:"stepIndex,omitempty"`
	Status    progress.Status `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: message})
}

// writeError maps a domain error to a status code. Unknown errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, errorBody) {
	var (
		validationErr *catalog.ValidationError
		inputErr      *account.InputError
		conflictErr   *progress.ConflictError
		transitionErr *progress.TransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, errorBody{Message: validationErr.Error(), Field: validationErr.Field, StepIndex: validationErr.StepIndex}
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, errorBody{Message: inputErr.Message, Field: inputErr.Field}
	case errors.As(err, &conflictErr):
		return http.StatusConflict, errorBody{Message: "Activity already in your list", Status: conflictErr.Status}
	case errors.As(err, &transitionErr):
		return http.StatusConflict, errorBody{Message: transitionErr.Error(), Status: transitionErr.From}
	case errors.Is(err, progress.ErrStaleRevision):
		return http.StatusConflict, errorBody{Message: err.Error()}
	case errors.Is(err, account.ErrUsernameTaken):
		return http.StatusConflict, errorBody{Message: "Username is already taken"}
	case errors.Is(err, catalog.ErrActivityNotFound):
		return http.StatusNotFound, errorBody{Message: "Activity not found"}
	case errors.Is(err, progress.ErrUserActivityNotFound):
		return http.StatusNotFound, errorBody{Message: "User activity not found"}
	case errors.Is(err, progress.ErrStepNotFound):
		return http.StatusNotFound, errorBody{Message: "Step not found"}
	case errors.Is(err, account.ErrUserNotFound):
		return http.StatusNotFound, errorBody{Message: "User not found"}
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Message: "Invalid username or password"}
	case errors.Is(err, account.ErrWrongPassword):
		return http.StatusBadRequest, errorBody{Message: "Current password is incorrect", Field: "currentPassword"}
	case errors.Is(err, catalog.ErrUnauthorized):
		return http.StatusForbidden, errorBody{Message: "Admin access required"}
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, progress.ErrInvalidInput),
		errors.Is(err, journal.ErrInvalidInput):
		return http.StatusBadRequest, errorBody{Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Message: "Internal server error"}
	}
}
