package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"sportsreg/internal/access"
	"sportsreg/internal/logging"
	"sportsreg/internal/registration"
	"sportsreg/internal/store"
	"sportsreg/internal/tabular"
	"sportsreg/internal/tournament"
)

var (
	errBadRequest     = errors.New("bad request")
	errSessionExpired = fmt.Errorf("session expired or unknown: %w", access.ErrAuthFailed)
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func statusFor(err error) int {
	var verr *registration.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr), errors.As(err, &fieldErrs),
		errors.Is(err, errBadRequest),
		errors.Is(err, tournament.ErrInvalidRank),
		errors.Is(err, store.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, access.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, tabular.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, access.ErrNotGuest):
		return http.StatusConflict
	case errors.Is(err, registration.ErrScheduleExpired):
		return http.StatusLocked
	case errors.Is(err, tabular.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it as JSON. Server-side failures are
// reported without their detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.FromContext(r.Context()).With(
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)

	resp := errorResponse{Error: err.Error()}
	var verr *registration.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		resp.Field = verr.Field
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		resp.Field = fieldErrs[0].Field()
		resp.Error = fmt.Sprintf("%s failed %q", fieldErrs[0].Field(), fieldErrs[0].Tag())
	}
	switch {
	case status == http.StatusServiceUnavailable:
		logger.Error("request failed")
		resp.Error = "storage backend unavailable"
	case status >= 500:
		logger.Error("request failed")
		resp.Error = "internal error"
	default:
		logger.Info("request rejected")
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst and runs its validate tags.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return s.validate.Struct(dst)
}
