package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/logging"
)

// Stable error codes returned to clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeAuthentication     = "AUTHENTICATION_FAILED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenReuse         = "TOKEN_REUSE_DETECTED"
	CodeNotFound           = "NOT_FOUND"
	CodeIntegrity          = "INTEGRITY_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message, Field: field}})
}

// writeServiceError maps the error taxonomy to a response. Causes of
// internal failures are logged and never sent to the client.
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, CodeValidation, ve.Message, ve.Field)
	case errors.Is(err, common.ErrorConflict):
		writeError(w, http.StatusConflict, CodeConflict, "email is already registered", "email")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, CodeAuthentication, "invalid email or password", "")
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, CodeTokenInvalid, "token is invalid or expired", "")
	case errors.Is(err, common.ErrTokenReuseDetected):
		writeError(w, http.StatusUnauthorized, CodeTokenReuse, "refresh token reuse detected, all sessions were revoked", "")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "entry not found", "")
	case errors.Is(err, common.ErrIntegrity):
		writeError(w, http.StatusUnprocessableEntity, CodeIntegrity, "stored data failed integrity check", "")
	case errors.Is(err, common.ErrServiceUnavailable):
		log.Warn(ctx, "dependency unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "service temporarily unavailable", "")
	case errors.Is(err, context.Canceled):
		log.Debug(ctx, "request canceled")
		writeError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "request canceled", "")
	default:
		log.Error(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", "")
	}
}
