package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"saman-gateway-mock/internal/domain"
)

// userErrorResponse is the error envelope every JSON endpoint returns;
// merchants depend on the `success`/`error` pair.
type userErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type serverErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	ErrorID string `json:"errorId"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// userFacing are the domain errors whose message is safe to hand to the
// caller verbatim, with the status they map to.
var userFacing = map[error]int{
	domain.ErrEmptyTerminalName:      http.StatusBadRequest,
	domain.ErrInvalidTerminalName:    http.StatusBadRequest,
	domain.ErrTokenNotFound:          http.StatusBadRequest,
	domain.ErrTokenExpired:           http.StatusBadRequest,
	domain.ErrTokenNoLongerAvailable: http.StatusBadRequest,
	domain.ErrTransactionNotFound:    http.StatusBadRequest,
	domain.ErrInvalidCardNumber:      http.StatusBadRequest,
	domain.ErrInvalidArgument:        http.StatusBadRequest,
	domain.ErrInvalidRequest:         http.StatusBadRequest,
	domain.ErrSessionKeyMismatch:     http.StatusBadRequest,
	domain.ErrReceiptExpired:         http.StatusBadRequest,
	domain.ErrVerifyDeadlinePassed:   http.StatusBadRequest,
	domain.ErrReverseDeadlinePassed:  http.StatusBadRequest,
	domain.ErrAlreadyVerified:        http.StatusBadRequest,
	domain.ErrAlreadyReversed:        http.StatusBadRequest,
	domain.ErrNotFound:               http.StatusNotFound,
}

// writeError converts a use-case error into the JSON error envelope.
// Unexpected errors are logged with a generated id and never leak details.
func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	for sentinel, status := range userFacing {
		if errors.Is(err, sentinel) {
			writeJSON(w, status, &userErrorResponse{Success: false, Error: sentinel.Error()})
			return
		}
	}
	errID := uuid.NewString()
	logger.Error().Err(err).Str("error_id", errID).Msg("server error")
	writeJSON(w, http.StatusInternalServerError, &serverErrorResponse{
		Success: false,
		Error:   "Server error. Error id: " + errID,
		ErrorID: errID,
	})
}
