package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/response"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/validation"
)

// clientErrors maps sentinel errors to the status returned to the client.
// Anything not listed is a server error.
var clientErrors = []struct {
	err    error
	status int
}{
	{apperrors.ErrWatchlistNotFound, http.StatusNotFound},
	{apperrors.ErrReportNotFound, http.StatusNotFound},
	{apperrors.ErrAlertNotFound, http.StatusNotFound},
	{apperrors.ErrQuoteUnavailable, http.StatusNotFound},
	{apperrors.ErrInsufficientData, http.StatusNotFound},
	{apperrors.ErrInvalidTicker, http.StatusBadRequest},
	{apperrors.ErrInvalidDateRange, http.StatusBadRequest},
	{apperrors.ErrInvalidDate, http.StatusBadRequest},
	{apperrors.ErrInvalidUUID, http.StatusBadRequest},
}

// respondServiceError writes err using the first matching client error, or a 500
// with fallback as message.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			response.RespondError(w, ce.status, ce.err.Error(), err.Error())
			return
		}
	}
	response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
}

// respondRequestError writes a 400 for a query parameter problem, listing field
// errors when the error carries them.
func respondRequestError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
}
