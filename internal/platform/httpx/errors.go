package httpx

import (
	"errors"
	"net/http"

	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Expected outcomes
// (not-found, bad input, auth failure, already-done) become 4xx with the
// domain message; everything else is a 500 with a generic body.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrInvalidArgument):
		Error(w, http.StatusBadRequest, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrAuthentication):
		Error(w, http.StatusUnauthorized, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusConflict, shared.UserSafeMessage(err))
	default:
		Error(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
	}
}
