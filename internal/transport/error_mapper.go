package transport

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrValidation, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrOutOfRange, http.StatusBadRequest, "out_of_range"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrLocked, http.StatusLocked, "locked"},
	{domain.ErrNoChallenge, http.StatusConflict, "no_challenge"},
	{domain.ErrAlreadyResolved, http.StatusConflict, "already_resolved"},
	{domain.ErrUpstream, http.StatusBadGateway, "upstream_unavailable"},
}

// Status returns the HTTP status and error code for err.
func Status(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// MapError writes err as a JSON error body. Unknown errors are logged and
// reported with a generic message.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	log := observability.GetLogger(r.Context())

	switch {
	case status == http.StatusInternalServerError:
		log.Error("internal_error", zap.Error(err))
		WriteError(w, status, code, "an unexpected error occurred")
		return
	case status == http.StatusBadGateway:
		log.Warn("upstream_error", zap.Error(err))
	}
	WriteError(w, status, code, err.Error())
}
