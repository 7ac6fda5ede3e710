package api

import (
	"net/http"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/storage"
)

// fail writes err as an error response. Unexpected errors are logged since
// their text never reaches the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.HTTPStatus(err) == http.StatusInternalServerError {
		observability.FromContext(r.Context(), s.logger).
			WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
	}
	httputil.WriteError(w, err)
}

func currentUser(r *http.Request) string {
	return auth.UserIDFromContext(r.Context())
}

// pageFromQuery reads pageSize and pageNumber
func pageFromQuery(r *http.Request) (storage.Page, error) {
	size, err := httputil.ParseQueryInt(r, "pageSize", storage.DefaultPageSize)
	if err != nil {
		return storage.Page{}, apperr.BadRequest(apperr.CodeValidation, err.Error())
	}
	number, err := httputil.ParseQueryInt(r, "pageNumber", 1)
	if err != nil {
		return storage.Page{}, apperr.BadRequest(apperr.CodeValidation, err.Error())
	}
	return storage.Page{Size: size, Number: number}, nil
}
