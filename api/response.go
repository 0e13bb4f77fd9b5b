package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError reports err with the status of its kind. Persistence failures are logged
// and answered with the generic message only.
func writeError(w http.ResponseWriter, logger logging.Logger, err error) {
	e := cerrors.As(err)
	if e.Kind == cerrors.KindPersistence {
		logger.Error("%v", err)
	}
	jsonError(w, e.Public(), e.Kind.HTTPStatus())
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return cerrors.Validation("Request body is required.")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return cerrors.Validation("Invalid request body.")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseID(chi.URLParam(r, name), name)
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, cerrors.Validation("Invalid %s.", name)
	}
	return id, nil
}
