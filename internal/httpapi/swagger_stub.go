//go:build !swagger

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const swaggerMissing = "API docs not built into this binary (rebuild with -tags swagger)"

// MountSwagger answers /swagger with a JSON 404 naming the missing build tag.
func MountSwagger(r chi.Router) {
	notBuilt := func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, swaggerMissing)
	}
	r.Get("/swagger", notBuilt)
	r.Get("/swagger/*", notBuilt)
}
