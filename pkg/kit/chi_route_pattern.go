package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ChiRoutePatternOrPath labels a request by its matched route pattern so
// /api/products/{id} is one metric series, not one per id.
func ChiRoutePatternOrPath(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if rp := rctx.RoutePattern(); rp != "" {
		return rp
	}
	return r.URL.Path
}
