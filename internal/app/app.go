package app

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ShopAPI/internal/auth"
	"ShopAPI/internal/product"
	"ShopAPI/internal/upload"
	"ShopAPI/internal/user"
	"ShopAPI/pkg/kit"
)

const (
	metricsNamespace = "shop"
	readyTimeout     = 1 * time.Second
	limitWindow      = time.Minute
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	CORSOrigins []string
}

type Deps struct {
	Products product.Store
	Users    user.Store
	Uploads  upload.Storage

	// UploadDir is served under /uploads/ when set.
	UploadDir      string
	MaxUploadBytes int64

	AuthRealm       string
	ProtectProducts bool

	SignupPerMin int
	SigninPerMin int
}

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}

	r := chi.NewRouter()

	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/", welcome)
	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	if deps.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", noListing(http.FileServer(http.Dir(deps.UploadDir)))))
	}

	setupAPI(r, deps, httpDeps)
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.CORS(deps.CORSOrigins))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry, metricsNamespace)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupAPI(r *chi.Mux, deps Deps, httpDeps HTTPDeps) {
	var reg prometheus.Registerer
	if httpDeps.Registry != nil {
		reg = httpDeps.Registry
	}

	products := &product.Server{
		Store:          deps.Products,
		Uploads:        deps.Uploads,
		Log:            httpDeps.Log,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	if reg != nil {
		products.Created = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "products_created_total",
			Help:      "Products added through the API",
		})
		reg.MustRegister(products.Created)
	}

	users := &user.Server{
		Store:            deps.Users,
		Log:              httpDeps.Log,
		SignupMiddleware: kit.NewIPRateLimiter(deps.SignupPerMin, limitWindow).Middleware,
		SigninMiddleware: kit.NewIPRateLimiter(deps.SigninPerMin, limitWindow).Middleware,
	}

	gate := auth.NewGate(deps.Users, deps.AuthRealm, httpDeps.Log, reg)

	productRoutes := products.Routes()
	if deps.ProtectProducts {
		productRoutes = gate.Middleware(productRoutes)
	}

	r.Route("/api", func(api chi.Router) {
		api.Mount("/products", productRoutes)
		api.Mount("/users", users.Routes())
	})
}

func welcome(w http.ResponseWriter, _ *http.Request) {
	kit.WriteText(w, http.StatusOK, "Welcome to E-commerce API")
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Products.Ping(ctx); err != nil {
			log.Warn("readyz failed: products", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products not ready", nil)
			return
		}

		if err := deps.Uploads.Ping(ctx); err != nil {
			log.Warn("readyz failed: uploads", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "uploads not ready", nil)
			return
		}

		_, _ = io.WriteString(w, "ok")
	}
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
