package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ShopAPI/internal/user"
	"ShopAPI/pkg/kit"
)

type ctxKey string

const userKey ctxKey = "user"

func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userKey).(user.User)
	return u, ok
}

type Gate struct {
	Users CredentialFinder
	Realm string
	Log   *zap.Logger

	failures *prometheus.CounterVec
}

// NewGate wires a gate over users. reg may be nil to skip the
// auth_failures_total counter.
func NewGate(users CredentialFinder, realm string, log *zap.Logger, reg prometheus.Registerer) *Gate {
	g := &Gate{Users: users, Realm: realm, Log: log}

	if reg != nil {
		g.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Basic auth rejections by reason",
		}, []string{"reason"})
		reg.MustRegister(g.failures)
	}
	return g
}

// Middleware lets the request through only with valid Basic credentials and
// exposes the user via UserFromContext. Refusals are 401 with a Basic
// challenge and a plain-text reason.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := Authenticate(r.Context(), g.Users, r.Header.Get("Authorization"))
		if err != nil {
			g.deny(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, err error) {
	var d *Denial
	if !errors.As(err, &d) {
		if g.Log != nil {
			g.Log.Error("credential lookup failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if g.failures != nil {
		g.failures.WithLabelValues(d.Reason).Inc()
	}
	if g.Log != nil {
		g.Log.Info("auth denied", zap.String("reason", d.Reason), zap.String("path", r.URL.Path))
	}

	realm := g.Realm
	if realm == "" {
		realm = "restricted"
	}
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, realm))
	kit.WriteText(w, http.StatusUnauthorized, d.Message)
}
