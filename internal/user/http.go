package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopAPI/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger

	// Optional per-route middleware, typically rate limiters.
	SignupMiddleware func(http.Handler) http.Handler
	SigninMiddleware func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.With(optional(s.SignupMiddleware)...).Post("/signup", s.handleSignup)
	r.With(optional(s.SigninMiddleware)...).Post("/signin", s.handleSignin)

	return r
}

func optional(mw func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	if mw == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{mw}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResp struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}

	u, err := s.Store.Add(r.Context(), req.Email, req.Password)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("signup failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, u)
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	u, err := s.Store.FindByCredentials(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusUnauthorized, "Incorrect Credentials", nil)
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("signin failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, signinResp{Message: "Login Successful", Email: u.Email})
}

// decodeCredentials reads exactly one JSON object; extra keys such as name
// are ignored. Values are kept verbatim, with no trimming or case folding.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)

	var req credentialsReq
	if err := dec.Decode(&req); err != nil {
		return credentialsReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return credentialsReq{}, errors.New("extra data after json object")
	}
	return req, nil
}
