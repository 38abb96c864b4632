package vault

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/database/repository"
)

// AuthHeader is the request header checked against the configured token.
const AuthHeader = "x-auth-token"

// Server exposes the Service over HTTP.
type Server struct {
	svc    *Service
	token  string
	logger *slog.Logger
}

// NewServer returns a server. An empty token disables authentication.
func NewServer(svc *Service, token string, logger *slog.Logger) *Server {
	return &Server{svc: svc, token: token, logger: logger}
}

// Routes builds the router. Customer endpoints live under /api/cid.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.health)

	r.Route("/api/cid", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/customer", s.createCustomer)
		r.Get("/token/{id}", s.getCustomer)
		r.Post("/detokenize", s.detokenize)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := r.Header.Get(AuthHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid session token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createCustomer handles POST /api/cid/customer
func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var obj map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil || obj == nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	naming := requestNaming(obj)
	rec, _ := naming.Decode(obj)

	c, err := s.svc.Create(r.Context(), rec)
	var verrs customer.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for f, msg := range verrs {
			fields[naming.Key(f)] = msg
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
			Code:    "INVALID_INPUT",
			Message: "validation failed",
			Fields:  fields,
		}})
		return
	case err != nil:
		s.handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, encodeCustomer(naming, c))
}

// getCustomer handles GET /api/cid/token/{id}
func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, encodeCustomer(customer.NamingDetokenize, c))
}

// detokenize handles POST /api/cid/detokenize. The body carries exactly one field key.
func (s *Server) detokenize(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	if len(body) != 1 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "exactly one search field is required")
		return
	}

	var crit customer.Criterion
	for key, raw := range body {
		f, ok := customer.FieldForKey(key)
		if !ok {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "unknown search field "+key)
			return
		}
		v, err := customer.Scalar(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "search value must be a string")
			return
		}
		crit = customer.Criterion{Field: f, Query: v}
	}

	c, err := s.svc.Detokenize(r.Context(), crit)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if c == nil {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, encodeCustomer(customer.NamingDetokenize, *c))
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customer.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, customer.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "customer not found")
	default:
		s.logger.Error("internal server error", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// requestNaming answers in the profile the caller used.
func requestNaming(obj map[string]json.RawMessage) customer.Naming {
	for _, f := range customer.Fields {
		if _, ok := obj[customer.NamingDetokenize.Key(f)]; ok && f != customer.FieldName {
			return customer.NamingDetokenize
		}
	}
	return customer.NamingCustomer
}

func encodeCustomer(n customer.Naming, c repository.Customer) map[string]string {
	out := n.Encode(c.Record)
	out["id"] = c.ID
	return out
}
