// File: internal/infra/web/server.go
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes the operational surface: liveness, Prometheus metrics and
// a small authenticated stats endpoint. It is not part of the bot's user
// surface.
type Server struct {
	auth      *AuthManager
	secret    string
	startedAt time.Time
	log       *zerolog.Logger
}

func NewServer(adminSecret string, logger *zerolog.Logger) *Server {
	return &Server{
		auth:      NewAuthManager(adminSecret, 30*time.Minute),
		secret:    adminSecret,
		startedAt: time.Now(),
		log:       logger,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/ops/login", s.loginHandler)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/api/v1/stats", s.statsHandler)
	})

	return r
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if s.secret == "" {
		s.log.Error().Msg("ops admin secret is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var body struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Secret != s.secret {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.secret == "" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"started_at":     s.startedAt.UTC().Format(time.RFC3339),
	})
}
