package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/rasgroup/bagcapturer/internal/logging"
	"github.com/rasgroup/bagcapturer/internal/server/auth"
	"github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/services"
)

// Server serves the dashboard pages and the JSON API.
type Server struct {
	config     *config.Config
	logger     logging.Logger
	renderer   *Renderer
	router     *Router
	gate       *auth.Gate
	accounts   *services.AccountService
	recordings *services.RecordingService

	httpServer *http.Server
}

// NewServer wires the HTTP surface together.
func NewServer(cfg *config.Config, logger logging.Logger, renderer *Renderer, router *Router,
	gate *auth.Gate, accounts *services.AccountService, recordings *services.RecordingService) *Server {
	return &Server{
		config:     cfg,
		logger:     logger.With("module", "web"),
		renderer:   renderer,
		router:     router,
		gate:       gate,
		accounts:   accounts,
		recordings: recordings,
	}
}

// Handler builds the full route tree: the JSON API under /api, then the
// Basic-auth-gated catch-all serving the dashboard pages.
func (s *Server) Handler() http.Handler {
	m := mux.NewRouter()

	api := m.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.Handle("/status", s.requireBearer(http.HandlerFunc(s.handleStatus))).Methods(http.MethodGet)
	api.Handle("/recordings/{id}/download",
		s.basicAuth(http.HandlerFunc(s.handleDownload))).Methods(http.MethodGet)

	m.PathPrefix("/").Handler(s.basicAuth(http.HandlerFunc(s.handleDashboard)))

	var h http.Handler = m
	if s.config.DebugMode {
		h = s.logRequests(h)
	}
	return cors.AllowAll().Handler(h)
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info(context.Background(), "dashboard listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// basicAuth protects dashboard routes with HTTP Basic auth. The check is
// active only when the auth flag is set and at least one account exists;
// otherwise requests pass through.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.AuthEnabled {
			next.ServeHTTP(w, r)
			return
		}

		count, err := s.accounts.Count(r.Context())
		if err != nil {
			s.logger.Error(r.Context(), "account count failed", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if count == 0 {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || !s.gate.Authorize(r.Context(), username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="capturer"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := WithParams(r.Context(), PageParams{
		Table: r.URL.Query().Get("table"),
		Query: r.URL.Query().Get("q"),
	})

	view := s.router.Display(ctx, r.URL.Path)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Index(w, view); err != nil {
		s.logger.Error(ctx, "writing page failed", "path", r.URL.Path, "error", err.Error())
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	url, err := s.recordings.GetDownloadURL(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.logger.Error(r.Context(), "presigning download failed", "recording", id, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	pair, err := s.accounts.Login(r.Context(), req.Username, []byte(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	pair, err := s.accounts.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) || errors.Is(err, common.ErrorNotFound) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.logger.Error(r.Context(), "token refresh failed", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// requireBearer admits only requests carrying a valid access token.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := s.accounts.ValidateAccessToken(token); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.recordings.Status(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "status query failed", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, map[string]int64{
		"running":  counts.Running,
		"finished": counts.Finished,
		"failed":   counts.Failed,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "writing response failed", "error", err.Error())
	}
}
