package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/teammatch/internal/config"
	"github.com/jonathan/teammatch/internal/logging"
	"github.com/jonathan/teammatch/internal/server/middleware"
	"github.com/jonathan/teammatch/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       *Store
	jwtService  *JWTService
	userService *UserService
	rateLimiter *ratelimit.Limiter
	metrics     *metrics
	validator   *validator.Validate
	logger      *zap.Logger
}

// Config holds server configuration
type Config struct {
	Addr      string
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
	// Registry receives the request metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
	// BasePath mounts every route under a prefix such as "/api".
	BasePath string
	Now      func() time.Time
}

// New creates a new server instance
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if cfg.JWT == nil || cfg.Password == nil {
		return nil, fmt.Errorf("JWT and password configuration are required")
	}
	logger = logging.OrNop(logger)
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	m, err := newMetrics(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	store := NewStore(cfg.Now)
	s := &Server{
		store:       store,
		jwtService:  NewJWTService(cfg.JWT),
		userService: NewUserService(store, cfg.Password),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		metrics:     m,
		validator:   validator.New(),
		logger:      logger,
	}
	if cfg.Now != nil {
		s.jwtService.now = cfg.Now
	}

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	// Auth
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.Handle("GET /auth/me", protected(s.handleMe))
	mux.Handle("GET /auth/users", protected(s.handleListUsers))
	mux.Handle("GET /users/{id}", protected(s.handleGetUser))
	mux.Handle("PUT /users/{id}", protected(s.handleUpdateUser))

	// Project postings
	mux.HandleFunc("GET /project-posts", s.handleListPostings)
	mux.HandleFunc("GET /project-posts/{id}", s.handleGetPosting)
	mux.Handle("POST /project-posts", protected(s.handleCreatePosting))
	mux.Handle("PUT /project-posts/{id}", protected(s.handleUpdatePosting))
	mux.Handle("DELETE /project-posts/{id}", protected(s.handleDeletePosting))

	// Profiles
	mux.HandleFunc("GET /user-profiles", s.handleListProfiles)
	mux.HandleFunc("GET /user-profiles/{id}", s.handleGetProfile)
	mux.Handle("POST /user-profiles", protected(s.handleCreateProfile))
	mux.Handle("PUT /user-profiles/{id}", protected(s.handleUpdateProfile))
	mux.Handle("DELETE /user-profiles/{id}", protected(s.handleDeleteProfile))

	// Applications
	mux.Handle("GET /applications", protected(s.handleListApplications))
	mux.Handle("GET /applications/user", protected(s.handleMyApplications))
	mux.Handle("GET /applications/project/{id}", protected(s.handleProjectApplications))
	mux.Handle("GET /applications/{id}", protected(s.handleGetApplication))
	mux.Handle("POST /applications", protected(s.handleCreateApplication))
	mux.Handle("PUT /applications/{id}", protected(s.handleUpdateApplication))
	mux.Handle("DELETE /applications/{id}", protected(s.handleDeleteApplication))

	// Teams
	mux.Handle("GET /teams", protected(s.handleListTeams))
	mux.Handle("POST /teams", protected(s.handleCreateTeam))
	mux.Handle("GET /teams/{id}", protected(s.handleGetTeam))
	mux.Handle("PUT /teams/{id}", protected(s.handleUpdateTeam))
	mux.Handle("DELETE /teams/{id}", protected(s.handleDeleteTeam))
	mux.Handle("GET /teams/{id}/start-ready/{project_id}", protected(s.handleStartReady))
	mux.Handle("POST /teams/{id}/start-project", protected(s.handleStartProject))
	mux.Handle("DELETE /teams/{id}/members/{member_id}", protected(s.handleRemoveMember))

	// Invitations
	mux.Handle("POST /teams/{id}/invitations", protected(s.handleSendInvitation))
	mux.Handle("GET /teams/{id}/invitations", protected(s.handleTeamInvitations))
	mux.Handle("GET /teams/invitations/my", protected(s.handleMyInvitations))
	mux.Handle("POST /teams/invitations/{id}/respond", protected(s.handleRespondInvitation))

	// Leave requests
	mux.Handle("POST /teams/{id}/leave-requests", protected(s.handleCreateLeaveRequest))
	mux.Handle("GET /teams/{id}/leave-requests", protected(s.handleTeamLeaveRequests))
	mux.Handle("POST /teams/leave-requests/{id}/respond", protected(s.handleRespondLeaveRequest))

	// Started projects
	mux.Handle("GET /projects/my", protected(s.handleMyProjects))
	mux.Handle("GET /projects/{id}", protected(s.handleGetProject))
	mux.Handle("GET /team-assignments/project/{id}", protected(s.handleListAssignments))
	mux.Handle("POST /team-assignments/ai/generate/{id}", protected(s.handleGenerateAssignments))
	mux.Handle("PATCH /team-assignments/{id}", protected(s.handleUpdateAssignment))
	mux.Handle("GET /weekly-reports/project/{id}", protected(s.handleListReports))
	mux.Handle("GET /weekly-reports/{id}", protected(s.handleGetReport))
	mux.Handle("POST /weekly-reports/ai/generate/{id}", protected(s.handleGenerateReport))

	// Match explanations
	mux.HandleFunc("GET /match/reason", s.handleUserMatchReason)
	mux.HandleFunc("GET /project-match/reason/{user_id}/{project_id}", s.handleProjectMatchReason)

	s.handler = s.withMetrics(s.withRateLimit(s.withLogging(s.withCORS(mux))))
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		s.handler = http.StripPrefix(base, s.handler)
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store exposes the in-memory data, for seeding.
func (s *Server) Store() *Store {
	return s.store
}

// Users exposes account registration, for seeding.
func (s *Server) Users() *UserService {
	return s.userService
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("development backend listening", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down development backend")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("development backend stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withMetrics records every request, including rate-limited ones.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.observe(r, rec.status, time.Since(start))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())+1))
			}
			s.logger.Warn("rate limit exceeded",
				zap.String("client", clientID(r)),
				zap.String("path", r.URL.Path),
				zap.Int("limit", info.Limit),
			)
			s.errorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID is the remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, map[string]string{"error": code, "message": message})
}

// fail maps err to its status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.errorResponse(w, status, "internal_error", "Internal server error")
		return
	}
	s.errorResponse(w, status, errorCode(status), err.Error())
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "error"
	}
}

// decode reads and validates a JSON body. It writes the 400 itself and
// reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", extractValidationErrors(err))
		return false
	}
	return true
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// actor is the authenticated caller. Protected routes always have one.
func actor(r *http.Request) middleware.Identity {
	id, _ := middleware.GetIdentity(r)
	return id
}
