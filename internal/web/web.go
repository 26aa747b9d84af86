package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"interviewpro/internal/calsync"
	"interviewpro/internal/config"
	"interviewpro/internal/insight"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/roster"
	"interviewpro/internal/session"
)

// Authenticator is the login surface the server drives. It is nil when the
// calendar provider needs no login.
type Authenticator interface {
	IsAuthenticated() bool
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code string) error
	Logout() error
}

// Options wires the server to the application services.
type Options struct {
	Config     *config.Config
	Roster     *roster.Roster
	Syncer     *calsync.Syncer
	Auth       Authenticator
	Bank       *session.Bank
	Drafts     *session.Drafts
	Summarizer insight.Summarizer

	// Now is injectable for tests.
	Now func() time.Time
}

// Server provides the JSON API and the HTML board.
type Server struct {
	opts Options
	mux  *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Summarizer == nil {
		opts.Summarizer = insight.Unavailable{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.opts.Config.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.opts.Config.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.opts.Config.BasicAuth.Username
	password := s.opts.Config.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="InterviewPro", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/candidates", s.handleListCandidates)
	s.mux.HandleFunc("POST /api/candidates", s.handleAddCandidate)
	s.mux.HandleFunc("GET /api/candidates/{id}", s.handleGetCandidate)
	s.mux.HandleFunc("DELETE /api/candidates/{id}", s.handleDeleteCandidate)
	s.mux.HandleFunc("POST /api/candidates/{id}/start", s.handleStartSession)
	s.mux.HandleFunc("PUT /api/candidates/{id}/role", s.handleSetRole)
	s.mux.HandleFunc("PUT /api/candidates/{id}/status", s.handleSetStatus)
	s.mux.HandleFunc("GET /api/candidates/{id}/draft", s.handleGetDraft)
	s.mux.HandleFunc("PUT /api/candidates/{id}/draft", s.handleSaveDraft)
	s.mux.HandleFunc("POST /api/candidates/{id}/notes", s.handleAddNote)
	s.mux.HandleFunc("GET /api/candidates/{id}/summary", s.handleSummary)

	s.mux.HandleFunc("GET /api/persona", s.handlePersona)
	s.mux.HandleFunc("GET /api/board", s.handleBoard)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/role-stats", s.handleRoleStats)
	s.mux.HandleFunc("GET /api/export", s.handleExport)

	s.mux.HandleFunc("GET /api/sync", s.handleSyncStatus)
	s.mux.HandleFunc("POST /api/sync", s.handleSync)

	s.mux.HandleFunc("GET /api/questions", s.handleListQuestions)
	s.mux.HandleFunc("POST /api/questions", s.handleAddQuestion)
	s.mux.HandleFunc("POST /api/questions/reset", s.handleResetQuestions)
	s.mux.HandleFunc("PUT /api/questions/{id}", s.handleEditQuestion)
	s.mux.HandleFunc("DELETE /api/questions/{id}", s.handleDeleteQuestion)

	s.mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /auth/callback", s.handleCallback)

	s.mux.HandleFunc("GET /board", s.handleBoardPage)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/board", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// decodeJSON reads a request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
