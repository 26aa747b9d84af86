package web

import (
	"net/http"

	"github.com/google/uuid"

	appLog "interviewpro/internal/log"
)

const stateCookie = "interviewpro_oauth_state"

type authStatus struct {
	Provider      string `json:"provider"`
	LoginRequired bool   `json:"loginRequired"`
	Authenticated bool   `json:"authenticated"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, _ *http.Request) {
	st := authStatus{Provider: s.opts.Config.Calendar.Provider, Authenticated: true}
	if s.opts.Auth != nil {
		st.LoginRequired = true
		st.Authenticated = s.opts.Auth.IsAuthenticated()
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Auth == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.opts.Auth.Logout(); err != nil {
		appLog.Error("web: logout failed", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLogin redirects to the provider consent page. The state value is
// kept in a short-lived cookie and checked on the callback.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.Auth == nil {
		writeError(w, http.StatusNotFound, "login is not required for this calendar provider")
		return
	}
	state := uuid.NewString()
	u, err := s.opts.Auth.AuthCodeURL(state)
	if err != nil {
		appLog.Error("web: auth url failed", err)
		writeError(w, http.StatusInternalServerError, "login unavailable")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, u, http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if s.opts.Auth == nil {
		writeError(w, http.StatusNotFound, "login is not required for this calendar provider")
		return
	}
	q := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || !secureCompare(c.Value, q.Get("state")) {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	if e := q.Get("error"); e != "" {
		writeError(w, http.StatusBadRequest, "authorization denied: "+e)
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}
	if err := s.opts.Auth.Exchange(r.Context(), code); err != nil {
		appLog.Error("web: token exchange failed", err)
		writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})
	appLog.Info("web: calendar login completed")
	http.Redirect(w, r, "/board", http.StatusFound)
}
