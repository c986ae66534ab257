package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/logging"
	"github.com/JonMunkholm/timetable-admin/internal/views"
)

// recentImports is how many imports the admin dashboard lists.
const recentImports = 10

func (s *Server) refreshCookieName() string {
	return s.cfg.Auth.CookieName + "_refresh"
}

// setSessionCookies stores both tokens as HttpOnly cookies. The refresh
// token is only sent to the refresh endpoint.
func (s *Server) setSessionCookies(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    sess.AccessToken,
		Path:     "/",
		MaxAge:   int(s.cfg.Auth.AccessTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName(),
		Value:    sess.RefreshToken,
		Path:     "/api/auth/refresh",
		MaxAge:   int(s.cfg.Auth.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{
		{s.cfg.Auth.CookieName, "/"},
		{s.refreshCookieName(), "/api/auth/refresh"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cfg.Auth.CookieSecure,
		})
	}
}

// handleLoginPage renders the sign-in form, or sends a signed-in user home.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = views.Login(views.LoginData{Role: string(auth.RoleStudent)}).Render(r.Context(), w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, s.auth.Login)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, s.auth.Signup)
}

type sessionStarter func(ctx context.Context, c auth.Credentials) (*auth.Session, error)

// startSession runs login or signup. Browsers are redirected to their
// dashboard; JSON clients get the session with its tokens.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, start sessionStarter) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	creds := auth.Credentials{
		Email:    values["email"],
		Password: values["password"],
		Role:     values["role"],
	}

	sess, err := start(r.Context(), creds)
	if err != nil {
		if wantsJSON(r) {
			respondError(w, r, err)
			return
		}
		msg := core.MapError(err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusFor(err))
		_ = views.Login(views.LoginData{
			Email: creds.Email,
			Role:  creds.Role,
			Error: msg.Message,
			Code:  msg.Code,
		}).Render(r.Context(), w)
		return
	}

	s.setSessionCookies(w, sess)
	logging.WithFields(auth.WithSession(r.Context(), sess), "path", r.URL.Path).Info("session started")

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, sess)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout drops the session cookies.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookies(w)
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleRefresh trades a refresh token (body field or cookie) for a new pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if r.ContentLength != 0 {
		values, err := formValues(w, r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		token = values["refresh_token"]
	}
	if token == "" {
		if c, err := r.Cookie(s.refreshCookieName()); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		respondError(w, r, auth.ErrNoSession)
		return
	}

	sess, err := s.auth.Refresh(token)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.setSessionCookies(w, sess)
	writeJSON(w, http.StatusOK, sess)
}

// handleMe returns the current session without its tokens.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := *session(r)
	sess.AccessToken, sess.RefreshToken = "", ""
	writeJSON(w, http.StatusOK, sess)
}

// handleDashboard renders the dashboard for the session's role.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session(r)

	var groups []views.PanelGroup
	index := make(map[string]int)
	for _, def := range core.ForRole(sess.Role) {
		card := views.PanelCard{Info: def.Info, Synced: s.service.Synced(def)}

		// A failing count should not take the dashboard down.
		if recs, err := s.service.List(ctx, sess.Role, def.Info.Key); err == nil {
			card.Records = len(recs)
		} else {
			logging.FromContext(ctx).Warn("dashboard: count failed", "panel", def.Info.Key, "error", err)
		}

		i, ok := index[def.Info.Group]
		if !ok {
			i = len(groups)
			index[def.Info.Group] = i
			groups = append(groups, views.PanelGroup{Name: def.Info.Group})
		}
		groups[i].Panels = append(groups[i].Panels, card)
	}

	data := views.DashboardData{Session: *sess, Groups: groups}
	if sess.Role == auth.RoleAdmin {
		data.Imports = s.service.Imports()
		if len(data.Imports) > recentImports {
			data.Imports = data.Imports[:recentImports]
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Dashboard(data).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("dashboard render failed", "error", err)
	}
}
