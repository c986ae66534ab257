package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	mw "github.com/JonMunkholm/timetable-admin/internal/web/middleware"
)

// withRequestMetadata records the client IP and the signed-in user on ctx
// for the service's import and mutation logs.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, mw.ClientIP(r))
	if s, ok := auth.FromContext(ctx); ok {
		ctx = core.ContextWithActor(ctx, s.Email)
	}
	return ctx
}

// session returns the request's session. Routes behind RequireSession
// always have one.
func session(r *http.Request) *auth.Session {
	s, ok := auth.FromContext(r.Context())
	if !ok {
		return &auth.Session{Role: auth.RoleStudent}
	}
	return s
}
