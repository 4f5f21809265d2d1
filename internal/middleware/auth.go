// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"testifyhub/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// LoginPath is where RequireAdmin sends visitors without an admin session.
const LoginPath = "/admin/login"

// LoadSession retrieves the visitor's session and stores it in the request
// context. Visitors without a valid session get a fresh one, since the
// category editor and the test case generator keep per-visitor state.
// A store failure is logged and the request proceeds without a session.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data == nil {
				data = &session.Data{}
				if _, err := store.Create(r.Context(), w, data); err != nil {
					slog.Warn("session create failed", "path", r.URL.Path, "error", err)
					next.ServeHTTP(w, r)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), data)))
		})
	}
}

// RequireAdmin redirects visitors without an admin session to the login
// page. When open is true (development without a password) every visitor
// is treated as an admin. Must be applied after LoadSession.
func RequireAdmin(open bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open {
				next.ServeHTTP(w, r)
				return
			}

			sess := SessionFromCtx(r.Context())
			if sess == nil || !sess.Admin {
				// HTMX requests need a client-side redirect.
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", LoginPath)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying data.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
