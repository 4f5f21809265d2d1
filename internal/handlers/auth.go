// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"testifyhub/internal/middleware"
	"testifyhub/internal/render"
	"testifyhub/internal/session"
)

// Auth groups the admin sign-in handlers. There is a single shared admin
// password, stored as a bcrypt hash.
type Auth struct {
	renderer     *render.Renderer
	sessions     *session.Store
	passwordHash []byte
}

// NewAuth creates a new Auth handler group. An empty hash means the admin
// area is open and the login form only redirects.
func NewAuth(renderer *render.Renderer, sessions *session.Store, passwordHash string) *Auth {
	return &Auth{
		renderer:     renderer,
		sessions:     sessions,
		passwordHash: []byte(passwordHash),
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if len(a.passwordHash) == 0 || (sess != nil && sess.Admin) {
		http.Redirect(w, r, CategoriesPath, http.StatusSeeOther)
		return
	}

	a.renderLogin(w, r, "")
}

// LoginSubmit checks the password and upgrades the visitor to an admin
// session. The session ID is rotated on sign-in; the editor state carries
// over.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if len(a.passwordHash) == 0 {
		http.Redirect(w, r, CategoriesPath, http.StatusSeeOther)
		return
	}

	password := r.FormValue("password")
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		slog.Warn("admin login failed", "remote", r.RemoteAddr)
		a.renderLogin(w, r, "Invalid password.")
		return
	}

	data := &session.Data{Admin: true}
	if old := middleware.SessionFromCtx(r.Context()); old != nil {
		data.Editor = old.Editor
	}
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("admin signed in", "remote", r.RemoteAddr)
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusSeeOther)
}

// Logout destroys the session and returns to the marketplace.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Auth) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	next := r.FormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Error": errMsg, "Next": safeNext(next)},
	})
}

// safeNext keeps post-login redirects inside the admin area.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/admin/") && next != middleware.LoginPath {
		return next
	}
	return CategoriesPath
}
