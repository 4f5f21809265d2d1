package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"testifyhub/internal/session"
)

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// ---------- SessionFromCtx ----------

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := &session.Data{ID: "abc", Admin: true}
		got := SessionFromCtx(WithSession(context.Background(), sess))
		if got != sess {
			t.Fatalf("got %+v, want %+v", got, sess)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

// ---------- LoadSession ----------

func TestLoadSession(t *testing.T) {
	store := session.NewStore(session.NewMemoryBackend(), false)

	var got *session.Data
	handler := LoadSession(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromCtx(r.Context())
	}))

	t.Run("creates a session for new visitors", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if got == nil || got.ID == "" {
			t.Fatalf("expected a fresh session in context, got %+v", got)
		}
		var cookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == session.CookieName {
				cookie = c
			}
		}
		if cookie == nil || cookie.Value != got.ID {
			t.Fatalf("session cookie = %+v, want value %q", cookie, got.ID)
		}

		t.Run("reuses it on the next request", func(t *testing.T) {
			first := got.ID
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookie)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if got == nil || got.ID != first {
				t.Errorf("session ID = %v, want %q", got, first)
			}
			if len(rr.Result().Cookies()) != 0 {
				t.Error("existing session should not set a new cookie")
			}
		})
	})

	t.Run("replaces an unknown session id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "expired"})
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if got == nil || got.ID == "expired" {
			t.Errorf("expected a new session, got %+v", got)
		}
	})
}

// ---------- RequireAdmin ----------

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		open       bool
		sess       *session.Data
		htmx       bool
		wantCalled bool
		wantStatus int
	}{
		{name: "admin session passes", sess: &session.Data{Admin: true}, wantCalled: true, wantStatus: http.StatusOK},
		{name: "visitor redirected", sess: &session.Data{}, wantStatus: http.StatusSeeOther},
		{name: "no session redirected", wantStatus: http.StatusSeeOther},
		{name: "htmx visitor gets HX-Redirect", sess: &session.Data{}, htmx: true, wantStatus: http.StatusUnauthorized},
		{name: "open admin passes anyone", open: true, wantCalled: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireAdmin(tt.open)(inner)

			req := httptest.NewRequest(http.MethodGet, "/admin/categories", nil)
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), tt.sess))
			}
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", *called, tt.wantCalled)
			}
			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			switch {
			case tt.wantStatus == http.StatusSeeOther:
				if loc := rr.Header().Get("Location"); loc != LoginPath {
					t.Errorf("Location = %q, want %q", loc, LoginPath)
				}
			case tt.htmx:
				if loc := rr.Header().Get("HX-Redirect"); loc != LoginPath {
					t.Errorf("HX-Redirect = %q, want %q", loc, LoginPath)
				}
			}
		})
	}
}
