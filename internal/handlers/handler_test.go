// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Everything runs in memory: sessions use the memory
// backend and the AI provider is a stub.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"testifyhub/internal/advisor"
	"testifyhub/internal/ai"
	"testifyhub/internal/catalog"
	"testifyhub/internal/middleware"
	"testifyhub/internal/models"
	"testifyhub/internal/render"
	"testifyhub/internal/session"
)

const testPassword = "correct horse"

// mockAIProvider implements ai.Provider for handler tests. A non-nil
// release channel holds every call until it is closed.
type mockAIProvider struct {
	mu       sync.Mutex
	response string
	err      error
	release  chan struct{}
	requests []ai.Request
}

func (m *mockAIProvider) Name() string { return "mock" }

func (m *mockAIProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	release := m.release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func (m *mockAIProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// testCatalog returns a small catalog; template 103 points at a category
// that does not exist.
func testCatalog() *catalog.Store {
	long := "Covers **guest** and registered checkout."
	cats := []models.Category{
		{ID: 1, Name: "E-Commerce", Icon: "shopping-cart", Subcategories: []string{"Checkout", "Cart"}},
		{ID: 2, Name: "FinTech", Subcategories: []string{"Banking"}},
	}
	tmpls := []models.Template{
		{ID: 101, Title: "E-commerce Checkout Flow", Description: "End-to-end checkout tests", LongDescription: &long,
			Author: "QA Team", CategoryID: 1, Tags: []string{"Selenium", "E2E"}, Stats: models.Stats{Stars: 1240, Clones: 50}, Price: models.PriceFree},
		{ID: 102, Title: "Banking API Security Suite", Description: "OWASP checks for banking APIs",
			Author: "SecOps", CategoryID: 2, Tags: []string{"API"}, Stats: models.Stats{Stars: 3000, Clones: 10}, Price: models.PricePremium},
		{ID: 103, Title: "Legacy Load Test", Description: "JMeter plans",
			Author: "Perf Guild", CategoryID: 9, Tags: []string{"Performance"}, Stats: models.Stats{Stars: 10, Clones: 900}, Price: models.PriceFree},
	}
	tags := []models.Tag{{ID: 1, Name: "Selenium"}, {ID: 2, Name: "API"}, {ID: 3, Name: "E2E"}}
	return catalog.New(cats, tmpls, tags)
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	Catalog  *catalog.Store
	Sessions *session.Store
	Backend  *session.MemoryBackend
	Provider *mockAIProvider
	Jobs     *advisor.Jobs
	Router   http.Handler

	cookies map[string]*http.Cookie
}

// newTestEnv creates a complete test environment. With adminOpen false the
// admin area requires testPassword.
func newTestEnv(t *testing.T, adminOpen bool) *testEnv {
	t.Helper()

	renderer, err := render.New(true, adminOpen)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	hash := ""
	if !adminOpen {
		b, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		hash = string(b)
	}

	env := &testEnv{
		Catalog:  testCatalog(),
		Backend:  session.NewMemoryBackend(),
		Provider: &mockAIProvider{response: "## Key Scenarios\n1. Happy path"},
		Jobs:     advisor.NewJobs(5*time.Second, time.Minute),
		cookies:  map[string]*http.Cookie{},
	}
	env.Sessions = session.NewStore(env.Backend, false)
	t.Cleanup(env.Jobs.Wait)

	adv := advisor.New(env.Provider, nil)
	market := NewMarketplace(renderer, env.Catalog, env.Jobs)
	advisory := NewAdvisory(renderer, env.Catalog, adv, env.Jobs)
	cats := NewCategories(renderer, env.Sessions, env.Catalog)
	auth := NewAuth(renderer, env.Sessions, hash)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(env.Sessions))
	r.Get("/", market.List)
	r.Get("/templates/{slug}", market.Detail)
	r.Post("/templates/{slug}/clone", market.Clone)
	r.Post("/templates/{slug}/analysis", advisory.Analyze)
	r.Get("/templates/{slug}/jobs/{id}", advisory.AnalysisPoll)
	r.Get("/generate", advisory.GeneratePage)
	r.Post("/generate", advisory.Generate)
	r.Get("/generate/jobs/{id}", advisory.GeneratePoll)
	r.Get("/admin/login", auth.LoginPage)
	r.Post("/admin/login", auth.LoginSubmit)
	r.Post("/admin/logout", auth.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(adminOpen))
		r.Get("/admin/categories", cats.Page)
		r.Post("/admin/categories/new", cats.New)
		r.Post("/admin/categories/{id}/select", cats.Select)
		r.Post("/admin/categories/cancel", cats.Cancel)
		r.Post("/admin/categories/subcategories/add", cats.AddSubcategory)
		r.Post("/admin/categories/subcategories/{index}/remove", cats.RemoveSubcategory)
		r.Post("/admin/categories/save", cats.Save)
		r.Post("/admin/categories/delete", cats.Delete)
	})
	r.NotFound(NotFound(renderer))
	env.Router = r

	return env
}

// do sends a request through the router, carrying the cookies set by
// earlier responses like a browser would. A nil form sends no body.
func (e *testEnv) do(t *testing.T, method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(e.cookies, c.Name)
			continue
		}
		e.cookies[c.Name] = c
	}
	return w
}

// follow performs a GET on the response's Location header.
func (e *testEnv) follow(t *testing.T, w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d; body: %s", w.Code, w.Body.String())
	}
	loc, _, _ := strings.Cut(w.Header().Get("Location"), "#")
	return e.do(t, http.MethodGet, loc, nil, false)
}

// session returns the stored session for the current cookie.
func (e *testEnv) session(t *testing.T) *session.Data {
	t.Helper()
	c, ok := e.cookies[session.CookieName]
	if !ok {
		t.Fatal("no session cookie")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	data, err := e.Sessions.Get(context.Background(), req)
	if err != nil || data == nil {
		t.Fatalf("session lookup: %v (data=%v)", err, data)
	}
	return data
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body should contain %q", want)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(body, s) {
			t.Errorf("body should not contain %q", s)
		}
	}
}
