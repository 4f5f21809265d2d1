// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"testifyhub/internal/advisor"
	"testifyhub/internal/catalog"
	"testifyhub/internal/middleware"
	"testifyhub/internal/render"
	"testifyhub/internal/slug"
)

// StatusStopPolling tells HTMX to stop an hx-trigger="every ..." poll.
const StatusStopPolling = 286

// ExpiredMessage replaces a result that was evicted before it was read.
const ExpiredMessage = "This result has expired. Run it again to get a fresh answer."

// Advisory groups the AI advisory handlers. Requests start a background
// job and return at once; the page then polls for the result.
type Advisory struct {
	renderer *render.Renderer
	catalog  *catalog.Store
	advisor  *advisor.Advisor
	jobs     *advisor.Jobs
}

// NewAdvisory creates a new Advisory handler group.
func NewAdvisory(renderer *render.Renderer, store *catalog.Store, adv *advisor.Advisor, jobs *advisor.Jobs) *Advisory {
	return &Advisory{renderer: renderer, catalog: store, advisor: adv, jobs: jobs}
}

// adviceView describes how one kind of advisory slot is rendered.
type adviceView struct {
	pollURL  func(id uuid.UUID) string
	pending  string
	retryURL string
	fallback string
}

func analysisView(sl string) adviceView {
	return adviceView{
		pollURL:  func(id uuid.UUID) string { return fmt.Sprintf("/templates/%s/jobs/%s", sl, id) },
		pending:  "Analyzing template...",
		retryURL: fmt.Sprintf("/templates/%s/analysis", sl),
		fallback: advisor.AnalysisFallback,
	}
}

func generationView() adviceView {
	return adviceView{
		pollURL:  func(id uuid.UUID) string { return "/generate/jobs/" + id.String() },
		pending:  "Generating test case...",
		retryURL: "/generate",
		fallback: advisor.GenerationFallback,
	}
}

func (v adviceView) render(job advisor.Job) *render.Advice {
	if !job.Done {
		return &render.Advice{Pending: true, PollURL: v.pollURL(job.ID), PendingLabel: v.pending}
	}
	return &render.Advice{Text: job.Result, Failed: job.Result == v.fallback, RetryURL: v.retryURL}
}

// jobAdvice looks up a job for subject and renders it. Expired jobs render
// ExpiredMessage; a job started for another subject yields
// advisor.ErrStaleJob and no view.
func jobAdvice(jobs *advisor.Jobs, rawID, subject string, v adviceView) (*render.Advice, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, advisor.ErrJobNotFound
	}

	job, err := jobs.Lookup(id, subject)
	switch {
	case errors.Is(err, advisor.ErrJobNotFound):
		return &render.Advice{Text: ExpiredMessage, Failed: true, RetryURL: v.retryURL}, err
	case err != nil:
		return nil, err
	}
	return v.render(job), nil
}

// Analyze starts an AI analysis of the template.
func (a *Advisory) Analyze(w http.ResponseWriter, r *http.Request) {
	t, ok := a.catalog.TemplateBySlug(chi.URLParam(r, "slug"))
	if !ok {
		notFound(a.renderer, w, r, "Template not found.")
		return
	}
	sl := slug.Generate(t.Title)

	id := a.jobs.Start(advisor.TemplateSubject(t.ID), func(ctx context.Context) string {
		return a.advisor.AnalyzeTemplate(ctx, t.Title, t.Description)
	})
	slog.Info("template analysis started", "template", t.ID, "job", id)

	if !isHTMX(r) {
		http.Redirect(w, r, fmt.Sprintf("/templates/%s?job=%s#analysis", sl, id), http.StatusSeeOther)
		return
	}
	v := analysisView(sl)
	a.renderer.Fragment(w, http.StatusOK, "advice", &render.Advice{
		Pending: true, PollURL: v.pollURL(id), PendingLabel: v.pending,
	})
}

// AnalysisPoll returns the current state of an analysis job.
func (a *Advisory) AnalysisPoll(w http.ResponseWriter, r *http.Request) {
	t, ok := a.catalog.TemplateBySlug(chi.URLParam(r, "slug"))
	if !ok {
		stopPolling(w)
		return
	}
	a.poll(w, r, advisor.TemplateSubject(t.ID), analysisView(slug.Generate(t.Title)))
}

// GeneratePage renders the test case generator. A ?job= parameter resumes
// a running or finished generation for this session.
func (a *Advisory) GeneratePage(w http.ResponseWriter, r *http.Request) {
	var advice *render.Advice
	if id := r.URL.Query().Get("job"); id != "" {
		advice, _ = jobAdvice(a.jobs, id, advisor.GeneratorSubject(sessionID(r)), generationView())
	}
	a.renderGenerate(w, r, "", "", advice)
}

// Generate validates the requirement and starts a test case generation.
func (a *Advisory) Generate(w http.ResponseWriter, r *http.Request) {
	requirement := strings.TrimSpace(r.FormValue("requirement"))

	if msg := validateRequirement(requirement); msg != "" {
		if isHTMX(r) {
			a.renderer.Fragment(w, http.StatusOK, "field_error", msg)
			return
		}
		a.renderGenerate(w, r, requirement, msg, nil)
		return
	}

	id := a.jobs.Start(advisor.GeneratorSubject(sessionID(r)), func(ctx context.Context) string {
		return a.advisor.GenerateTestCase(ctx, requirement)
	})
	slog.Info("test case generation started", "job", id)

	if !isHTMX(r) {
		http.Redirect(w, r, "/generate?job="+id.String(), http.StatusSeeOther)
		return
	}
	v := generationView()
	a.renderer.Fragment(w, http.StatusOK, "advice", &render.Advice{
		Pending: true, PollURL: v.pollURL(id), PendingLabel: v.pending,
	})
}

// GeneratePoll returns the current state of a generation job.
func (a *Advisory) GeneratePoll(w http.ResponseWriter, r *http.Request) {
	a.poll(w, r, advisor.GeneratorSubject(sessionID(r)), generationView())
}

// poll renders the job's advice fragment. A job that belongs to another
// subject is never applied: the poll is stopped and nothing is swapped.
func (a *Advisory) poll(w http.ResponseWriter, r *http.Request, subject string, v adviceView) {
	advice, err := jobAdvice(a.jobs, chi.URLParam(r, "id"), subject, v)
	if advice == nil {
		slog.Debug("stale advisory poll dropped", "subject", subject, "error", err)
		stopPolling(w)
		return
	}

	status := http.StatusOK
	if !advice.Pending {
		status = StatusStopPolling
	}
	a.renderer.Fragment(w, status, "advice", advice)
}

func (a *Advisory) renderGenerate(w http.ResponseWriter, r *http.Request, requirement, errMsg string, advice *render.Advice) {
	a.renderer.Page(w, r, "generate", &render.PageData{
		Title:   "AI Test Case Generator",
		Section: "generate",
		Data: map[string]any{
			"Requirement": requirement,
			"Error":       errMsg,
			"Advice":      advice,
		},
	})
}

// stopPolling ends an HTMX poll without touching the page.
func stopPolling(w http.ResponseWriter) {
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(StatusStopPolling)
}

// sessionID returns the visitor's session id, or "" without a session.
func sessionID(r *http.Request) string {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return sess.ID
	}
	return ""
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
