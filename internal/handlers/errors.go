package handlers

import (
	"net/http"

	"testifyhub/internal/render"
)

// NotFound returns the handler for unmatched routes.
func NotFound(rn *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notFound(rn, w, r, "")
	}
}

// notFound renders the 404 page. An empty message selects the default.
func notFound(rn *render.Renderer, w http.ResponseWriter, r *http.Request, msg string) {
	rn.PageStatus(w, r, http.StatusNotFound, "not_found", &render.PageData{
		Title: "Not found",
		Data:  map[string]any{"Message": msg},
	})
}
