package http

import (
	"log/slog"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academics/internal/prereq"
)

func ListAllPrerequisitesHandler(c *prereq.Checker, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		edges, err := c.ListAllPrerequisites(r.Context())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"prerequisites": edges})
	}
}

func ListPrerequisitesHandler(c *prereq.Checker, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		code := prereq.NormalizeCode(chi.URLParam(r, "courseCode"))
		edges, err := c.ListPrerequisites(r.Context(), code)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"course_code": code, "prerequisites": edges})
	}
}

// POST /courses/{courseCode}/prerequisites  { "prerequisite_code": "CS101" }
func AddPrerequisiteHandler(c *prereq.Checker, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			PrerequisiteCode string `json:"prerequisite_code"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		e, err := c.AddPrerequisite(r.Context(), chi.URLParam(r, "courseCode"), req.PrerequisiteCode)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, e)
	}
}

func RemovePrerequisiteHandler(c *prereq.Checker, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := c.RemovePrerequisite(r.Context(), chi.URLParam(r, "edgeID")); err != nil {
			writeError(w, r, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
