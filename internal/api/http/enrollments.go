package http

import (
	"log/slog"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academics/internal/grading"
	"github.com/mind-engage/mindengage-academics/internal/rbac"
	"github.com/mind-engage/mindengage-academics/internal/records"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

// POST /enrollments  { "student_id": "...", "course_id": "..." }
func EnrollHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			StudentID string `json:"student_id"`
			CourseID  string `json:"course_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		e, err := svc.Enroll(r.Context(), req.StudentID, req.CourseID)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, e)
	}
}

// PUT /enrollments/{enrollmentID}/scores  { "scores": [ {assessment_id, score, max_score} ] }
func EnterScoresHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Scores []grading.ScoreEntry `json:"scores"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		id := chi.URLParam(r, "enrollmentID")
		if err := svc.EnterScores(r.Context(), id, req.Scores); err != nil {
			writeError(w, r, log, err)
			return
		}
		rep, err := svc.Grade(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, rep)
	}
}

// GradeHandler serves grade:view holders, and students holding
// grade:view-own for their own enrollment.
// GradeHandler serves roles with grade:view any report and roles with
// grade:view-own only their own. Unknown and foreign enrollments look the same
// to the latter.
func GradeHandler(svc *records.GradeService, perms *rbac.Checker, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		scope := perms.Scope(rbac.RoleFromContext(r.Context()), "grade:view")
		if scope == rbac.ScopeNone {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		rep, err := svc.Grade(r.Context(), chi.URLParam(r, "enrollmentID"))
		if scope == rbac.ScopeOwn && (shared.IsNotFound(err) ||
			err == nil && rep.StudentID != rbac.SubjectFromContext(r.Context())) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, rep)
	}
}

func FinalizeHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		e, err := svc.Finalize(r.Context(), chi.URLParam(r, "enrollmentID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, e)
	}
}

func WithdrawHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		e, err := svc.Withdraw(r.Context(), chi.URLParam(r, "enrollmentID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, e)
	}
}
