package http

import (
	"log/slog"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academics/internal/grading"
	"github.com/mind-engage/mindengage-academics/internal/records"
)

// POST /courses  { "code": "CS101", "name": "...", "credits": 3 }
func CreateCourseHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Code    string  `json:"code"`
			Name    string  `json:"name"`
			Credits float64 `json:"credits"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		c, err := svc.CreateCourse(r.Context(), records.Course{Code: req.Code, Name: req.Name, Credits: req.Credits})
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, c)
	}
}

// PUT /courses/{courseID}/assessments  { "assessments": [ {id, name, weight, max_score} ] }
func DefineAssessmentsHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Assessments []grading.AssessmentDefinition `json:"assessments"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		courseID := chi.URLParam(r, "courseID")
		if err := svc.DefineAssessments(r.Context(), courseID, req.Assessments); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"course_id": courseID, "assessments": req.Assessments})
	}
}

func ListAssessmentsHandler(svc *records.GradeService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		defs, err := svc.Assessments(r.Context(), courseID)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"course_id": courseID, "assessments": defs})
	}
}
