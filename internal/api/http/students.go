package http

import (
	"log/slog"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academics/internal/records"
)

func studentInPath(r *nethttp.Request) string { return chi.URLParam(r, "studentID") }

// GET /students/{studentID}/standing
func StandingHandler(svc *records.TranscriptService, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		t, err := svc.Standing(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, t)
	}
}

// GET /students/{studentID}/eligibility/{courseCode}
func EligibilityHandler(el *records.Eligibility, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		studentID := chi.URLParam(r, "studentID")
		courseCode := chi.URLParam(r, "courseCode")
		res, err := el.Check(r.Context(), studentID, courseCode)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"student_id":  studentID,
			"course_code": courseCode,
			"met":         res.Met,
			"missing":     res.Missing,
		})
	}
}
