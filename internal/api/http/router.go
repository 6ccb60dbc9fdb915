package http

import (
	"context"
	"log/slog"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmw "github.com/mind-engage/mindengage-academics/internal/auth/middleware"
	"github.com/mind-engage/mindengage-academics/internal/eventlog"
	"github.com/mind-engage/mindengage-academics/internal/prereq"
	"github.com/mind-engage/mindengage-academics/internal/rbac"
	"github.com/mind-engage/mindengage-academics/internal/records"
)

type Deps struct {
	Grades      *records.GradeService
	Transcripts *records.TranscriptService
	Eligibility *records.Eligibility
	Prereqs     *prereq.Checker

	Auth  *authmw.AuthService
	Users authmw.UserStore
	Admin authmw.Admin
	// AllowClaimFallback trusts the token's role for subjects without a
	// users row (offline mode).
	AllowClaimFallback bool
	Perms              *rbac.Checker

	Events *eventlog.Repo // optional
	Ready  func(ctx context.Context) error
	Logger *slog.Logger

	RequestTimeout time.Duration
}

// NewRouter builds the JSON API. Request logging and CORS are left to the caller.
func NewRouter(d Deps) nethttp.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	perms := d.Perms
	if perms == nil {
		perms = rbac.NewChecker(nil)
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				log.WarnContext(r.Context(), "readiness check failed", "error", err)
				writeJSON(w, nethttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"})
	})
	r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Users, d.Admin, log))

	r.Group(func(r chi.Router) {
		r.Use(authmw.JWTMiddleware(d.Auth))
		r.Use(authmw.AttachRoleFromStore(d.Users, d.Admin.Username, d.AllowClaimFallback))

		r.With(perms.Require("user:manage")).Post("/users", CreateUserHandler(d.Users, log))
		if d.Events != nil {
			r.With(perms.Require("events:view")).Get("/events", ListEventsHandler(d.Events, log))
		}

		r.With(perms.Require("course:manage")).Post("/courses", CreateCourseHandler(d.Grades, log))
		r.With(perms.Require("assessment:define")).Put("/courses/{courseID}/assessments", DefineAssessmentsHandler(d.Grades, log))
		r.With(perms.Require("course:view")).Get("/courses/{courseID}/assessments", ListAssessmentsHandler(d.Grades, log))

		r.With(perms.Require("enrollment:manage")).Post("/enrollments", EnrollHandler(d.Grades, log))
		r.With(perms.Require("score:enter")).Put("/enrollments/{enrollmentID}/scores", EnterScoresHandler(d.Grades, log))
		r.Get("/enrollments/{enrollmentID}/grade", GradeHandler(d.Grades, perms, log))
		r.With(perms.Require("grade:finalize")).Post("/enrollments/{enrollmentID}/finalize", FinalizeHandler(d.Grades, log))
		r.With(perms.Require("enrollment:manage")).Post("/enrollments/{enrollmentID}/withdraw", WithdrawHandler(d.Grades, log))

		r.With(perms.RequireOwnerOr("standing:view", studentInPath)).
			Get("/students/{studentID}/standing", StandingHandler(d.Transcripts, log))
		r.With(perms.RequireOwnerOr("enrollment:check", studentInPath)).
			Get("/students/{studentID}/eligibility/{courseCode}", EligibilityHandler(d.Eligibility, log))

		r.With(perms.Require("prereq:view")).Get("/prerequisites", ListAllPrerequisitesHandler(d.Prereqs, log))
		r.With(perms.Require("prereq:view")).Get("/courses/{courseCode}/prerequisites", ListPrerequisitesHandler(d.Prereqs, log))
		r.With(perms.Require("prereq:manage")).Post("/courses/{courseCode}/prerequisites", AddPrerequisiteHandler(d.Prereqs, log))
		r.With(perms.Require("prereq:manage")).Delete("/prerequisites/{edgeID}", RemovePrerequisiteHandler(d.Prereqs, log))
	})
	return r
}
