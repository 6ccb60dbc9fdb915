package http

import (
	"log/slog"
	"strconv"

	nethttp "net/http"

	authmw "github.com/mind-engage/mindengage-academics/internal/auth/middleware"
	"github.com/mind-engage/mindengage-academics/internal/eventlog"
)

// POST /users  { "username": "...", "password": "...", "role": "student" }
func CreateUserHandler(users authmw.UserStore, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		u, err := authmw.NewUser(req.Username, req.Password, req.Role)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		if u, err = users.Insert(r.Context(), u); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, u)
	}
}

// GET /events?after=<seq>&limit=<n>
func ListEventsHandler(events *eventlog.Repo, log *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := events.Since(r.Context(), after, limit)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"events": list})
	}
}
