package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	nethttp "net/http"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

const maxBody = 1 << 20

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return nethttp.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return nethttp.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return nethttp.StatusConflict
	default:
		return nethttp.StatusInternalServerError
	}
}

func writeError(w nethttp.ResponseWriter, r *nethttp.Request, log *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == nethttp.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *nethttp.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return shared.WrapError("http", "decode", shared.ErrValidation, "bad json", err)
	}
	return nil
}
