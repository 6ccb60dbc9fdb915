package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Admin is the bootstrap account configured through the environment.
type Admin struct {
	Username     string
	PasswordHash string // bcrypt
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, users UserStore, admin Admin, log *slog.Logger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		var sub, role string
		if admin.Username != "" && subtle.ConstantTimeCompare([]byte(req.Username), []byte(admin.Username)) == 1 {
			if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			sub, role = admin.Username, "admin"
		} else {
			u, err := users.ByUsername(r.Context(), req.Username)
			if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
				if err != nil && !errors.Is(err, ErrUserNotFound) {
					log.ErrorContext(r.Context(), "login lookup failed", "error", err)
				}
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			sub, role = u.ID, u.Role
		}

		tok, err := a.IssueJWT(sub, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "token_type": "Bearer", "role": role})
	}
}
