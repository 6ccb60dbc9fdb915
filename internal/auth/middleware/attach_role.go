package auth

import (
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-academics/internal/rbac"
)

// AttachRoleFromStore replaces the token's role claim with the stored role so
// that role changes apply before tokens expire. The bootstrap admin has no
// row and keeps its claim. allowClaimFallback=true in offline mode.
func AttachRoleFromStore(users UserStore, admin string, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			role, err := users.RoleOf(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, ErrUserNotFound) && sub == admin && claimRole == "admin":
				next.ServeHTTP(w, r)
			case allowClaimFallback && claimRole != "":
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
