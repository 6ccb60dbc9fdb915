package rbac

import (
	"net/http"
)

// Require enforces a single permission.
func (c *Checker) Require(perm string) func(http.Handler) http.Handler {
	return c.guard(func(r *http.Request, role string) bool { return c.Has(role, perm) })
}

// RequireOwnerOr lets through roles holding perm, and roles holding
// perm+"-own" when the subject is the owner named by ownerOf.
func (c *Checker) RequireOwnerOr(perm string, ownerOf func(r *http.Request) string) func(http.Handler) http.Handler {
	return c.guard(func(r *http.Request, role string) bool {
		switch c.Scope(role, perm) {
		case ScopeAll:
			return true
		case ScopeOwn:
			sub := SubjectFromContext(r.Context())
			return sub != "" && sub == ownerOf(r)
		}
		return false
	})
}

func (c *Checker) guard(allow func(r *http.Request, role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allow(r, role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
