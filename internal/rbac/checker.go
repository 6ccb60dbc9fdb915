package rbac

import (
	"context"
	"strings"
)

// Scope is how far a permission reaches for a role.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeOwn        // only records the subject owns ("<perm>-own")
	ScopeAll
)

// grants is one role's permission list, split into exact names and
// "prefix*" wildcards.
type grants struct {
	exact    map[string]struct{}
	prefixes []string
}

func (g grants) allows(perm string) bool {
	if _, ok := g.exact[perm]; ok {
		return true
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

// Checker evaluates a role policy compiled once at construction.
type Checker struct {
	roles map[string]grants
}

// NewChecker compiles rp, or RolePermissions when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{roles: make(map[string]grants, len(rp))}
	for role, perms := range rp {
		g := grants{exact: map[string]struct{}{}}
		for _, p := range perms {
			if prefix, ok := strings.CutSuffix(p, "*"); ok {
				g.prefixes = append(g.prefixes, prefix)
				continue
			}
			g.exact[p] = struct{}{}
		}
		c.roles[role] = g
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	g, ok := c.roles[role]
	return ok && g.allows(perm)
}

// Scope reports whether role holds perm outright, only for its own records
// via perm+"-own", or not at all.
func (c *Checker) Scope(role, perm string) Scope {
	switch {
	case c.Has(role, perm):
		return ScopeAll
	case c.Has(role, perm+"-own"):
		return ScopeOwn
	}
	return ScopeNone
}

// ---- subject and role in context ----

type ctxKey int

const (
	ctxKeyRole ctxKey = iota
	ctxKeySubject
)

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySubject).(string); ok {
		return v
	}
	return ""
}
