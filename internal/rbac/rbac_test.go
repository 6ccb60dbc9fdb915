package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "course:view", true},
		{"student", "score:enter", false},
		{"student", "standing:view", false},
		{"student", "standing:view-own", true},
		{"teacher", "score:enter", true},
		{"teacher", "grade:finalize", true},
		{"teacher", "prereq:manage", false},
		{"registrar", "prereq:manage", true},
		{"registrar", "enrollment:manage", true},
		{"registrar", "score:enter", false},
		{"admin", "anything:at-all", true},
		{"ghost", "course:view", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Has(tc.role, tc.perm), "%s %s", tc.role, tc.perm)
	}
}

func TestChecker_Scope(t *testing.T) {
	c := NewChecker(nil)
	assert.Equal(t, ScopeOwn, c.Scope("student", "standing:view"))
	assert.Equal(t, ScopeOwn, c.Scope("student", "grade:view"))
	assert.Equal(t, ScopeAll, c.Scope("teacher", "grade:view"))
	assert.Equal(t, ScopeAll, c.Scope("admin", "standing:view"))
	assert.Equal(t, ScopeNone, c.Scope("student", "score:enter"))
	assert.Equal(t, ScopeNone, c.Scope("ghost", "standing:view"))
}

func TestChecker_CustomPolicy(t *testing.T) {
	c := NewChecker(map[string][]string{
		"auditor": {"grade:view", "event*"},
	})
	assert.True(t, c.Has("auditor", "grade:view"))
	assert.False(t, c.Has("auditor", "grade:view-own"))
	assert.False(t, c.Has("auditor", "grade:finalize"))
	assert.True(t, c.Has("auditor", "events:view"))
	assert.False(t, c.Has("student", "course:view"))
}

func TestContextValues(t *testing.T) {
	ctx := WithSubject(WithRole(context.Background(), "teacher"), "u-1")
	assert.Equal(t, "teacher", RoleFromContext(ctx))
	assert.Equal(t, "u-1", SubjectFromContext(ctx))
	assert.Empty(t, RoleFromContext(context.Background()))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewChecker(nil).Require("score:enter")(ok)

	for role, want := range map[string]int{"teacher": http.StatusNoContent, "student": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, role)
	}
}

func TestRequireOwnerOr(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewChecker(nil).RequireOwnerOr("standing:view", func(*http.Request) string { return "stu-1" })(ok)

	run := func(role, sub string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithSubject(WithRole(req.Context(), role), sub))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusNoContent, run("student", "stu-1"))
	assert.Equal(t, http.StatusForbidden, run("student", "stu-2"))
	assert.Equal(t, http.StatusForbidden, run("student", ""))
	assert.Equal(t, http.StatusNoContent, run("teacher", "t-1"))
	assert.Equal(t, http.StatusForbidden, run("ghost", "stu-1"))
}
