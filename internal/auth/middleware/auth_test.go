package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-academics/internal/db"
	"github.com/mind-engage/mindengage-academics/internal/rbac"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

func TestJWTRoundTrip(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, err := a.IssueJWT("u-1", "teacher")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.Subject)
	assert.Equal(t, "teacher", c.Role)

	_, err = NewAuthService("other", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	a := NewAuthService("secret", time.Minute)
	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := a.IssueJWT("u-1", "student")
	require.NoError(t, err)

	_, err = NewAuthService("secret", time.Minute).Parse(tok)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = rbac.SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	tok, err := a.IssueJWT("stu-1", "student")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "stu-1", gotSub)
	assert.Equal(t, "student", gotRole)
}

func login(t *testing.T, h http.Handler, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": user, "password": pass})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	return rr
}

func TestLoginHandler(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:auth_login?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	users := NewSQLUserStore(dbh)

	u, err := NewUser("ms.frizzle", "magic-school-bus", "teacher")
	require.NoError(t, err)
	_, err = users.Insert(ctx, u)
	require.NoError(t, err)
	_, err = users.Insert(ctx, u)
	assert.True(t, shared.IsConflict(err))

	adminHash, err := bcrypt.GenerateFromPassword([]byte("root-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	a := NewAuthService("secret", time.Hour)
	h := LoginHandler(a, users, Admin{Username: "admin", PasswordHash: string(adminHash)}, nil)

	rr := login(t, h, "admin", "root-pass")
	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	c, err := a.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Role)

	rr = login(t, h, "ms.frizzle", "magic-school-bus")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	c, err = a.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, u.ID, c.Subject)
	assert.Equal(t, "teacher", c.Role)

	assert.Equal(t, http.StatusUnauthorized, login(t, h, "admin", "nope").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, "ms.frizzle", "wrong-password").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, "nobody", "whatever1").Code)
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("", "longenough", "student")
	assert.True(t, shared.IsValidation(err))
	_, err = NewUser("bob", "short", "student")
	assert.True(t, shared.IsValidation(err))
	_, err = NewUser("bob", "longenough", "janitor")
	assert.True(t, shared.IsValidation(err))
}

func TestAttachRoleFromStore(t *testing.T) {
	ctx := context.Background()
	users := NewInMemoryUserStore()
	u, err := NewUser("stu", "password123", "student")
	require.NoError(t, err)
	_, err = users.Insert(ctx, u)
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = rbac.RoleFromContext(r.Context()) })

	run := func(fallback bool, sub, claim string) int {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(rbac.WithRole(rbac.WithSubject(req.Context(), sub), claim))
		rr := httptest.NewRecorder()
		AttachRoleFromStore(users, "admin", fallback)(next).ServeHTTP(rr, req)
		return rr.Code
	}

	// stored role wins over a stale claim
	assert.Equal(t, http.StatusOK, run(false, u.ID, "teacher"))
	assert.Equal(t, "student", seen)

	assert.Equal(t, http.StatusOK, run(false, "admin", "admin"))
	assert.Equal(t, "admin", seen)

	assert.Equal(t, http.StatusForbidden, run(false, "ghost", "teacher"))
	assert.Equal(t, http.StatusOK, run(true, "ghost", "teacher"))
	assert.Equal(t, "teacher", seen)
}
