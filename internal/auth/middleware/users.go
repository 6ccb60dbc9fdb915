package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-academics/internal/db"
	"github.com/mind-engage/mindengage-academics/internal/rbac"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

var ErrUserNotFound = shared.NewDomainError("auth", "Lookup", shared.ErrNotFound, "user not found")

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

type UserStore interface {
	ByUsername(ctx context.Context, username string) (User, error)
	// RoleOf resolves a token subject, which is a user id or a username.
	RoleOf(ctx context.Context, subject string) (string, error)
	Insert(ctx context.Context, u User) (User, error)
}

// NewUser validates input and hashes the password.
func NewUser(username, password, role string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, shared.Validation("auth", "NewUser", "username is empty")
	}
	if len(password) < 8 {
		return User{}, shared.Validation("auth", "NewUser", "password must be at least 8 characters")
	}
	if _, ok := rbac.RolePermissions[role]; !ok {
		return User{}, shared.Validation("auth", "NewUser", "unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return User{ID: uuid.NewString(), Username: username, Role: role, PasswordHash: string(hash)}, nil
}

type SQLUserStore struct{ db *sql.DB }

func NewSQLUserStore(dbh *sql.DB) *SQLUserStore { return &SQLUserStore{db: dbh} }

func (s *SQLUserStore) ByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, role, password_hash FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (s *SQLUserStore) RoleOf(ctx context.Context, subject string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id=$1 OR username=$1`, subject).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return role, err
}

func (s *SQLUserStore) Insert(ctx context.Context, u User) (User, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, role, password_hash) VALUES ($1,$2,$3,$4)`,
		u.ID, u.Username, u.Role, u.PasswordHash)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, shared.WrapError("auth", "Insert", shared.ErrConflict, "username taken", err)
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

type memoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User // by username
}

func NewInMemoryUserStore() UserStore {
	return &memoryUserStore{users: map[string]User{}}
}

func (m *memoryUserStore) ByUsername(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUserStore) RoleOf(_ context.Context, subject string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == subject || u.Username == subject {
			return u.Role, nil
		}
	}
	return "", ErrUserNotFound
}

func (m *memoryUserStore) Insert(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return User{}, shared.NewDomainError("auth", "Insert", shared.ErrConflict, "username taken")
	}
	m.users[u.Username] = u
	return u, nil
}
