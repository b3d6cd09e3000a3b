package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"roti-erp/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUnknownUser        = errors.New("user not found")
)

// Authenticator verifies credentials and resolves token subjects to users.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Lookup(ctx context.Context, userID uint) (*models.User, error)
}

// PasswordAuthenticator checks bcrypt hashes stored in the users table.
type PasswordAuthenticator struct {
	db *gorm.DB
}

func NewPasswordAuthenticator(db *gorm.DB) *PasswordAuthenticator {
	return &PasswordAuthenticator{db: db}
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := a.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return &user, nil
}

func (a *PasswordAuthenticator) Lookup(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := a.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}

// FixtureUser is a development account held in memory.
type FixtureUser struct {
	User     models.User
	Password string
}

// FixtureAuthenticator serves a fixed set of in-memory accounts. It exists for
// local development and tests and is rejected in production by config.
type FixtureAuthenticator struct {
	mu    sync.RWMutex
	users map[uint]FixtureUser
}

func NewFixtureAuthenticator(users ...FixtureUser) *FixtureAuthenticator {
	a := &FixtureAuthenticator{users: make(map[uint]FixtureUser, len(users))}
	for _, u := range users {
		u.User.Email = NormalizeEmail(u.User.Email)
		a.users[u.User.ID] = u
	}
	return a
}

// DefaultFixtures gives one active account per role, password "password".
func DefaultFixtures() []FixtureUser {
	var out []FixtureUser
	for i, r := range Roles() {
		name := strings.ToLower(string(r))
		out = append(out, FixtureUser{
			User: models.User{
				Base:     models.Base{ID: uint(i + 1)},
				Name:     string(r),
				Email:    name + "@fixture.local",
				Role:     string(r),
				IsActive: true,
			},
			Password: "password",
		})
	}
	return out
}

func (a *FixtureAuthenticator) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	email = NormalizeEmail(email)
	for _, u := range a.users {
		if u.User.Email != email {
			continue
		}
		if u.Password != password {
			return nil, ErrInvalidCredentials
		}
		if !u.User.IsActive {
			return nil, ErrInactiveAccount
		}
		user := u.User
		return &user, nil
	}
	return nil, ErrInvalidCredentials
}

func (a *FixtureAuthenticator) Lookup(_ context.Context, userID uint) (*models.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[userID]
	if !ok {
		return nil, ErrUnknownUser
	}
	user := u.User
	return &user, nil
}

// NormalizeEmail lowercases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
