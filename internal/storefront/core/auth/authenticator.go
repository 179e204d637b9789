package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

const invalidCredentials = "Invalid credentials"

// Seeder is the write side of a directory used at startup.
type Seeder interface {
	Add(u *entity.AdminUser, passwordHash string)
}

// SeedAccounts registers the five back-office accounts, all sharing the
// demo password hashed with cost.
func SeedAccounts(dir Seeder, policy Policy, password string, cost int, now time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	seed := []struct {
		id, email, name string
		role            entity.Role
	}{
		{"admin-001", "admin@tradehub.com", "Super Admin", entity.RoleSuperAdmin},
		{"admin-002", "product@tradehub.com", "Product Manager", entity.RoleProductManager},
		{"admin-003", "orders@tradehub.com", "Order Manager", entity.RoleOrderManager},
		{"admin-004", "marketing@tradehub.com", "Marketing Lead", entity.RoleMarketing},
		{"admin-005", "support@tradehub.com", "Support Agent", entity.RoleSupport},
	}
	for _, s := range seed {
		dir.Add(&entity.AdminUser{
			ID:          s.id,
			Email:       s.email,
			FullName:    s.name,
			Role:        s.role,
			Permissions: policy.Permissions(s.role),
			Status:      entity.UserActive,
			CreatedAt:   now,
		}, string(hash))
	}
	return nil
}

// Session is the result of a successful login.
type Session struct {
	User  *entity.AdminUser
	Token string
}

type Authenticator struct {
	directory ports.AdminDirectory
	tokens    *TokenIssuer
	now       func() time.Time
}

func NewAuthenticator(directory ports.AdminDirectory, tokens *TokenIssuer) *Authenticator {
	return &Authenticator{directory: directory, tokens: tokens, now: time.Now}
}

// Authenticate checks the credentials and issues a session token. Every
// rejection carries the same message so callers cannot enumerate accounts.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required", nil)
	}

	user, hash, err := a.directory.FindByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		slog.WarnContext(ctx, "admin login rejected", "reason", "unknown email")
		return nil, apperr.Authentication(invalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	if user.Status != entity.UserActive {
		slog.WarnContext(ctx, "admin login rejected", "reason", "inactive", "user_id", user.ID)
		return nil, apperr.Authentication(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "admin login rejected", "reason", "password mismatch", "user_id", user.ID)
		return nil, apperr.Authentication(invalidCredentials)
	}

	loginAt := a.now()
	user, err = a.directory.Update(ctx, user.ID, func(u *entity.AdminUser) error {
		u.LastLogin = &loginAt
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("", err)
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("", err)
	}

	slog.InfoContext(ctx, "admin logged in", "user_id", user.ID, "role", user.Role)
	return &Session{User: user, Token: token}, nil
}

// Verify resolves a bearer token to its claims.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	return a.tokens.Verify(token)
}

// CurrentUser loads the account behind verified claims.
func (a *Authenticator) CurrentUser(ctx context.Context, claims *Claims) (*entity.AdminUser, error) {
	user, err := a.directory.FindByID(ctx, claims.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	return user, nil
}
