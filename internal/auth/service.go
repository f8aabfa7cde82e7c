package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dexxrat/gamestore-backend/internal/users"
	pkgauth "github.com/dexxrat/gamestore-backend/pkg/auth"
	"github.com/dexxrat/gamestore-backend/pkg/auth/session"
	"github.com/dexxrat/gamestore-backend/pkg/config"
	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/dexxrat/gamestore-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, creds Credentials) (*Session, error)
	Refresh(ctx context.Context, input RefreshInput) (*Session, error)
	Logout(ctx context.Context, accessID string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type service struct {
	repo        users.Repository
	carts       CartProvisioner
	sessions    SessionManager
	tx          txRunner
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// NewService builds an auth service with the required dependencies.
func NewService(
	repo users.Repository,
	carts CartProvisioner,
	sessions SessionManager,
	tx txRunner,
	jwtCfg config.JWTConfig,
	passwordCfg config.PasswordConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart provisioner required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:        repo,
		carts:       carts,
		sessions:    sessions,
		tx:          tx,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
	}, nil
}

// Register creates the account, assigns the USER role, and provisions the
// cart inside one transaction, then opens a session.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if len(username) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters")
	}
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		taken, err := repo.ExistsByUsername(ctx, username, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		taken, err = repo.ExistsByEmail(ctx, email, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already taken")
		}

		role, err := repo.FindRoleByName(ctx, enums.RoleUser)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user role")
		}

		user := &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			Roles:        []models.Role{*role},
		}
		if user, err = repo.Create(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		if _, err := s.carts.Create(ctx, &models.Cart{UserID: user.ID, TotalPrice: decimal.Zero}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision cart")
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, created)
}

// Login verifies credentials and opens a session. Unknown accounts, bad
// passwords, and disabled accounts all surface the same unauthorized error.
func (s *service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(creds.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.openSession(ctx, user)
}

// Refresh rotates the refresh session keyed by the old token's jti and mints
// a fresh access token. The old access token may be expired but must verify.
func (s *service) Refresh(ctx context.Context, input RefreshInput) (*Session, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, input.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     primaryRole(user),
		JTI:      newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return s.sessionResponse(token, newRefresh, user), nil
}

// Logout revokes the refresh session tied to the caller's access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) UsernameExists(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	exists, err := s.repo.ExistsByUsername(ctx, username, uuid.Nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
	}
	return exists, nil
}

func (s *service) EmailExists(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	exists, err := s.repo.ExistsByEmail(ctx, email, uuid.Nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	return exists, nil
}

func (s *service) openSession(ctx context.Context, user *models.User) (*Session, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     primaryRole(user),
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return s.sessionResponse(token, refresh, user), nil
}

func (s *service) sessionResponse(token, refresh string, user *models.User) *Session {
	return &Session{
		AccessToken:  token,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtCfg.ExpirationMinutes) * 60,
		User:         *users.ToResponse(user),
	}
}

// primaryRole picks the highest privilege role on the account.
func primaryRole(user *models.User) enums.RoleName {
	for _, role := range user.Roles {
		if role.Name == enums.RoleAdmin {
			return enums.RoleAdmin
		}
	}
	return enums.RoleUser
}
