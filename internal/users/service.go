package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dexxrat/gamestore-backend/pkg/config"
	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/dexxrat/gamestore-backend/pkg/pagination"
	"github.com/dexxrat/gamestore-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines user administration operations.
type Service interface {
	ListUsers(ctx context.Context, params pagination.Params) (*List, error)
	GetUser(ctx context.Context, id uuid.UUID) (*Response, error)
	GetUserByUsername(ctx context.Context, username string) (*Response, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateInput) (*Response, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type service struct {
	repo        Repository
	carts       CartProvisioner
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewService builds a users service with the required dependencies.
func NewService(repo Repository, carts CartProvisioner, tx txRunner, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart provisioner required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, carts: carts, tx: tx, passwordCfg: passwordCfg}, nil
}

func (s *service) ListUsers(ctx context.Context, params pagination.Params) (*List, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return list, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*Response, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return ToResponse(user), nil
}

func (s *service) GetUserByUsername(ctx context.Context, username string) (*Response, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return ToResponse(user), nil
}

// UpdateUser overwrites the profile inside one transaction. Username/email
// uniqueness is pre-checked against other accounts; a missing cart row is
// provisioned on the way out.
func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateInput) (*Response, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	var out *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}

		taken, err := repo.ExistsByUsername(ctx, username, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		taken, err = repo.ExistsByEmail(ctx, email, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already taken")
		}

		user.Username = username
		user.Email = email
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		if input.Password != "" {
			hash, err := security.HashPassword(input.Password, s.passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			user.PasswordHash = hash
		}

		if input.Roles != nil {
			roles := make([]models.Role, 0, len(input.Roles))
			for _, raw := range input.Roles {
				name, err := enums.ParseRoleName(raw)
				if err != nil {
					return pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("invalid role %q", raw))
				}
				role, err := repo.FindRoleByName(ctx, name)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeValidation,
							fmt.Sprintf("role %q not provisioned", name))
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
				}
				roles = append(roles, *role)
			}
			if err := repo.ReplaceRoles(ctx, user, roles); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace roles")
			}
			user.Roles = roles
		}

		if _, err := repo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}

		if err := s.ensureCart(ctx, user.ID); err != nil {
			return err
		}

		out = ToResponse(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
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

func (s *service) ensureCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.carts.FindByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, err := s.carts.Create(ctx, &models.Cart{UserID: userID, TotalPrice: decimal.Zero}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision cart")
	}
	return nil
}
