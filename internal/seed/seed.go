package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/dexxrat/gamestore-backend/pkg/config"
	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/dexxrat/gamestore-backend/pkg/logger"
	"github.com/dexxrat/gamestore-backend/pkg/security"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Seeder repairs baseline data on startup: the role catalog, the default
// admin account, and cart rows for accounts that lost theirs.
type Seeder struct {
	db          *gorm.DB
	log         *logger.Logger
	seedCfg     config.SeedConfig
	passwordCfg config.PasswordConfig
}

// New builds a seeder bound to the provided DB handle.
func New(db *gorm.DB, log *logger.Logger, seedCfg config.SeedConfig, passwordCfg config.PasswordConfig) (*Seeder, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{db: db, log: log, seedCfg: seedCfg, passwordCfg: passwordCfg}, nil
}

// Run is idempotent. Safe to call on every boot.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.ensureRoles(ctx); err != nil {
		return err
	}
	if err := s.ensureAdmin(ctx); err != nil {
		return err
	}
	return s.repairCarts(ctx)
}

func (s *Seeder) ensureRoles(ctx context.Context) error {
	for _, name := range []enums.RoleName{enums.RoleUser, enums.RoleAdmin} {
		role := models.Role{Name: name}
		err := s.db.WithContext(ctx).
			Where("name = ?", name).
			FirstOrCreate(&role).Error
		if err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}
	return nil
}

func (s *Seeder) ensureAdmin(ctx context.Context) error {
	if s.seedCfg.AdminPassword == "" {
		s.log.Warn(ctx, "seed: admin password not set, skipping admin account")
		return nil
	}

	var existing models.User
	err := s.db.WithContext(ctx).
		Where("username = ?", s.seedCfg.AdminUsername).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	hash, err := security.HashPassword(s.seedCfg.AdminPassword, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var adminRole models.Role
	err = s.db.WithContext(ctx).
		Where("name = ?", enums.RoleAdmin).
		First(&adminRole).Error
	if err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	admin := &models.User{
		Username:     s.seedCfg.AdminUsername,
		Email:        s.seedCfg.AdminEmail,
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []models.Role{adminRole},
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(&models.Cart{UserID: admin.ID, TotalPrice: decimal.Zero}).Error; err != nil {
		return fmt.Errorf("create admin cart: %w", err)
	}

	s.log.Info(s.log.WithField(ctx, "username", s.seedCfg.AdminUsername), "seed: created admin account")
	return nil
}

func (s *Seeder) repairCarts(ctx context.Context) error {
	var orphans []models.User
	err := s.db.WithContext(ctx).
		Where("id NOT IN (?)", s.db.Model(&models.Cart{}).Select("user_id")).
		Find(&orphans).Error
	if err != nil {
		return fmt.Errorf("find users without carts: %w", err)
	}

	var errs error
	repaired := 0
	for i := range orphans {
		cart := &models.Cart{UserID: orphans[i].ID, TotalPrice: decimal.Zero}
		if err := s.db.WithContext(ctx).Create(cart).Error; err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair cart for user %s: %w", orphans[i].ID, err))
			continue
		}
		repaired++
	}
	if repaired > 0 {
		s.log.Info(s.log.WithField(ctx, "count", repaired), "seed: repaired missing carts")
	}
	return errs
}
