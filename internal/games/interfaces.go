package games

import (
	"context"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the game catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.Game, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	FindByIDAnyStatus(ctx context.Context, id uuid.UUID) (*models.Game, error)
	SearchActiveByTitle(ctx context.Context, query string) ([]models.Game, error)
	ListActiveByGenre(ctx context.Context, genre string) ([]models.Game, error)
	ListActiveByPlatform(ctx context.Context, platform string) ([]models.Game, error)
	Create(ctx context.Context, game *models.Game) (*models.Game, error)
	Update(ctx context.Context, game *models.Game) (*models.Game, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
