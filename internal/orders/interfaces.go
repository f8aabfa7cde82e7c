package orders

import (
	"context"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/dexxrat/gamestore-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error)
}

// GameCatalog is the read surface checkout needs from the games domain.
// Lookups resolve any status so the availability check is explicit here.
type GameCatalog interface {
	FindByIDAnyStatus(ctx context.Context, id uuid.UUID) (*models.Game, error)
}
