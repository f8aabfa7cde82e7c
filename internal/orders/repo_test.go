package orders

import (
	"context"
	"testing"
	"time"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/dexxrat/gamestore-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	games := `
CREATE TABLE IF NOT EXISTS games (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  developer TEXT,
  publisher TEXT,
  release_date DATETIME,
  platform TEXT,
  genres TEXT NOT NULL DEFAULT '{}',
  price TEXT NOT NULL,
  discount_price TEXT,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  total_amount TEXT NOT NULL,
  created_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  game_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  price_at_purchase TEXT NOT NULL
);`
	require.NoError(t, db.Exec(games).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) *models.Order {
	t.Helper()

	game := &models.Game{
		ID:       uuid.New(),
		Title:    "Seeded Game",
		Genres:   []string{},
		Price:    dec("10.00"),
		IsActive: true,
	}
	require.NoError(t, db.Create(game).Error)

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderDate:   createdAt,
		Status:      enums.OrderStatusPending,
		TotalAmount: dec("20.00"),
		Items: []models.OrderItem{
			{ID: uuid.New(), GameID: game.ID, Quantity: 2, PriceAtPurchase: dec("10.00")},
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), time.Now().UTC())

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, found.TotalAmount.Equal(dec("20.00")))
	require.NotNil(t, found.Items[0].Game)
	assert.Equal(t, "Seeded Game", found.Items[0].Game.Title)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	older := seedOrder(t, db, userID, time.Now().UTC().Add(-time.Hour))
	newer := seedOrder(t, db, userID, time.Now().UTC())
	seedOrder(t, db, uuid.New(), time.Now().UTC())

	found, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, newer.ID, found[0].ID)
	assert.Equal(t, older.ID, found[1].ID)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), time.Now().UTC())

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)

	err = repo.UpdateStatus(ctx, uuid.New(), enums.OrderStatusPaid)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListAllPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedOrder(t, db, uuid.New(), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListAll(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListAll(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextCursor)

	// no overlap across pages
	seen := map[uuid.UUID]bool{}
	for _, o := range first.Orders {
		seen[o.ID] = true
	}
	for _, o := range second.Orders {
		assert.False(t, seen[o.ID])
	}
}
