package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem carries the immutable purchase snapshot for one game.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	GameID          uuid.UUID       `gorm:"column:game_id;type:uuid;not null"`
	Game            *Game           `gorm:"foreignKey:GameID"`
	Quantity        int             `gorm:"column:quantity;not null;default:1"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(10,2);not null"`
}

// Subtotal returns the purchase price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	if i.Quantity <= 0 {
		return decimal.Zero
	}
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
