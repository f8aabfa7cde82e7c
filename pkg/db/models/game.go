package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Game represents a catalog listing. Rows are never deleted; retired games
// are flipped inactive so historical order items keep resolving.
type Game struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string              `gorm:"column:title;not null"`
	Description   *string             `gorm:"column:description"`
	Developer     *string             `gorm:"column:developer"`
	Publisher     *string             `gorm:"column:publisher"`
	ReleaseDate   *time.Time          `gorm:"column:release_date;type:date"`
	Platform      *string             `gorm:"column:platform"`
	Genres        pq.StringArray      `gorm:"column:genres;type:text[];not null;default:ARRAY[]::text[]"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountPrice decimal.NullDecimal `gorm:"column:discount_price;type:numeric(10,2)"`
	ImageURL      *string             `gorm:"column:image_url"`
	IsActive      bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// FinalPrice returns the discount price when one is set, else the list price.
func (g Game) FinalPrice() decimal.Decimal {
	if g.DiscountPrice.Valid {
		return g.DiscountPrice.Decimal
	}
	return g.Price
}

// HasDiscount reports whether a discount price below the list price is set.
func (g Game) HasDiscount() bool {
	return g.DiscountPrice.Valid && g.DiscountPrice.Decimal.LessThan(g.Price)
}

// DiscountPercentage returns the percentage saved against the list price,
// zero when no discount applies.
func (g Game) DiscountPercentage() decimal.Decimal {
	if !g.HasDiscount() || g.Price.IsZero() {
		return decimal.Zero
	}
	amount := g.Price.Sub(g.DiscountPrice.Decimal)
	return amount.DivRound(g.Price, 2).Mul(decimal.NewFromInt(100))
}
