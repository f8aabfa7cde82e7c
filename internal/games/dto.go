package games

import (
	"time"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateGameInput carries the fields accepted when creating a catalog entry.
type CreateGameInput struct {
	Title         string
	Description   *string
	Developer     *string
	Publisher     *string
	ReleaseDate   *time.Time
	Platform      *string
	Genres        []string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	ImageURL      *string
}

// UpdateGameInput carries the full-replacement update payload. Genres are only
// replaced when non-nil so partial clients don't wipe the list.
type UpdateGameInput struct {
	Title         string
	Description   *string
	Developer     *string
	Publisher     *string
	ReleaseDate   *time.Time
	Platform      *string
	Genres        []string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	ImageURL      *string
	IsActive      *bool
}

// GameResponse is the catalog representation returned to clients.
type GameResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Title              string           `json:"title"`
	Description        *string          `json:"description,omitempty"`
	Developer          *string          `json:"developer,omitempty"`
	Publisher          *string          `json:"publisher,omitempty"`
	ReleaseDate        *time.Time       `json:"release_date,omitempty"`
	Platform           *string          `json:"platform,omitempty"`
	Genres             []string         `json:"genres"`
	Price              decimal.Decimal  `json:"price"`
	DiscountPrice      *decimal.Decimal `json:"discount_price,omitempty"`
	FinalPrice         decimal.Decimal  `json:"final_price"`
	HasDiscount        bool             `json:"has_discount"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage"`
	ImageURL           *string          `json:"image_url,omitempty"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
}

// ToGameResponse maps a model onto its API representation including the
// derived pricing fields.
func ToGameResponse(game models.Game) GameResponse {
	resp := GameResponse{
		ID:                 game.ID,
		Title:              game.Title,
		Description:        game.Description,
		Developer:          game.Developer,
		Publisher:          game.Publisher,
		ReleaseDate:        game.ReleaseDate,
		Platform:           game.Platform,
		Genres:             append([]string{}, game.Genres...),
		Price:              game.Price,
		FinalPrice:         game.FinalPrice(),
		HasDiscount:        game.HasDiscount(),
		DiscountPercentage: game.DiscountPercentage(),
		ImageURL:           game.ImageURL,
		IsActive:           game.IsActive,
		CreatedAt:          game.CreatedAt,
	}
	if game.DiscountPrice.Valid {
		price := game.DiscountPrice.Decimal
		resp.DiscountPrice = &price
	}
	return resp
}

func toGameResponses(games []models.Game) []GameResponse {
	out := make([]GameResponse, 0, len(games))
	for _, game := range games {
		out = append(out, ToGameResponse(game))
	}
	return out
}
