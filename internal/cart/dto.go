package cart

import (
	"time"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemInput carries the payload for adding a game to the cart.
type AddItemInput struct {
	GameID   uuid.UUID
	Quantity int
}

// ItemResponse is a single cart line as returned to clients. Price is the
// snapshot captured when the line was created.
type ItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	GameID   uuid.UUID       `json:"game_id"`
	Title    string          `json:"title,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Response is the cart representation returned to clients.
type Response struct {
	ID         uuid.UUID       `json:"id"`
	Items      []ItemResponse  `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toResponse(cart *models.Cart) *Response {
	resp := &Response{
		ID:         cart.ID,
		Items:      make([]ItemResponse, 0, len(cart.Items)),
		TotalPrice: cart.TotalPrice,
		UpdatedAt:  cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		line := ItemResponse{
			ID:       item.ID,
			GameID:   item.GameID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal(),
		}
		if item.Game != nil {
			line.Title = item.Game.Title
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
