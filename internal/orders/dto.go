package orders

import (
	"time"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemResponse is a single purchased line with its immutable price snapshot.
type ItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	GameID          uuid.UUID       `json:"game_id"`
	Title           string          `json:"title,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// Response is the order representation returned to clients.
type Response struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	OrderDate   time.Time         `json:"order_date"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []ItemResponse    `json:"items"`
}

// AdminOrderList wraps the paginated admin listing plus the next page cursor.
type AdminOrderList struct {
	Orders     []Response `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toResponse(order *models.Order) *Response {
	resp := &Response{
		ID:          order.ID,
		UserID:      order.UserID,
		OrderDate:   order.OrderDate,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       make([]ItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		line := ItemResponse{
			ID:              item.ID,
			GameID:          item.GameID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			Subtotal:        item.Subtotal(),
		}
		if item.Game != nil {
			line.Title = item.Game.Title
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

func toResponses(found []models.Order) []Response {
	out := make([]Response, 0, len(found))
	for i := range found {
		out = append(out, *toResponse(&found[i]))
	}
	return out
}
