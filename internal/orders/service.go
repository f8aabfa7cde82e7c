package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dexxrat/gamestore-backend/internal/cart"
	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/dexxrat/gamestore-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines checkout and order-history operations.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID) (*Response, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Response, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Response, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*Response, error)
	ListAllOrders(ctx context.Context, params pagination.Params) (*AdminOrderList, error)
}

type service struct {
	repo    Repository
	carts   cart.Repository
	catalog GameCatalog
	tx      txRunner
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, carts cart.Repository, catalog GameCatalog, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("game catalog required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, carts: carts, catalog: catalog, tx: tx}, nil
}

// Checkout converts the caller's cart into an immutable order. The order
// insert and the cart clear share one transaction; a failure anywhere leaves
// both the cart and the order table untouched.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var out *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		userCart, err := carts.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		items := make([]models.OrderItem, 0, len(userCart.Items))
		total := decimal.Zero
		for _, line := range userCart.Items {
			game, err := s.catalog.FindByIDAnyStatus(ctx, line.GameID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeUnavailable, "a game in the cart no longer exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load game")
			}
			if !game.IsActive {
				return pkgerrors.New(pkgerrors.CodeUnavailable,
					fmt.Sprintf("game %q is no longer available", game.Title))
			}

			item := models.OrderItem{
				GameID:          game.ID,
				Quantity:        line.Quantity,
				PriceAtPurchase: line.Price,
			}
			items = append(items, item)
			total = total.Add(item.Subtotal())
		}

		order := &models.Order{
			UserID:      userID,
			OrderDate:   time.Now().UTC(),
			Status:      enums.OrderStatusPending,
			TotalAmount: total,
			Items:       items,
		}
		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := carts.DeleteItemsByCart(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if err := carts.UpdateTotal(ctx, userCart.ID, decimal.Zero); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cart total")
		}

		out = toResponse(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	found, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toResponses(found), nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return toResponse(order), nil
}

// UpdateStatus parses the raw input case-insensitively and overwrites the
// stored status. There is no transition graph; any valid status is accepted.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*Response, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	status, err := enums.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid order status %q", rawStatus))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return toResponse(order), nil
}

func (s *service) ListAllOrders(ctx context.Context, params pagination.Params) (*AdminOrderList, error) {
	list, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list all orders")
	}
	return list, nil
}
