package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxItemQuantity bounds any single cart line.
const MaxItemQuantity = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines cart operations. All callers identify the cart owner via
// the authenticated user id, never via request payloads.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Response, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*Response, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Response, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*Response, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
	ItemCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo    Repository
	catalog GameCatalog
	tx      txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalog GameCatalog, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("game catalog required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.findOrCreateCart(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return toResponse(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.GameID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game id required")
	}
	if input.Quantity <= 0 || input.Quantity > MaxItemQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", MaxItemQuantity))
	}

	var out *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.findOrCreateCart(ctx, repo, userID)
		if err != nil {
			return err
		}

		game, err := s.catalog.FindActiveByID(ctx, input.GameID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "game not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load game")
		}

		existing, err := repo.FindItemByCartAndGame(ctx, cart.ID, game.ID)
		switch {
		case err == nil:
			merged := existing.Quantity + input.Quantity
			if merged > MaxItemQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("quantity for a single game cannot exceed %d", MaxItemQuantity))
			}
			if err := repo.UpdateItemQuantity(ctx, existing.ID, merged); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{
				CartID:   cart.ID,
				GameID:   game.ID,
				Quantity: input.Quantity,
				Price:    game.FinalPrice(),
			}
			if _, err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		cart, err = s.recalculate(ctx, repo, cart.ID, userID)
		if err != nil {
			return err
		}
		out = toResponse(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if quantity > MaxItemQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must not exceed %d", MaxItemQuantity))
	}

	var out *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.ownedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}

		// zero or negative quantity removes the line
		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
			}
		} else if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}

		cart, err = s.recalculate(ctx, repo, cart.ID, userID)
		if err != nil {
			return err
		}
		out = toResponse(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*Response, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	var out *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.ownedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		cart, err = s.recalculate(ctx, repo, cart.ID, userID)
		if err != nil {
			return err
		}
		out = toResponse(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.findOrCreateCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItemsByCart(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if err := repo.UpdateTotal(ctx, cart.ID, decimal.Zero); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cart total")
		}
		return nil
	})
}

func (s *service) ItemCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	count, err := s.repo.SumQuantities(ctx, cart.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cart items")
	}
	return count, nil
}

func (s *service) findOrCreateCart(ctx context.Context, repo Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := repo.Create(ctx, &models.Cart{UserID: userID, TotalPrice: decimal.Zero})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) ownedItem(ctx context.Context, repo Repository, userID, itemID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item.CartID != cart.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item does not belong to user")
	}
	return cart, item, nil
}

// recalculate reloads the lines and persists the decimal sum so the stored
// total stays consistent with the items after every mutation.
func (s *service) recalculate(ctx context.Context, repo Repository, cartID, userID uuid.UUID) (*models.Cart, error) {
	items, err := repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart items")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	if err := repo.UpdateTotal(ctx, cartID, total); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart total")
	}

	cart, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return cart, nil
}
