package games

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service defines catalog operations for public browsing and admin management.
type Service interface {
	ListGames(ctx context.Context) ([]GameResponse, error)
	GetGame(ctx context.Context, id uuid.UUID) (*GameResponse, error)
	SearchGames(ctx context.Context, query string) ([]GameResponse, error)
	GamesByGenre(ctx context.Context, genre string) ([]GameResponse, error)
	GamesByPlatform(ctx context.Context, platform string) ([]GameResponse, error)
	CreateGame(ctx context.Context, input CreateGameInput) (*GameResponse, error)
	UpdateGame(ctx context.Context, id uuid.UUID, input UpdateGameInput) (*GameResponse, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("games repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListGames(ctx context.Context) ([]GameResponse, error) {
	found, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list games")
	}
	return toGameResponses(found), nil
}

func (s *service) GetGame(ctx context.Context, id uuid.UUID) (*GameResponse, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game id required")
	}
	game, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "game not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load game")
	}
	resp := ToGameResponse(*game)
	return &resp, nil
}

func (s *service) SearchGames(ctx context.Context, query string) ([]GameResponse, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListGames(ctx)
	}
	found, err := s.repo.SearchActiveByTitle(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search games")
	}
	return toGameResponses(found), nil
}

func (s *service) GamesByGenre(ctx context.Context, genre string) ([]GameResponse, error) {
	if strings.TrimSpace(genre) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "genre required")
	}
	found, err := s.repo.ListActiveByGenre(ctx, genre)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list games by genre")
	}
	return toGameResponses(found), nil
}

func (s *service) GamesByPlatform(ctx context.Context, platform string) ([]GameResponse, error) {
	if strings.TrimSpace(platform) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform required")
	}
	found, err := s.repo.ListActiveByPlatform(ctx, platform)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list games by platform")
	}
	return toGameResponses(found), nil
}

func (s *service) CreateGame(ctx context.Context, input CreateGameInput) (*GameResponse, error) {
	if err := validatePricing(input.Title, input.Price, input.DiscountPrice); err != nil {
		return nil, err
	}

	game := &models.Game{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Developer:   input.Developer,
		Publisher:   input.Publisher,
		ReleaseDate: input.ReleaseDate,
		Platform:    input.Platform,
		Genres:      input.Genres,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if game.Genres == nil {
		game.Genres = []string{}
	}
	if input.DiscountPrice != nil {
		game.DiscountPrice = decimal.NullDecimal{Decimal: *input.DiscountPrice, Valid: true}
	}

	created, err := s.repo.Create(ctx, game)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create game")
	}
	resp := ToGameResponse(*created)
	return &resp, nil
}

func (s *service) UpdateGame(ctx context.Context, id uuid.UUID, input UpdateGameInput) (*GameResponse, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game id required")
	}
	if err := validatePricing(input.Title, input.Price, input.DiscountPrice); err != nil {
		return nil, err
	}

	game, err := s.repo.FindByIDAnyStatus(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "game not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load game")
	}

	game.Title = strings.TrimSpace(input.Title)
	game.Description = input.Description
	game.Developer = input.Developer
	game.Publisher = input.Publisher
	game.ReleaseDate = input.ReleaseDate
	game.Platform = input.Platform
	game.Price = input.Price
	game.ImageURL = input.ImageURL
	if input.Genres != nil {
		game.Genres = input.Genres
	}
	if input.DiscountPrice != nil {
		game.DiscountPrice = decimal.NullDecimal{Decimal: *input.DiscountPrice, Valid: true}
	} else {
		game.DiscountPrice = decimal.NullDecimal{}
	}
	if input.IsActive != nil {
		game.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, game)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update game")
	}
	resp := ToGameResponse(*updated)
	return &resp, nil
}

func (s *service) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "game id required")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "game not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate game")
	}
	return nil
}

// A discount above the list price is accepted; clients get has_discount=false
// and the raw value back.
func validatePricing(title string, price decimal.Decimal, discount *decimal.Decimal) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if discount != nil && discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount price must not be negative")
	}
	return nil
}
