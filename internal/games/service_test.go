package games

import (
	"context"
	"testing"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGamesRepo struct {
	games       map[uuid.UUID]*models.Game
	deactivated []uuid.UUID
}

func newStubGamesRepo() *stubGamesRepo {
	return &stubGamesRepo{games: make(map[uuid.UUID]*models.Game)}
}

func (s *stubGamesRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubGamesRepo) ListActive(ctx context.Context) ([]models.Game, error) {
	var out []models.Game
	for _, game := range s.games {
		if game.IsActive {
			out = append(out, *game)
		}
	}
	return out, nil
}

func (s *stubGamesRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	game, ok := s.games[id]
	if !ok || !game.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return game, nil
}

func (s *stubGamesRepo) FindByIDAnyStatus(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	game, ok := s.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return game, nil
}

func (s *stubGamesRepo) SearchActiveByTitle(ctx context.Context, query string) ([]models.Game, error) {
	return s.ListActive(ctx)
}

func (s *stubGamesRepo) ListActiveByGenre(ctx context.Context, genre string) ([]models.Game, error) {
	return s.ListActive(ctx)
}

func (s *stubGamesRepo) ListActiveByPlatform(ctx context.Context, platform string) ([]models.Game, error) {
	return s.ListActive(ctx)
}

func (s *stubGamesRepo) Create(ctx context.Context, game *models.Game) (*models.Game, error) {
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	s.games[game.ID] = game
	return game, nil
}

func (s *stubGamesRepo) Update(ctx context.Context, game *models.Game) (*models.Game, error) {
	s.games[game.ID] = game
	return game, nil
}

func (s *stubGamesRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	game, ok := s.games[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	game.IsActive = false
	s.deactivated = append(s.deactivated, id)
	return nil
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCreateGameForcesActive(t *testing.T) {
	repo := newStubGamesRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	discount := mustDecimal(t, "39.99")
	resp, err := svc.CreateGame(context.Background(), CreateGameInput{
		Title:         "Hollow Depths",
		Price:         mustDecimal(t, "59.99"),
		DiscountPrice: &discount,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.True(t, resp.FinalPrice.Equal(discount))
	assert.True(t, resp.HasDiscount)
}

func TestCreateGameRejectsInvalidInput(t *testing.T) {
	svc, err := NewService(newStubGamesRepo())
	require.NoError(t, err)

	_, err = svc.CreateGame(context.Background(), CreateGameInput{Title: "  ", Price: mustDecimal(t, "10.00")})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateGame(context.Background(), CreateGameInput{Title: "x", Price: mustDecimal(t, "-1.00")})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetGameHidesInactive(t *testing.T) {
	repo := newStubGamesRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	id := uuid.New()
	repo.games[id] = &models.Game{ID: id, Title: "Retired", Price: mustDecimal(t, "9.99"), IsActive: false}

	_, err = svc.GetGame(context.Background(), id)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateGameKeepsGenresWhenNil(t *testing.T) {
	repo := newStubGamesRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	id := uuid.New()
	repo.games[id] = &models.Game{
		ID:       id,
		Title:    "Original",
		Price:    mustDecimal(t, "20.00"),
		Genres:   []string{"RPG", "Adventure"},
		IsActive: true,
	}

	resp, err := svc.UpdateGame(context.Background(), id, UpdateGameInput{
		Title: "Renamed",
		Price: mustDecimal(t, "25.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"RPG", "Adventure"}, resp.Genres)
	assert.Nil(t, resp.DiscountPrice, "omitted discount clears the stored one")
}

func TestDeleteGameSoftDeletes(t *testing.T) {
	repo := newStubGamesRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	id := uuid.New()
	repo.games[id] = &models.Game{ID: id, Title: "Doomed", Price: mustDecimal(t, "15.00"), IsActive: true}

	require.NoError(t, svc.DeleteGame(context.Background(), id))
	assert.False(t, repo.games[id].IsActive)

	// the row is still resolvable for order history
	game, err := repo.FindByIDAnyStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", game.Title)

	err = svc.DeleteGame(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
