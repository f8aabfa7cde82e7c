package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dexxrat/gamestore-backend/api/responses"
	"github.com/dexxrat/gamestore-backend/api/validators"
	"github.com/dexxrat/gamestore-backend/internal/games"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/dexxrat/gamestore-backend/pkg/logger"
)

type gameRequest struct {
	Title         string           `json:"title" validate:"required"`
	Description   *string          `json:"description"`
	Developer     *string          `json:"developer"`
	Publisher     *string          `json:"publisher"`
	ReleaseDate   *time.Time       `json:"release_date"`
	Platform      *string          `json:"platform"`
	Genres        []string         `json:"genres"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ImageURL      *string          `json:"image_url"`
	IsActive      *bool            `json:"is_active"`
}

func parsePathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// GamesList returns the active catalog.
func GamesList(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := svc.ListGames(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// GameDetail returns a single active catalog entry.
func GameDetail(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		game, err := svc.GetGame(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, game)
	}
}

// GamesSearch runs a title search. An empty query falls back to the full list.
func GamesSearch(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		found, err := svc.SearchGames(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// GamesByGenre filters the active catalog by genre.
func GamesByGenre(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		genre := chi.URLParam(r, "genre")
		found, err := svc.GamesByGenre(r.Context(), genre)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// GamesByPlatform filters the active catalog by platform.
func GamesByPlatform(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := chi.URLParam(r, "platform")
		found, err := svc.GamesByPlatform(r.Context(), platform)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// AdminGameCreate adds a catalog entry.
func AdminGameCreate(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload gameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		game, err := svc.CreateGame(r.Context(), games.CreateGameInput{
			Title:         payload.Title,
			Description:   payload.Description,
			Developer:     payload.Developer,
			Publisher:     payload.Publisher,
			ReleaseDate:   payload.ReleaseDate,
			Platform:      payload.Platform,
			Genres:        payload.Genres,
			Price:         payload.Price,
			DiscountPrice: payload.DiscountPrice,
			ImageURL:      payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, game)
	}
}

// AdminGameUpdate replaces a catalog entry.
func AdminGameUpdate(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload gameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		game, err := svc.UpdateGame(r.Context(), id, games.UpdateGameInput{
			Title:         payload.Title,
			Description:   payload.Description,
			Developer:     payload.Developer,
			Publisher:     payload.Publisher,
			ReleaseDate:   payload.ReleaseDate,
			Platform:      payload.Platform,
			Genres:        payload.Genres,
			Price:         payload.Price,
			DiscountPrice: payload.DiscountPrice,
			ImageURL:      payload.ImageURL,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, game)
	}
}

// AdminGameDelete deactivates a catalog entry.
func AdminGameDelete(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteGame(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
