package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/dexxrat/gamestore-backend/internal/auth"
	cartsvc "github.com/dexxrat/gamestore-backend/internal/cart"
	"github.com/dexxrat/gamestore-backend/internal/games"
	"github.com/dexxrat/gamestore-backend/internal/orders"
	userssvc "github.com/dexxrat/gamestore-backend/internal/users"
	pkgauth "github.com/dexxrat/gamestore-backend/pkg/auth"
	"github.com/dexxrat/gamestore-backend/pkg/auth/session"
	"github.com/dexxrat/gamestore-backend/pkg/config"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/dexxrat/gamestore-backend/pkg/logger"
	"github.com/dexxrat/gamestore-backend/pkg/pagination"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

type stubSessionChecker struct{ active bool }

func (s stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.active, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.Session, error) {
	return &authsvc.Session{TokenType: "Bearer"}, nil
}

func (stubAuthService) Login(ctx context.Context, creds authsvc.Credentials) (*authsvc.Session, error) {
	return &authsvc.Session{TokenType: "Bearer"}, nil
}

func (stubAuthService) Refresh(ctx context.Context, input authsvc.RefreshInput) (*authsvc.Session, error) {
	return &authsvc.Session{TokenType: "Bearer"}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }

func (stubAuthService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (stubAuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type stubGamesService struct{}

func (stubGamesService) ListGames(ctx context.Context) ([]games.GameResponse, error) {
	return []games.GameResponse{}, nil
}

func (stubGamesService) GetGame(ctx context.Context, id uuid.UUID) (*games.GameResponse, error) {
	return &games.GameResponse{ID: id}, nil
}

func (stubGamesService) SearchGames(ctx context.Context, query string) ([]games.GameResponse, error) {
	return []games.GameResponse{}, nil
}

func (stubGamesService) GamesByGenre(ctx context.Context, genre string) ([]games.GameResponse, error) {
	return []games.GameResponse{}, nil
}

func (stubGamesService) GamesByPlatform(ctx context.Context, platform string) ([]games.GameResponse, error) {
	return []games.GameResponse{}, nil
}

func (stubGamesService) CreateGame(ctx context.Context, input games.CreateGameInput) (*games.GameResponse, error) {
	return &games.GameResponse{Title: input.Title}, nil
}

func (stubGamesService) UpdateGame(ctx context.Context, id uuid.UUID, input games.UpdateGameInput) (*games.GameResponse, error) {
	return &games.GameResponse{ID: id, Title: input.Title}, nil
}

func (stubGamesService) DeleteGame(ctx context.Context, id uuid.UUID) error { return nil }

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.Response, error) {
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.Response, error) {
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (stubCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.Response, error) {
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.Response, error) {
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (stubCartService) ClearCart(ctx context.Context, userID uuid.UUID) error { return nil }

func (stubCartService) ItemCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Checkout(ctx context.Context, userID uuid.UUID) (*orders.Response, error) {
	return &orders.Response{UserID: userID}, nil
}

func (stubOrdersService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]orders.Response, error) {
	return []orders.Response{}, nil
}

func (stubOrdersService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*orders.Response, error) {
	return &orders.Response{ID: orderID, UserID: userID}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*orders.Response, error) {
	return &orders.Response{ID: orderID}, nil
}

func (stubOrdersService) ListAllOrders(ctx context.Context, params pagination.Params) (*orders.AdminOrderList, error) {
	return &orders.AdminOrderList{Orders: []orders.Response{}}, nil
}

type stubUsersService struct{}

func (stubUsersService) ListUsers(ctx context.Context, params pagination.Params) (*userssvc.List, error) {
	return &userssvc.List{Users: []userssvc.Response{}}, nil
}

func (stubUsersService) GetUser(ctx context.Context, id uuid.UUID) (*userssvc.Response, error) {
	return &userssvc.Response{ID: id}, nil
}

func (stubUsersService) GetUserByUsername(ctx context.Context, username string) (*userssvc.Response, error) {
	return &userssvc.Response{Username: username}, nil
}

func (stubUsersService) UpdateUser(ctx context.Context, id uuid.UUID, input userssvc.UpdateInput) (*userssvc.Response, error) {
	return &userssvc.Response{ID: id, Username: input.Username}, nil
}

func (stubUsersService) DeleteUser(ctx context.Context, id uuid.UUID) error { return nil }

func (stubUsersService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (stubUsersService) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:                 "router-test-secret",
			Issuer:                 "gamestore-test",
			ExpirationMinutes:      15,
			RefreshTokenTTLMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DB:       stubPinger{},
		Sessions: stubSessionChecker{active: true},
		Auth:     stubAuthService{},
		Games:    stubGamesService{},
		Cart:     stubCartService{},
		Orders:   stubOrdersService{},
		Users:    stubUsersService{},
	})
}

func mintRouterToken(t *testing.T, cfg *config.Config, role enums.RoleName) string {
	t.Helper()

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router-tester",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, handler http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicCatalog(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)

	rec := doRequest(t, handler, http.MethodGet, "/api/games", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestRouterHealthLive(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)

	rec := doRequest(t, handler, http.MethodGet, "/health/live", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from liveness, got %d", rec.Code)
	}
}

func TestRouterCartRequiresAuth(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)

	rec := doRequest(t, handler, http.MethodGet, "/api/cart", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := mintRouterToken(t, cfg, enums.RoleUser)
	rec = doRequest(t, handler, http.MethodGet, "/api/cart", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterRejectsRevokedSession(t *testing.T) {
	cfg := routerTestConfig()
	handler := NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DB:       stubPinger{},
		Sessions: stubSessionChecker{active: false},
		Auth:     stubAuthService{},
		Games:    stubGamesService{},
		Cart:     stubCartService{},
		Orders:   stubOrdersService{},
		Users:    stubUsersService{},
	})

	token := mintRouterToken(t, cfg, enums.RoleUser)
	rec := doRequest(t, handler, http.MethodGet, "/api/cart", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d", rec.Code)
	}
}

func TestRouterAdminGamesGating(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)
	body := `{"title":"Hollow Depths","price":"59.99"}`

	rec := doRequest(t, handler, http.MethodPost, "/api/games/admin", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	userToken := mintRouterToken(t, cfg, enums.RoleUser)
	rec = doRequest(t, handler, http.MethodPost, "/api/games/admin", userToken, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER role, got %d: %s", rec.Code, rec.Body.String())
	}

	adminToken := mintRouterToken(t, cfg, enums.RoleAdmin)
	rec = doRequest(t, handler, http.MethodPost, "/api/games/admin", adminToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for ADMIN role, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterAdminOrdersGating(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)

	userToken := mintRouterToken(t, cfg, enums.RoleUser)
	rec := doRequest(t, handler, http.MethodGet, "/api/orders/admin/all", userToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER role, got %d", rec.Code)
	}

	adminToken := mintRouterToken(t, cfg, enums.RoleAdmin)
	rec = doRequest(t, handler, http.MethodGet, "/api/orders/admin/all", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for ADMIN role, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUsersListAdminOnly(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)

	userToken := mintRouterToken(t, cfg, enums.RoleUser)
	rec := doRequest(t, handler, http.MethodGet, "/api/users", userToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER role, got %d", rec.Code)
	}

	adminToken := mintRouterToken(t, cfg, enums.RoleAdmin)
	rec = doRequest(t, handler, http.MethodGet, "/api/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for ADMIN role, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterAuthEndpointsOpen(t *testing.T) {
	cfg := routerTestConfig()
	handler := newTestRouter(t, cfg)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/login", "", `{"username":"player_one","password":"hunter2hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/auth/check-username/player_one", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from username check, got %d: %s", rec.Code, rec.Body.String())
	}
}
