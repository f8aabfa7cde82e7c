package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dexxrat/gamestore-backend/api/middleware"
	cartsvc "github.com/dexxrat/gamestore-backend/internal/cart"
	"github.com/dexxrat/gamestore-backend/pkg/logger"
)

type stubCartService struct {
	lastUserID   uuid.UUID
	lastItemID   uuid.UUID
	lastQuantity int
	count        int64
	err          error
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.Response, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.Response, error) {
	s.lastUserID = userID
	s.lastItemID = input.GameID
	s.lastQuantity = input.Quantity
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.Response, error) {
	s.lastUserID = userID
	s.lastItemID = itemID
	s.lastQuantity = quantity
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.Response, error) {
	s.lastUserID = userID
	s.lastItemID = itemID
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.Response{Items: []cartsvc.ItemResponse{}}, nil
}

func (s *stubCartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	s.lastUserID = userID
	return s.err
}

func (s *stubCartService) ItemCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.lastUserID = userID
	if s.err != nil {
		return 0, s.err
	}
	return s.count, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func withPrincipal(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithPrincipal(r.Context(), userID, "tester", "USER", "access-id")
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCartFetchRequiresPrincipal(t *testing.T) {
	svc := &stubCartService{}
	handler := CartFetch(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rec.Code)
	}
}

func TestCartFetchReturnsCart(t *testing.T) {
	svc := &stubCartService{}
	handler := CartFetch(svc, testLogger())
	userID := uuid.New()

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/cart", nil), userID)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected service called with %s, got %s", userID, svc.lastUserID)
	}
}

func TestCartAddItemDecodesPayload(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAddItem(svc, testLogger())
	userID := uuid.New()
	gameID := uuid.New()

	body := `{"game_id":"` + gameID.String() + `","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, withPrincipal(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastItemID != gameID {
		t.Fatalf("expected game %s, got %s", gameID, svc.lastItemID)
	}
	if svc.lastQuantity != 2 {
		t.Fatalf("expected quantity 2, got %d", svc.lastQuantity)
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAddItem(svc, testLogger())

	body := `{"game_id":"` + uuid.NewString() + `","quantity":1,"coupon":"SAVE10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, withPrincipal(req, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartUpdateItemRejectsBadID(t *testing.T) {
	svc := &stubCartService{}
	handler := CartUpdateItem(svc, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/not-a-uuid", strings.NewReader(`{"quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	req = withPrincipal(req, uuid.New())
	req = withURLParam(req, "itemId", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad item id, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartUpdateItemPassesQuantityThrough(t *testing.T) {
	svc := &stubCartService{}
	handler := CartUpdateItem(svc, testLogger())
	itemID := uuid.New()

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/"+itemID.String(), strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	req = withPrincipal(req, uuid.New())
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastItemID != itemID {
		t.Fatalf("expected item %s, got %s", itemID, svc.lastItemID)
	}
	if svc.lastQuantity != 0 {
		t.Fatalf("expected quantity 0 passed through, got %d", svc.lastQuantity)
	}
}

func TestCartCount(t *testing.T) {
	svc := &stubCartService{count: 7}
	handler := CartCount(svc, testLogger())

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/cart/count", nil), uuid.New())
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data["count"] != 7 {
		t.Fatalf("expected count 7, got %d", envelope.Data["count"])
	}
}
