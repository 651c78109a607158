package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setupCatalogRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	service := NewService(NewInMemoryRepository(), zap.NewNop())
	NewHandler(service).Register(r)
	return r
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestItemsHandler_CRUD(t *testing.T) {
	r := setupCatalogRouter()

	w := doJSON(r, http.MethodPost, "/items", map[string]any{
		"name": "Gyoza", "price": 450, "category": "サイド",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created Item
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(r, http.MethodGet, "/items?category="+url.QueryEscape("サイド"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listed []Item
	_ = json.Unmarshal(w.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodPatch, "/items/"+created.ID, map[string]any{"name": "Yaki Gyoza"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/items/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/items/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestItemsHandler_InvalidPayload(t *testing.T) {
	r := setupCatalogRouter()

	w := doJSON(r, http.MethodPost, "/items", map[string]any{"name": "", "price": 100})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/items", map[string]any{"name": "Tea", "price": "free"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price type, got %d", w.Code)
	}
}
