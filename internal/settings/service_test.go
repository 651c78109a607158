package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guuukimama/shop-manager/internal/kv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestGet_Defaults(t *testing.T) {
	svc := NewService(kv.NewMemoryCache(), zap.NewNop())

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := Settings{ShopName: DefaultName, Currency: DefaultCurrency}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kv.NewMemoryCache(), zap.NewNop())

	saved, err := svc.Save(ctx, Settings{ShopName: "  Cafe  ", Currency: "usd", AutoPrint: true})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ShopName != "Cafe" || saved.Currency != "USD" {
		t.Fatalf("unexpected normalisation %+v", saved)
	}

	got, _ := svc.Get(ctx)
	if got != saved {
		t.Fatalf("got %+v, want %+v", got, saved)
	}

	if _, err := svc.Save(ctx, Settings{ShopName: " "}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	cache := kv.NewMemoryCache()
	svc := NewService(cache, zap.NewNop())
	svc.Save(ctx, Settings{ShopName: "Cafe", AutoPrint: true})

	var calls []string
	svc.RegisterResetter("catalog", ResetFunc(func(context.Context) error {
		calls = append(calls, "catalog")
		return nil
	}))
	svc.RegisterResetter("sales", ResetFunc(func(context.Context) error {
		calls = append(calls, "sales")
		return nil
	}))

	if err := svc.ResetAll(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Join(calls, ",") != "catalog,sales" {
		t.Fatalf("unexpected reset order %v", calls)
	}
	if got, _ := svc.Get(ctx); got.ShopName != DefaultName || got.AutoPrint {
		t.Fatalf("settings must be back to defaults, got %+v", got)
	}
}

func TestResetAll_ContinuesAfterFailure(t *testing.T) {
	svc := NewService(kv.NewMemoryCache(), zap.NewNop())

	salesReset := false
	svc.RegisterResetter("catalog", ResetFunc(func(context.Context) error { return errors.New("locked") }))
	svc.RegisterResetter("sales", ResetFunc(func(context.Context) error {
		salesReset = true
		return nil
	}))

	err := svc.ResetAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "catalog: locked") {
		t.Fatalf("expected catalog failure, got %v", err)
	}
	if !salesReset {
		t.Fatal("later stores must still be reset")
	}
}

func TestSettingsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(kv.NewMemoryCache(), zap.NewNop())).Register(r)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(http.MethodPut, "/settings", `{"shop_name":"Bistro","currency":"JPY"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(http.MethodGet, "/settings", ""); !strings.Contains(w.Body.String(), `"shop_name":"Bistro"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if w := do(http.MethodPut, "/settings", `{"shop_name":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(http.MethodPost, "/settings/reset", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(http.MethodGet, "/settings", ""); !strings.Contains(w.Body.String(), DefaultName) {
		t.Fatalf("expected defaults after reset, got %s", w.Body.String())
	}
}
