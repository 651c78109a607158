package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo, zap.NewNop()), repo
}

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestService()

	item, err := svc.Create(context.Background(), CreateInput{
		Name:     "  Karaage  ",
		Price:    500,
		Category: "メイン",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.ID == "" {
		t.Error("expected ID to be set")
	}
	if item.Name != "Karaage" {
		t.Errorf("expected trimmed name, got %q", item.Name)
	}
	if item.Emoji != DefaultEmoji {
		t.Errorf("expected default emoji, got %q", item.Emoji)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "", Price: 100}},
		{"blank name", CreateInput{Name: "   ", Price: 100}},
		{"negative price", CreateInput{Name: "Tea", Price: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidItem) {
				t.Fatalf("expected ErrInvalidItem, got %v", err)
			}
		})
	}
}

func TestCreate_ZeroPriceAndDuplicateNamesAllowed(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "Water", Price: 0}); err != nil {
		t.Fatalf("zero price should be valid: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Water", Price: 0}); err != nil {
		t.Fatalf("duplicate names should be valid: %v", err)
	}

	items, _ := svc.List(ctx, "")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestList_FilterByCategory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.Create(ctx, CreateInput{Name: "Curry", Price: 800, Category: "メイン"})
	svc.Create(ctx, CreateInput{Name: "Cola", Price: 200, Category: "ドリンク"})
	svc.Create(ctx, CreateInput{Name: "Ramen", Price: 900, Category: "メイン"})

	mains, err := svc.List(ctx, "メイン")
	if err != nil {
		t.Fatal(err)
	}
	if len(mains) != 2 || mains[0].Name != "Curry" || mains[1].Name != "Ramen" {
		t.Fatalf("unexpected mains: %+v", mains)
	}

	desserts, _ := svc.List(ctx, "デザート")
	if len(desserts) != 0 {
		t.Errorf("expected empty list, got %d", len(desserts))
	}

	all, _ := svc.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, _ := svc.Create(ctx, CreateInput{Name: "Curry", Price: 800, Category: "メイン"})

	price := int64(850)
	updated, err := svc.Update(ctx, item.ID, Patch{Price: &price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Price != 850 || updated.Name != "Curry" {
		t.Errorf("unexpected item after patch: %+v", updated)
	}

	neg := int64(-5)
	if _, err := svc.Update(ctx, item.ID, Patch{Price: &neg}); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("expected ErrInvalidItem, got %v", err)
	}

	stored, _ := svc.Get(ctx, item.ID)
	if stored.Price != 850 {
		t.Errorf("invalid patch must not be stored, got price %d", stored.Price)
	}

	if _, err := svc.Update(ctx, "missing", Patch{Price: &price}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, _ := svc.Create(ctx, CreateInput{Name: "Curry", Price: 800})

	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDistinctCategories(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.Create(ctx, CreateInput{Name: "Cola", Price: 200, Category: "ドリンク"})
	svc.Create(ctx, CreateInput{Name: "Curry", Price: 800, Category: "メイン"})
	svc.Create(ctx, CreateInput{Name: "Tea", Price: 200, Category: "ドリンク"})
	svc.Create(ctx, CreateInput{Name: "Mystery", Price: 1})

	cats, err := svc.DistinctCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0] != "ドリンク" || cats[1] != "メイン" {
		t.Errorf("unexpected categories %v", cats)
	}
}
