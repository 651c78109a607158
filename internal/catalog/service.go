package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidItem = errors.New("invalid item")

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// --------------------------------------------------
// Read
// --------------------------------------------------
func (s *Service) List(ctx context.Context, category string) ([]Item, error) {
	return s.repo.List(ctx, category)
}

func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.repo.Get(ctx, id)
}

// DistinctCategories returns the category labels referenced by items, in
// order of first appearance.
func (s *Service) DistinctCategories(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out, nil
}

// --------------------------------------------------
// Write
// --------------------------------------------------
func (s *Service) Create(ctx context.Context, in CreateInput) (*Item, error) {
	name := strings.TrimSpace(in.Name)
	if err := validate(name, in.Price); err != nil {
		return nil, err
	}

	emoji := strings.TrimSpace(in.Emoji)
	if emoji == "" {
		emoji = DefaultEmoji
	}

	now := s.now()
	item := &Item{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     in.Price,
		Category:  strings.TrimSpace(in.Category),
		Emoji:     emoji,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("item created",
		zap.String("item_id", item.ID),
		zap.String("name", item.Name),
		zap.Int64("price", item.Price),
		zap.String("category", item.Category),
	)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.Category != nil {
		trimmed := strings.TrimSpace(*patch.Category)
		patch.Category = &trimmed
	}
	patch.apply(item)

	if err := validate(item.Name, item.Price); err != nil {
		return nil, err
	}
	if item.Emoji == "" {
		item.Emoji = DefaultEmoji
	}
	item.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("item updated", zap.String("item_id", item.ID))
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("item deleted", zap.String("item_id", id))
	return nil
}

// Reset removes every item.
func (s *Service) Reset(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func validate(name string, price int64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidItem)
	}
	return nil
}
