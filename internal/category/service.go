package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/guuukimama/shop-manager/internal/kv"

	"go.uber.org/zap"
)

// CacheKey holds the JSON encoded category order.
const CacheKey = "shop_categories"

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("category already exists")
	ErrInvalid   = errors.New("category name is required")
)

// Defaults seeds the order when nothing is cached yet:
// main, side, drink, dessert.
var Defaults = []string{"メイン", "サイド", "ドリンク", "デザート"}

// ItemCategories lists the labels currently referenced by catalog items.
type ItemCategories interface {
	DistinctCategories(ctx context.Context) ([]string, error)
}

type Service struct {
	cache kv.Cache
	items ItemCategories
	log   *zap.Logger
}

func NewService(cache kv.Cache, items ItemCategories, log *zap.Logger) *Service {
	return &Service{cache: cache, items: items, log: log}
}

// Effective merges the cached order with every category still used by an
// item and persists the result, so an item never loses its tab because its
// label was removed from the explicit list.
func (s *Service) Effective(ctx context.Context) ([]string, error) {
	cached, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	used, err := s.items.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}

	merged := dedupe(append(cached, used...))
	if err := s.save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// List is the order shown to the register.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.Effective(ctx)
}

func (s *Service) Add(ctx context.Context, label string) ([]string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrInvalid
	}

	cats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(cats, label) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, label)
	}

	cats = append(cats, label)
	if err := s.save(ctx, cats); err != nil {
		return nil, err
	}

	s.log.Info("category added", zap.String("category", label))
	return cats, nil
}

// Remove drops a label from the explicit order. Items keep their category
// string untouched.
func (s *Service) Remove(ctx context.Context, label string) ([]string, error) {
	cats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(cats, label)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, label)
	}

	cats = append(cats[:i], cats[i+1:]...)
	if err := s.save(ctx, cats); err != nil {
		return nil, err
	}

	s.log.Info("category removed", zap.String("category", label))
	return cats, nil
}

// Move places label at index to, clamped to the list bounds.
func (s *Service) Move(ctx context.Context, label string, to int) ([]string, error) {
	cats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	from := indexOf(cats, label)
	if from < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, label)
	}

	cats = move(cats, from, to)
	if err := s.save(ctx, cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Replace stores a complete order, as sent by the settings screen.
func (s *Service) Replace(ctx context.Context, labels []string) ([]string, error) {
	var cleaned []string
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	cleaned = dedupe(cleaned)

	if err := s.save(ctx, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}

func (s *Service) load(ctx context.Context) ([]string, error) {
	raw, ok, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]string(nil), Defaults...), nil
	}

	var cats []string
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		s.log.Warn("discarding unreadable category cache", zap.Error(err))
		return append([]string(nil), Defaults...), nil
	}
	return cats, nil
}

func (s *Service) save(ctx context.Context, cats []string) error {
	if cats == nil {
		cats = []string{}
	}
	raw, err := json.Marshal(cats)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, CacheKey, string(raw))
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func move(list []string, from, to int) []string {
	if to < 0 {
		to = 0
	}
	if to > len(list)-1 {
		to = len(list) - 1
	}

	v := list[from]
	out := append(list[:from:from], list[from+1:]...)
	out = append(out[:to], append([]string{v}, out[to:]...)...)
	return out
}
