package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/guuukimama/shop-manager/internal/kv"

	"go.uber.org/zap"
)

const (
	KeyName      = "shop_config_name"
	KeyCurrency  = "shop_config_currency"
	KeyAutoPrint = "shop_config_auto_print"

	DefaultName     = "My Awesome Shop"
	DefaultCurrency = "JPY"
)

var ErrInvalid = errors.New("invalid settings")

type Settings struct {
	ShopName  string `json:"shop_name"`
	Currency  string `json:"currency"`
	AutoPrint bool   `json:"auto_print"`
}

// Resetter wipes one store during a full reset.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ResetFunc adapts a plain function to Resetter.
type ResetFunc func(ctx context.Context) error

func (f ResetFunc) Reset(ctx context.Context) error { return f(ctx) }

type Service struct {
	cache     kv.Cache
	resetters map[string]Resetter
	order     []string
	log       *zap.Logger
}

func NewService(cache kv.Cache, log *zap.Logger) *Service {
	return &Service{
		cache:     cache,
		resetters: make(map[string]Resetter),
		log:       log,
	}
}

// RegisterResetter adds a store to wipe on ResetAll, in registration order.
func (s *Service) RegisterResetter(name string, r Resetter) {
	if _, ok := s.resetters[name]; !ok {
		s.order = append(s.order, name)
	}
	s.resetters[name] = r
}

func (s *Service) Get(ctx context.Context) (Settings, error) {
	out := Settings{ShopName: DefaultName, Currency: DefaultCurrency}

	if v, ok, err := s.cache.Get(ctx, KeyName); err != nil {
		return Settings{}, err
	} else if ok && v != "" {
		out.ShopName = v
	}

	if v, ok, err := s.cache.Get(ctx, KeyCurrency); err != nil {
		return Settings{}, err
	} else if ok && v != "" {
		out.Currency = v
	}

	if v, ok, err := s.cache.Get(ctx, KeyAutoPrint); err != nil {
		return Settings{}, err
	} else if ok {
		out.AutoPrint, _ = strconv.ParseBool(v)
	}

	return out, nil
}

func (s *Service) Save(ctx context.Context, in Settings) (Settings, error) {
	in.ShopName = strings.TrimSpace(in.ShopName)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))

	if in.ShopName == "" {
		return Settings{}, fmt.Errorf("%w: shop name is required", ErrInvalid)
	}
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}

	writes := []struct{ key, value string }{
		{KeyName, in.ShopName},
		{KeyCurrency, in.Currency},
		{KeyAutoPrint, strconv.FormatBool(in.AutoPrint)},
	}
	for _, w := range writes {
		if err := s.cache.Set(ctx, w.key, w.value); err != nil {
			return Settings{}, err
		}
	}

	s.log.Info("settings saved",
		zap.String("shop_name", in.ShopName),
		zap.String("currency", in.Currency),
		zap.Bool("auto_print", in.AutoPrint),
	)
	return in, nil
}

// ResetAll wipes the key/value cache and every registered store. It keeps
// going after a failure and reports all of them.
func (s *Service) ResetAll(ctx context.Context) error {
	var errs []error

	if err := s.cache.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("settings: %w", err))
	}
	for _, name := range s.order {
		if err := s.resetters[name].Reset(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.log.Error("reset all data failed", zap.Error(err))
		return err
	}

	s.log.Warn("all shop data reset", zap.Strings("stores", s.order))
	return nil
}
