package checkout

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guuukimama/shop-manager/internal/catalog"
	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemLookup resolves catalog items rung up on a register.
type ItemLookup interface {
	Get(ctx context.Context, id string) (*catalog.Item, error)
}

// Publisher is told about every committed sale.
type Publisher interface {
	Publish(rec sales.SaleRecord)
}

// DefaultMaxSessions applies when Options.MaxSessions is not set.
const DefaultMaxSessions = 256

type Options struct {
	CommitTimeout time.Duration
	KeypadEnabled bool
	MaxSessions   int
	// IdleTimeout is how long a session may go untouched before the
	// reaper closes it. Zero keeps sessions until they are closed.
	IdleTimeout time.Duration
}

type session struct {
	mu       sync.Mutex
	ledger   *Ledger
	openedAt time.Time
	lastSeen atomic.Int64 // unix nanos
}

// Service owns the open registers. Each session is locked on its own, so
// two registers never wait on each other.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	items  ItemLookup
	sink   sales.Sink
	nextID func() snowflake.ID
	pub    Publisher
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

func NewService(
	items ItemLookup,
	sink sales.Sink,
	ids *sales.IDGenerator,
	pub Publisher,
	opts Options,
	log *zap.Logger,
) *Service {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Service{
		sessions: make(map[string]*session),
		items:    items,
		sink:     sink,
		nextID:   ids.Next,
		pub:      pub,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// View is what a register screen renders.
type View struct {
	ID          string            `json:"id"`
	OpenedAt    time.Time         `json:"opened_at"`
	Lines       []sales.Line      `json:"lines"`
	ServiceType sales.ServiceType `json:"service_type"`
	Totals      Totals            `json:"totals"`
	Input       string            `json:"input"`
	Received    int64             `json:"received"`
	Change      int64             `json:"change"`
	Keypad      bool              `json:"keypad_enabled"`
}

func (s *Service) Open() (View, error) {
	id := uuid.NewString()
	now := s.now()
	sess := &session{ledger: NewLedger(s.opts.KeypadEnabled), openedAt: now}
	sess.lastSeen.Store(now.UnixNano())

	s.mu.Lock()
	if len(s.sessions) >= s.opts.MaxSessions {
		s.mu.Unlock()
		s.log.Warn("checkout session limit reached", zap.Int("max_sessions", s.opts.MaxSessions))
		return View{}, ErrTooManySessions
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Debug("checkout session opened", zap.String("session_id", id))
	return s.view(id, sess), nil
}

// ReapIdle closes every session untouched for longer than the idle
// timeout and reports how many were closed.
func (s *Service) ReapIdle() int {
	if s.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.IdleTimeout).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) {
	if s.opts.IdleTimeout <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ReapIdle(); n > 0 {
				s.log.Info("idle checkout sessions closed", zap.Int("count", n))
			}
		}
	}
}

func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *Service) Get(id string) (View, error) {
	return s.with(id, func(*Ledger) error { return nil })
}

// AddItem snapshots the catalog item into the cart.
func (s *Service) AddItem(ctx context.Context, id, itemID string) (View, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return View{}, err
	}

	line := sales.Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Category: item.Category,
		Emoji:    item.Emoji,
	}
	return s.with(id, func(l *Ledger) error { return l.AddLine(line) })
}

func (s *Service) RemoveLine(id string, index int) (View, error) {
	return s.with(id, func(l *Ledger) error { return l.RemoveLine(index) })
}

func (s *Service) ToggleServiceType(id string) (View, error) {
	return s.with(id, func(l *Ledger) error {
		l.ToggleServiceType()
		return nil
	})
}

func (s *Service) SetServiceType(id string, t sales.ServiceType) (View, error) {
	return s.with(id, func(l *Ledger) error { return l.SetServiceType(t) })
}

func (s *Service) AppendDigit(id, digits string) (View, error) {
	return s.with(id, func(l *Ledger) error {
		l.AppendDigit(digits)
		return nil
	})
}

func (s *Service) ClearInput(id string) (View, error) {
	return s.with(id, func(l *Ledger) error {
		l.ClearInput()
		return nil
	})
}

func (s *Service) Reset(id string) (View, error) {
	return s.with(id, func(l *Ledger) error {
		l.Reset()
		return nil
	})
}

// Commit records the sale. The session stays locked until the sink has
// answered, so nothing can change the cart mid-commit.
func (s *Service) Commit(ctx context.Context, id string) (sales.SaleRecord, View, error) {
	var rec sales.SaleRecord

	v, err := s.with(id, func(l *Ledger) error {
		stored, err := l.Commit(ctx, s.sink, CommitOptions{
			Timeout: s.opts.CommitTimeout,
			NextID:  s.nextID,
			Now:     s.now,
		})
		if err != nil {
			return err
		}
		rec = stored
		return nil
	})
	if err != nil {
		s.log.Warn("checkout commit failed",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return sales.SaleRecord{}, v, err
	}

	s.log.Info("sale committed",
		zap.String("session_id", id),
		zap.Int64("sale_id", rec.ID.Int64()),
		zap.Int64("total", rec.Total),
		zap.String("service_type", string(rec.ServiceType)),
	)
	if s.pub != nil {
		s.pub.Publish(rec)
	}
	return rec, v, nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// with runs fn under the session lock and returns the resulting view,
// also when fn fails.
func (s *Service) with(id string, fn func(*Ledger) error) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastSeen.Store(s.now().UnixNano())
	err = fn(sess.ledger)
	return s.view(id, sess), err
}

// view must be called with sess.mu held, or before sess is shared.
func (s *Service) view(id string, sess *session) View {
	l := sess.ledger
	return View{
		ID:          id,
		OpenedAt:    sess.openedAt,
		Lines:       l.Lines(),
		ServiceType: l.ServiceType(),
		Totals:      l.Totals(),
		Input:       l.Input(),
		Received:    l.Received(),
		Change:      l.Change(),
		Keypad:      l.keypad,
	}
}
