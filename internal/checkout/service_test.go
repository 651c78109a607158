package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guuukimama/shop-manager/internal/catalog"
	"github.com/guuukimama/shop-manager/internal/sales"

	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu    sync.Mutex
	sales []sales.SaleRecord
}

func (p *recordingPublisher) Publish(rec sales.SaleRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sales = append(p.sales, rec)
}

type fixture struct {
	svc     *Service
	catalog *catalog.Service
	sink    *fakeSink
	pub     *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	items := catalog.NewService(catalog.NewInMemoryRepository(), zap.NewNop())
	sink := newFakeSink()
	pub := &recordingPublisher{}
	ids, err := sales.NewIDGenerator(1)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(items, sink, ids, pub, Options{
		CommitTimeout: time.Second,
		KeypadEnabled: true,
	}, zap.NewNop())

	return &fixture{svc: svc, catalog: items, sink: sink, pub: pub}
}

func (f *fixture) item(t *testing.T, name string, price int64) *catalog.Item {
	t.Helper()
	it, err := f.catalog.Create(context.Background(), catalog.CreateInput{Name: name, Price: price, Category: "メイン"})
	if err != nil {
		t.Fatal(err)
	}
	return it
}

func TestService_SessionLifecycle(t *testing.T) {
	f := newFixture(t)

	v, _ := f.svc.Open()
	if v.ID == "" || v.ServiceType != sales.DineIn || v.Input != "0" {
		t.Fatalf("unexpected fresh session %+v", v)
	}
	if v.Lines == nil {
		t.Fatal("lines must be an empty list, not nil")
	}

	if _, err := f.svc.Get(v.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Close(v.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Get(v.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := f.svc.Close(v.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestService_LineSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	curry := f.item(t, "Curry", 800)

	v, _ := f.svc.Open()
	if _, err := f.svc.AddItem(ctx, v.ID, curry.ID); err != nil {
		t.Fatal(err)
	}

	price := int64(1200)
	f.catalog.Update(ctx, curry.ID, catalog.Patch{Price: &price})

	v, _ = f.svc.Get(v.ID)
	if v.Lines[0].Price != 800 || v.Totals.Subtotal != 800 {
		t.Fatalf("open cart must keep the price it was rung up at, got %+v", v.Lines[0])
	}

	if _, err := f.svc.AddItem(ctx, v.ID, "missing"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected catalog.ErrNotFound, got %v", err)
	}
}

func TestService_CommitPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	curry := f.item(t, "Curry", 1000)

	v, _ := f.svc.Open()
	f.svc.AddItem(ctx, v.ID, curry.ID)
	f.svc.AppendDigit(v.ID, "1100")

	rec, after, err := f.svc.Commit(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == 0 {
		t.Fatal("expected snowflake id on the stored sale")
	}
	if len(after.Lines) != 0 || after.Input != "0" {
		t.Fatalf("session must be cleared after commit, got %+v", after)
	}
	if len(f.pub.sales) != 1 || f.pub.sales[0].IdempotencyKey != rec.IdempotencyKey {
		t.Fatalf("expected one published sale, got %+v", f.pub.sales)
	}
}

func TestService_CommitFailureNotPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	curry := f.item(t, "Curry", 1000)
	f.sink.fail = errors.New("disk full")

	v, _ := f.svc.Open()
	f.svc.AddItem(ctx, v.ID, curry.ID)
	f.svc.AppendDigit(v.ID, "1100")

	_, after, err := f.svc.Commit(ctx, v.ID)
	if !errors.Is(err, ErrSinkUnavailable) {
		t.Fatalf("expected ErrSinkUnavailable, got %v", err)
	}
	if len(after.Lines) != 1 {
		t.Fatal("cart must survive a failed commit")
	}
	if len(f.pub.sales) != 0 {
		t.Fatal("failed commit must not be published")
	}
}

func TestService_SessionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.item(t, "Tea", 100)

	a, _ := f.svc.Open()
	b, _ := f.svc.Open()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.svc.AddItem(ctx, a.ID, tea.ID)
		}()
		go func() {
			defer wg.Done()
			f.svc.ToggleServiceType(b.ID)
		}()
	}
	wg.Wait()

	va, _ := f.svc.Get(a.ID)
	vb, _ := f.svc.Get(b.ID)
	if len(va.Lines) != 50 {
		t.Fatalf("expected 50 lines, got %d", len(va.Lines))
	}
	if len(vb.Lines) != 0 || vb.ServiceType != sales.DineIn {
		t.Fatalf("session b must be untouched apart from toggles, got %+v", vb)
	}
}

func TestService_SessionLimit(t *testing.T) {
	f := newFixture(t)
	f.svc.opts.MaxSessions = 2

	first, err := f.svc.Open()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Open(); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}

	f.svc.Close(first.ID)
	if _, err := f.svc.Open(); err != nil {
		t.Fatalf("closing a session must free a slot: %v", err)
	}
}

func TestService_ReapIdle(t *testing.T) {
	f := newFixture(t)
	f.svc.opts.IdleTimeout = time.Hour

	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	stale, _ := f.svc.Open()
	busy, _ := f.svc.Open()

	now = now.Add(50 * time.Minute)
	f.svc.AppendDigit(busy.ID, "5")

	now = now.Add(20 * time.Minute)
	if n := f.svc.ReapIdle(); n != 1 {
		t.Fatalf("expected 1 reaped session, got %d", n)
	}
	if _, err := f.svc.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session must be closed, got %v", err)
	}
	if _, err := f.svc.Get(busy.ID); err != nil {
		t.Fatalf("active session must survive: %v", err)
	}
}
