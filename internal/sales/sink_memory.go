package sales

import (
	"context"
	"sort"
	"sync"
)

type InMemorySink struct {
	mu    sync.RWMutex
	sales []SaleRecord
	byKey map[string]int
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{byKey: make(map[string]int)}
}

func (s *InMemorySink) InsertSale(_ context.Context, rec SaleRecord) (SaleRecord, error) {
	if err := rec.Validate(); err != nil {
		return SaleRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.byKey[rec.IdempotencyKey]; ok {
		return s.sales[i], nil
	}

	rec.Lines = append([]Line(nil), rec.Lines...)
	s.sales = append(s.sales, rec)
	s.byKey[rec.IdempotencyKey] = len(s.sales) - 1

	// keep time order for backfilled records
	if n := len(s.sales); n > 1 && s.sales[n-1].CreatedAt.Before(s.sales[n-2].CreatedAt) {
		sort.SliceStable(s.sales, func(i, j int) bool {
			return s.sales[i].CreatedAt.Before(s.sales[j].CreatedAt)
		})
		for i, r := range s.sales {
			s.byKey[r.IdempotencyKey] = i
		}
	}
	return rec, nil
}

func (s *InMemorySink) ListSales(_ context.Context, f Filter) ([]SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SaleRecord, 0)
	for _, r := range s.sales {
		if f.matches(r.CreatedAt) {
			out = append(out, r)
		}
	}

	if f.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *InMemorySink) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = nil
	s.byKey = make(map[string]int)
	return nil
}
