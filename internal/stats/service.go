package stats

import (
	"context"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"
)

// Service answers dashboard questions by reading the sales ledger.
type Service struct {
	sink sales.Sink
	loc  *time.Location
	now  func() time.Time
}

func NewService(sink sales.Sink, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{sink: sink, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

// Summary is the all-time report.
type Summary struct {
	Totals        DayTotals                       `json:"totals"`
	ByServiceType map[sales.ServiceType]DayTotals `json:"by_service_type"`
	TopItem       *ItemCount                      `json:"top_item"`
}

type Today struct {
	Date    string     `json:"date"`
	Totals  DayTotals  `json:"totals"`
	TopItem *ItemCount `json:"top_item"`
}

func (s *Service) Today(ctx context.Context) (Today, error) {
	now := s.now()
	from := StartOfDay(now, s.loc)
	to := from.AddDate(0, 0, 1)

	list, err := s.sink.ListSales(ctx, sales.Filter{From: from, To: to})
	if err != nil {
		return Today{}, err
	}

	out := Today{
		Date:   from.Format(dayLayout),
		Totals: TotalsForDay(list, now, s.loc),
	}
	if name, count, ok := TopItem(list, from, to); ok {
		out.TopItem = &ItemCount{Name: name, Count: count}
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	list, err := s.sink.ListSales(ctx, sales.Filter{})
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Totals:        Summarize(list),
		ByServiceType: ByServiceType(list),
	}
	if ranked := RankItems(list, time.Time{}, time.Time{}, 1); len(ranked) > 0 {
		out.TopItem = &ranked[0]
	}
	return out, nil
}

func (s *Service) TopItems(ctx context.Context, from, to time.Time, limit int) ([]ItemCount, error) {
	list, err := s.sink.ListSales(ctx, sales.Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return RankItems(list, from, to, limit), nil
}

func (s *Service) Hourly(ctx context.Context, day time.Time) ([24]int, error) {
	from := StartOfDay(day, s.loc)
	list, err := s.sink.ListSales(ctx, sales.Filter{From: from, To: from.AddDate(0, 0, 1)})
	if err != nil {
		return [24]int{}, err
	}
	return HourlyDistribution(list, day, s.loc), nil
}

func (s *Service) Daily(ctx context.Context, days int) ([]DailyPoint, error) {
	if days < 1 {
		days = 1
	}
	now := s.now()
	from := StartOfDay(now, s.loc).AddDate(0, 0, -(days - 1))

	list, err := s.sink.ListSales(ctx, sales.Filter{From: from})
	if err != nil {
		return nil, err
	}
	return DailySeries(list, now, days, s.loc), nil
}

func (s *Service) Monthly(ctx context.Context, months int) ([]MonthlyPoint, error) {
	if months < 1 {
		months = 1
	}
	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, s.loc)

	list, err := s.sink.ListSales(ctx, sales.Filter{From: from})
	if err != nil {
		return nil, err
	}
	return MonthlySeries(list, now, months, s.loc), nil
}

// Recent lists the latest sales, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]sales.SaleRecord, error) {
	return s.sink.ListSales(ctx, sales.Filter{Limit: limit, Descending: true})
}

// Sales returns the ledger between from and to, oldest first.
func (s *Service) Sales(ctx context.Context, from, to time.Time) ([]sales.SaleRecord, error) {
	return s.sink.ListSales(ctx, sales.Filter{From: from, To: to})
}
