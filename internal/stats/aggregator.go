package stats

import (
	"sort"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// DayTotals is revenue (tax included), customer count and spend per
// customer over a set of sales.
type DayTotals struct {
	Revenue int64 `json:"revenue"`
	Count   int   `json:"count"`
	Average int64 `json:"average"`
}

type ItemCount struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

type DailyPoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Count   int    `json:"count"`
}

type MonthlyPoint struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
	Count   int    `json:"count"`
}

func fold(list []sales.SaleRecord, keep func(sales.SaleRecord) bool) DayTotals {
	var t DayTotals
	for _, s := range list {
		if keep != nil && !keep(s) {
			continue
		}
		t.Revenue += s.Total
		t.Count++
	}
	if t.Count > 0 {
		t.Average = t.Revenue / int64(t.Count)
	}
	return t
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	return a.In(loc).Format(dayLayout) == b.In(loc).Format(dayLayout)
}

// TotalsForDay folds the sales whose local calendar day equals day's.
func TotalsForDay(list []sales.SaleRecord, day time.Time, loc *time.Location) DayTotals {
	return fold(list, func(s sales.SaleRecord) bool {
		return sameDay(s.CreatedAt, day, loc)
	})
}

// Summarize folds every sale given.
func Summarize(list []sales.SaleRecord) DayTotals {
	return fold(list, nil)
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

// RankItems tallies lines by item name between from (inclusive) and to
// (exclusive); zero bounds are open. Equal counts keep the order in which
// the names were first seen. limit <= 0 returns the full ranking.
func RankItems(list []sales.SaleRecord, from, to time.Time, limit int) []ItemCount {
	index := make(map[string]int)
	ranked := make([]ItemCount, 0)

	for _, s := range list {
		if !inRange(s.CreatedAt, from, to) {
			continue
		}
		for _, l := range s.Lines {
			i, ok := index[l.Name]
			if !ok {
				i = len(ranked)
				index[l.Name] = i
				ranked = append(ranked, ItemCount{Name: l.Name})
			}
			ranked[i].Count++
			ranked[i].Revenue += l.Price
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopItem is the best seller in the window, or ok=false with no sales.
func TopItem(list []sales.SaleRecord, from, to time.Time) (name string, count int, ok bool) {
	ranked := RankItems(list, from, to, 1)
	if len(ranked) == 0 {
		return "", 0, false
	}
	return ranked[0].Name, ranked[0].Count, true
}

// HourlyDistribution counts the sales of day per local hour.
func HourlyDistribution(list []sales.SaleRecord, day time.Time, loc *time.Location) [24]int {
	var hours [24]int
	for _, s := range list {
		if !sameDay(s.CreatedAt, day, loc) {
			continue
		}
		hours[s.CreatedAt.In(loc).Hour()]++
	}
	return hours
}

// DailySeries returns one point per local day for the last daysBack days,
// today included, oldest first. Days without sales are zero.
func DailySeries(list []sales.SaleRecord, now time.Time, daysBack int, loc *time.Location) []DailyPoint {
	if daysBack < 1 {
		daysBack = 1
	}

	local := now.In(loc)
	points := make([]DailyPoint, daysBack)
	index := make(map[string]int, daysBack)
	for i := 0; i < daysBack; i++ {
		d := time.Date(local.Year(), local.Month(), local.Day()-(daysBack-1-i), 0, 0, 0, 0, loc)
		key := d.Format(dayLayout)
		points[i] = DailyPoint{Date: key}
		index[key] = i
	}

	for _, s := range list {
		if i, ok := index[s.CreatedAt.In(loc).Format(dayLayout)]; ok {
			points[i].Revenue += s.Total
			points[i].Count++
		}
	}
	return points
}

// MonthlySeries is DailySeries by calendar month.
func MonthlySeries(list []sales.SaleRecord, now time.Time, monthsBack int, loc *time.Location) []MonthlyPoint {
	if monthsBack < 1 {
		monthsBack = 1
	}

	local := now.In(loc)
	points := make([]MonthlyPoint, monthsBack)
	index := make(map[string]int, monthsBack)
	for i := 0; i < monthsBack; i++ {
		m := time.Date(local.Year(), local.Month()-time.Month(monthsBack-1-i), 1, 0, 0, 0, 0, loc)
		key := m.Format(monthLayout)
		points[i] = MonthlyPoint{Month: key}
		index[key] = i
	}

	for _, s := range list {
		if i, ok := index[s.CreatedAt.In(loc).Format(monthLayout)]; ok {
			points[i].Revenue += s.Total
			points[i].Count++
		}
	}
	return points
}

func ByServiceType(list []sales.SaleRecord) map[sales.ServiceType]DayTotals {
	out := map[sales.ServiceType]DayTotals{
		sales.DineIn:  {},
		sales.Takeout: {},
	}
	for st := range out {
		st := st
		out[st] = fold(list, func(s sales.SaleRecord) bool { return s.ServiceType == st })
	}
	return out
}

// StartOfDay is local midnight of t's day.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}
