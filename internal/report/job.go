package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"
	"github.com/guuukimama/shop-manager/internal/stats"

	"go.uber.org/zap"
)

// Uploader is satisfied by storage.R2Client.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// DailyExporter writes the previous local day's sales to object storage.
type DailyExporter struct {
	sink     sales.Sink
	uploader Uploader
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func NewDailyExporter(sink sales.Sink, uploader Uploader, loc *time.Location, log *zap.Logger) *DailyExporter {
	if loc == nil {
		loc = time.Local
	}
	return &DailyExporter{sink: sink, uploader: uploader, loc: loc, log: log, now: time.Now}
}

// Key is the object key used for day.
func Key(day time.Time, loc *time.Location) string {
	return fmt.Sprintf("reports/%s.xlsx", day.In(loc).Format("2006-01-02"))
}

// ExportDay uploads the workbook for the local day containing day.
func (e *DailyExporter) ExportDay(ctx context.Context, day time.Time) (string, error) {
	from := stats.StartOfDay(day, e.loc)
	list, err := e.sink.ListSales(ctx, sales.Filter{From: from, To: from.AddDate(0, 0, 1)})
	if err != nil {
		return "", fmt.Errorf("list sales: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteSalesWorkbook(&buf, list, e.loc); err != nil {
		return "", fmt.Errorf("render workbook: %w", err)
	}

	url, err := e.uploader.Upload(ctx, Key(from, e.loc), &buf, ContentType)
	if err != nil {
		return "", err
	}

	e.log.Info("daily report uploaded",
		zap.String("day", from.Format("2006-01-02")),
		zap.Int("sales", len(list)),
		zap.String("url", url),
	)
	return url, nil
}

// ExportYesterday is the scheduled unit of work.
func (e *DailyExporter) ExportYesterday(ctx context.Context) (string, error) {
	return e.ExportDay(ctx, e.now().In(e.loc).AddDate(0, 0, -1))
}

// Run exports once immediately and then on every tick until ctx ends.
func (e *DailyExporter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	if _, err := e.ExportYesterday(ctx); err != nil {
		e.log.Warn("report export failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.ExportYesterday(ctx); err != nil {
				e.log.Warn("report export failed", zap.Error(err))
			}
		}
	}
}
