package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"
	"github.com/guuukimama/shop-manager/internal/stats"

	"github.com/tealeg/xlsx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	salesHeaders = []string{
		"ID", "CreatedAt", "ServiceType", "Items",
		"Subtotal", "Tax", "Total", "Received", "Change",
	}
	itemHeaders = []string{"Rank", "Name", "Count", "Revenue"}
)

// WriteSalesWorkbook renders one row per sale on a "Sales" sheet and the
// item ranking on an "Items" sheet. Times are written in loc.
func WriteSalesWorkbook(w io.Writer, list []sales.SaleRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	file := xlsx.NewFile()

	salesSheet, err := file.AddSheet("Sales")
	if err != nil {
		return fmt.Errorf("add sales sheet: %w", err)
	}
	addHeader(salesSheet, salesHeaders)

	for _, s := range list {
		names := make([]string, 0, len(s.Lines))
		for _, l := range s.Lines {
			names = append(names, l.Name)
		}

		row := salesSheet.AddRow()
		row.AddCell().SetValue(s.ID.String())
		row.AddCell().SetValue(s.CreatedAt.In(loc).Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(string(s.ServiceType))
		row.AddCell().SetValue(strings.Join(names, ", "))
		row.AddCell().SetValue(s.Subtotal)
		row.AddCell().SetValue(s.Tax)
		row.AddCell().SetValue(s.Total)
		row.AddCell().SetValue(s.Received)
		row.AddCell().SetValue(s.Change)
	}

	totals := stats.Summarize(list)
	footer := salesSheet.AddRow()
	footer.AddCell().SetValue("TOTAL")
	footer.AddCell().SetValue(fmt.Sprintf("%d sales", totals.Count))
	for i := 0; i < 4; i++ {
		footer.AddCell()
	}
	footer.AddCell().SetValue(totals.Revenue)

	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return fmt.Errorf("add items sheet: %w", err)
	}
	addHeader(itemSheet, itemHeaders)

	for i, it := range stats.RankItems(list, time.Time{}, time.Time{}, 0) {
		row := itemSheet.AddRow()
		row.AddCell().SetValue(i + 1)
		row.AddCell().SetValue(it.Name)
		row.AddCell().SetValue(it.Count)
		row.AddCell().SetValue(it.Revenue)
	}

	return file.Write(w)
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetValue(h)
	}
}
