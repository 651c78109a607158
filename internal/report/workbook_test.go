package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/tealeg/xlsx"
)

func TestWriteSalesWorkbook(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	at := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	list := []sales.SaleRecord{
		{
			ID:          42,
			CreatedAt:   at,
			ServiceType: sales.DineIn,
			Lines:       []sales.Line{{Name: "Curry", Price: 800}, {Name: "Cola", Price: 200}},
			Subtotal:    1000,
			Tax:         100,
			Total:       1100,
			Received:    2000,
			Change:      900,
		},
		{
			ID:          43,
			CreatedAt:   at.Add(time.Hour),
			ServiceType: sales.Takeout,
			Lines:       []sales.Line{{Name: "Cola", Price: 200}},
			Subtotal:    200,
			Tax:         16,
			Total:       216,
			Received:    216,
		},
	}

	var buf bytes.Buffer
	if err := WriteSalesWorkbook(&buf, list, jst); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	salesSheet, ok := file.Sheet["Sales"]
	if !ok {
		t.Fatal("missing Sales sheet")
	}
	// header + 2 sales + footer
	if len(salesSheet.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(salesSheet.Rows))
	}
	first := salesSheet.Rows[1].Cells
	if first[0].String() != "42" || first[1].String() != "2024-06-01 12:00:00" || first[3].String() != "Curry, Cola" {
		t.Fatalf("unexpected first row %q %q %q", first[0].String(), first[1].String(), first[3].String())
	}
	footer := salesSheet.Rows[3].Cells
	if got := footer[len(footer)-1].String(); got != "1316" {
		t.Fatalf("expected revenue 1316 in footer, got %q", got)
	}

	items, ok := file.Sheet["Items"]
	if !ok {
		t.Fatal("missing Items sheet")
	}
	if len(items.Rows) != 3 || items.Rows[1].Cells[1].String() != "Cola" || items.Rows[1].Cells[2].String() != "2" {
		t.Fatalf("unexpected ranking sheet")
	}
}

func TestWriteSalesWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSalesWorkbook(&buf, nil, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a workbook even without sales")
	}
}
