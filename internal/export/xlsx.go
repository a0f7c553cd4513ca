// Package export writes inventory items to spreadsheets. The "Sync" sheet
// follows the downstream record contract column for column; the "Ledger"
// sheet carries the analytics behind each row.
package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/restock/internal/inventory"
	"github.com/sells-group/restock/internal/model"
)

// Sheet names.
const (
	SyncSheet   = "Sync"
	LedgerSheet = "Ledger"
)

// SyncColumns is the header of the Sync sheet.
var SyncColumns = []string{"Name", "Supplier", "Min Quantity", "Order Quantity", "Location", "Image URL", "Product URL"}

// LedgerColumns is the header of the Ledger sheet.
var LedgerColumns = []string{
	"Key", "Name", "Original Name", "Normalized Name", "Supplier", "SKU", "Unit",
	"Orders", "Total Quantity", "Cadence Days", "Daily Burn", "First Order", "Last Order",
	"Next Predicted Order", "Last Unit Price", "Total Spend", "Possible Duplicates", "Draft",
}

// Workbook builds the inventory workbook.
func Workbook(items []model.InventoryItem) (*xlsx.File, error) {
	f := xlsx.NewFile()

	sync, err := f.AddSheet(SyncSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sync sheet")
	}
	addHeader(sync, SyncColumns)
	for _, rec := range inventory.SyncRecords(items) {
		row := sync.AddRow()
		row.AddCell().SetString(rec.Name)
		row.AddCell().SetString(rec.Supplier)
		row.AddCell().SetInt(rec.MinQuantity)
		row.AddCell().SetInt(rec.OrderQuantity)
		row.AddCell().SetString(rec.Location)
		row.AddCell().SetString(rec.ImageURL)
		row.AddCell().SetString(rec.ProductURL)
	}

	ledger, err := f.AddSheet(LedgerSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add ledger sheet")
	}
	addHeader(ledger, LedgerColumns)
	for _, item := range items {
		row := ledger.AddRow()
		row.AddCell().SetString(item.Key)
		row.AddCell().SetString(item.Name)
		row.AddCell().SetString(item.OriginalName)
		row.AddCell().SetString(item.NormalizedName)
		row.AddCell().SetString(item.Supplier)
		row.AddCell().SetString(item.SKU)
		row.AddCell().SetString(item.Unit)
		row.AddCell().SetInt(item.OrderCount)
		row.AddCell().SetFloat(item.TotalQuantity)
		row.AddCell().SetFloat(item.AverageCadenceDays)
		row.AddCell().SetFloat(item.DailyBurnRate)
		row.AddCell().SetString(formatDate(item.FirstOrderDate))
		row.AddCell().SetString(formatDate(item.LastOrderDate))
		if item.NextPredictedOrder != nil {
			row.AddCell().SetString(formatDate(*item.NextPredictedOrder))
		} else {
			row.AddCell().SetString("")
		}
		if item.LastUnitPrice != nil {
			row.AddCell().SetFloat(*item.LastUnitPrice)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetFloat(item.TotalSpend)
		row.AddCell().SetString(strings.Join(item.PossibleDuplicates, "; "))
		row.AddCell().SetBool(item.Draft)
	}
	return f, nil
}

// Write encodes the inventory workbook to w.
func Write(w io.Writer, items []model.InventoryItem) error {
	f, err := Workbook(items)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

// Save writes the inventory workbook to path.
func Save(path string, items []model.InventoryItem) error {
	f, err := Workbook(items)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func addHeader(sheet *xlsx.Sheet, columns []string) {
	row := sheet.AddRow()
	for _, c := range columns {
		row.AddCell().SetString(c)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
