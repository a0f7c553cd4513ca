package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/restock/internal/model"
)

func sampleItems() []model.InventoryItem {
	next := time.Date(2024, 11, 29, 0, 0, 0, 0, time.UTC)
	return []model.InventoryItem{
		{
			Key: "gloves", Name: "Nitrile Gloves", OriginalName: "gloves", NormalizedName: "gloves",
			Supplier: "Acme", RecommendedMin: 11, RecommendedOrderQty: 30, Location: "Shelf 2",
			ImageURL: "https://img/1.png", ProductURL: "https://shop/1",
			OrderCount: 2, FirstOrderDate: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
			LastOrderDate: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), NextPredictedOrder: &next,
			PossibleDuplicates: []string{"glove", "gloves (large)"}, Draft: true,
		},
		{Key: "tape", Name: "Tape", Supplier: "Beta", RecommendedMin: 1, RecommendedOrderQty: 1, Draft: true},
	}
}

func cellStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.String()
	}
	return out
}

func TestSave_SyncSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, Save(path, sampleItems()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet[SyncSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, SyncColumns, cellStrings(sheet.Rows[0]))
	assert.Equal(t, []string{"Nitrile Gloves", "Acme", "11", "30", "Shelf 2", "https://img/1.png", "https://shop/1"},
		cellStrings(sheet.Rows[1]))
	assert.Equal(t, "Tape", sheet.Rows[2].Cells[0].String())
}

func TestWrite_LedgerSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleItems()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	sheet, ok := f.Sheet[LedgerSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, LedgerColumns, cellStrings(sheet.Rows[0]))

	row := cellStrings(sheet.Rows[1])
	assert.Equal(t, "gloves", row[0])
	assert.Equal(t, "gloves", row[2])
	assert.Equal(t, "2", row[7])
	assert.Equal(t, "2024-11-01", row[11])
	assert.Equal(t, "2024-11-29", row[13])
	assert.Equal(t, "glove; gloves (large)", row[16])

	tape := cellStrings(sheet.Rows[2])
	assert.Equal(t, "", tape[11])
	assert.Equal(t, "", tape[13])
}

func TestWorkbook_Empty(t *testing.T) {
	f, err := Workbook(nil)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Len(t, f.Sheets[0].Rows, 1)
}
