package loader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

func readXLSX(path string) (*Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return sheetDataset(f)
}

func readXLSXBytes(data []byte) (*Dataset, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open")
	}
	return sheetDataset(f)
}

// sheetDataset reads the first sheet: a header row then one line item per row.
func sheetDataset(f *xlsx.File) (*Dataset, error) {
	if len(f.Sheets) == 0 {
		return &Dataset{}, nil
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return &Dataset{}, nil
	}

	rows := make([][]string, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rows[i] = rowToStrings(row)
	}
	return rowsToDataset(rows[0], rows[1:])
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
