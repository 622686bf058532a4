package export

import (
	"bytes"

	"github.com/tealeg/xlsx/v2"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

// XLSX renders the CSV rows as a single-sheet workbook.
func XLSX(r analysis.Result) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Analysis")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, title := range []string{"Field", "Value"} {
		cell := header.AddCell()
		cell.SetString(title)
		cell.GetStyle().Font.Bold = true
	}
	for _, row := range fieldRows(r) {
		line := sheet.AddRow()
		line.AddCell().SetString(row[0])
		line.AddCell().SetString(row[1])
	}
	sheet.SetColWidth(0, 0, 24)
	sheet.SetColWidth(1, 1, 80)

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
