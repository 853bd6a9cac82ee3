package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"roweditor/pkg/sheets"
)

// SheetName is the worksheet the table is written to.
const SheetName = "Sheet1"

// WriteXLSX writes the table as a workbook. Rows land on their original sheet
// positions so a filtered table keeps the row numbers the proxy expects.
func WriteXLSX(table *sheets.Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, sheets.HeaderRow, table.Headers); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := setRow(f, row.Index, row.Data); err != nil {
			return err
		}
	}
	if len(table.Headers) > 0 {
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      sheets.HeaderRow,
			TopLeftCell: fmt.Sprintf("A%d", sheets.HeaderRow+1),
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, index int, data []string) error {
	if len(data) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, index)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(data))
	for i, v := range data {
		values[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", index, err)
	}
	return nil
}
