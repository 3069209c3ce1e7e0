package export

import (
	"fmt"
	"io"

	"github.com/dgallion1/intelsheet/internal/flatten"
	"github.com/xuri/excelize/v2"
)

// SheetName titles the styled workbook's only sheet.
const SheetName = "Competitive Intel"

const defaultSheet = "Sheet1"

// WriteXLSX writes a Field/Value workbook. The styled variant renames the
// sheet, bolds and wraps the header, sets column widths, draws thin
// borders around every cell and freezes the header row.
func WriteXLSX(w io.Writer, rows []flatten.Row, styled bool) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if styled {
		if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		sheet = SheetName
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Field", "Value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{r.Field, cellValue(r.Value)}); err != nil {
			return fmt.Errorf("write row %q: %w", r.Field, err)
		}
	}

	if styled {
		if err := styleSheet(f, sheet, len(rows)+1); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue keeps numbers and booleans typed; everything else is text.
func cellValue(v any) any {
	switch v.(type) {
	case float64, bool:
		return v
	}
	return PlainText(flatten.Render(v))
}

func styleSheet(f *excelize.File, sheet string, lastRow int) error {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	body, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("body style: %w", err)
	}

	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}
	if lastRow > 1 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("B%d", lastRow), body); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 80); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
