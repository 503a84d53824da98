package fileio

import (
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

// WriteXLSX renders a grid back into a single-sheet workbook. Numeric
// cells keep their type so prices stay numbers in the exported file.
func WriteXLSX(w io.Writer, grid [][]any, sheetName string) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if def := f.GetSheetName(0); def != sheetName {
		_ = f.DeleteSheet(def)
	}

	for i, row := range grid {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}
