package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadAnyGrid picks a parser by extension and returns the sheet as an
// array-of-arrays grid. Row 1 is expected to hold the headers.
func ReadAnyGrid(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// ToGrid widens a string grid into the any-typed grid the rest of the
// service works with, padding every row to the header width.
func ToGrid(rows [][]string) [][]any {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, width)
		for j := 0; j < width; j++ {
			if j < len(r) {
				row[j] = r[j]
			} else {
				row[j] = ""
			}
		}
		out[i] = row
	}
	return out
}

// normalizeCell trims the junk whitespace spreadsheet tools leave in
// cells, including NBSP.
func normalizeCell(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(s)
}

// trimTrailingEmptyRows drops fully empty rows from the bottom of the
// grid so trailing formatting rows do not inflate the sheet.
func trimTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 {
		empty := true
		for _, v := range rows[end-1] {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		end--
	}
	return rows[:end]
}
