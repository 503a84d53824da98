package fileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGridPadsRows(t *testing.T) {
	grid := ToGrid([][]string{
		{"物料名称", "品牌", "单价1"},
		{"气缸"},
	})
	require.Len(t, grid, 2)
	assert.Equal(t, []any{"物料名称", "品牌", "单价1"}, grid[0])
	assert.Equal(t, []any{"气缸", "", ""}, grid[1])
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "气缸", normalizeCell("  气缸 "))
	assert.Equal(t, "650", normalizeCell(" 650 "))
	assert.Equal(t, "", normalizeCell("   "))
}

func TestTrimTrailingEmptyRows(t *testing.T) {
	rows := [][]string{
		{"物料名称"},
		{"气缸"},
		{"", ""},
		{},
	}
	assert.Len(t, trimTrailingEmptyRows(rows), 2)
	assert.Empty(t, trimTrailingEmptyRows([][]string{{""}, {}}))
}

func TestReadAnyGridUnsupportedExtension(t *testing.T) {
	_, err := ReadAnyGrid(strings.NewReader("x"), "quotes.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file")
}

func TestReadCSVUTF8(t *testing.T) {
	csv := "物料名称,品牌,单价1\n气缸,FESTO,650\n"
	rows, err := readCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"气缸", "FESTO", "650"}, rows[1])
}
