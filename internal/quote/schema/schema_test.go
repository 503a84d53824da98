package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
)

func testHeaders(slots int) []any {
	h := []any{"物料名称", "品牌", "型号", "规格", "数量"}
	for n := 1; n <= slots; n++ {
		for _, f := range model.SlotFields {
			h = append(h, fmt.Sprintf("%s%d", f, n))
		}
	}
	return h
}

func TestBuildPositionalSlots(t *testing.T) {
	grid := [][]any{testHeaders(3)}
	s := Build(grid)

	require.Equal(t, 3, s.Capacity())
	assert.Equal(t, []int{1, 2, 3}, s.SlotNumbers())

	// every slot field lives at base + 7*(slot-1) + field position
	for n := 1; n <= 3; n++ {
		for pos, field := range model.SlotFields {
			want := BasicColCount + SlotSize*(n-1) + pos
			assert.Equal(t, want, s.SlotIndex(n, field), "slot %d field %s", n, field)
		}
	}
}

func TestBuildIgnoresPartialTrailingBlock(t *testing.T) {
	h := testHeaders(1)
	h = append(h, "品牌2", "备注2", "单价2") // incomplete block
	s := Build([][]any{h})

	assert.Equal(t, 1, s.Capacity())
	assert.Equal(t, -1, s.SlotIndex(2, model.FieldPrice))
}

func TestBuildItemColumns(t *testing.T) {
	s := Build([][]any{testHeaders(1)})
	assert.Equal(t, 0, s.ItemCols.Name)
	assert.Equal(t, 1, s.ItemCols.Brand)
	assert.Equal(t, 2, s.ItemCols.Model)
	assert.Equal(t, 3, s.ItemCols.Spec)
}

func TestBuildItemColumnSynonyms(t *testing.T) {
	s := Build([][]any{{"序号", "品名", "产品型号", "规格型号", "单位"}})
	assert.Equal(t, 1, s.ItemCols.Name)
	assert.Equal(t, 2, s.ItemCols.Model)
	assert.Equal(t, -1, s.ItemCols.Brand)
}

func TestBuildEmptyGrid(t *testing.T) {
	s := Build(nil)
	assert.Equal(t, 0, s.Capacity())
	assert.Equal(t, -1, s.ItemCols.Name)
	assert.False(t, s.HasPriceColumn())
}

func TestBuildDoesNotMutateGrid(t *testing.T) {
	grid := [][]any{testHeaders(2), {"气缸", "FESTO", "CPE14", "标准", 2}}
	want := [][]any{append([]any{}, grid[0]...), append([]any{}, grid[1]...)}
	_ = Build(grid)
	assert.Equal(t, want, grid)
}

func TestHasPriceColumn(t *testing.T) {
	assert.True(t, Build([][]any{testHeaders(1)}).HasPriceColumn())
	assert.False(t, Build([][]any{{"物料名称", "品牌", "型号", "规格", "数量"}}).HasPriceColumn())
}

func TestWritableFields(t *testing.T) {
	s := Build([][]any{testHeaders(3)})
	wf := s.WritableFields(2)

	require.Len(t, wf, 2)
	assert.Equal(t, "单价1", wf["1"][model.FieldPrice])
	assert.Equal(t, "供应商2", wf["2"][model.FieldSupplier])
	assert.NotContains(t, wf, "3")
}

func TestRequiredFields(t *testing.T) {
	s := Build([][]any{testHeaders(1)})
	assert.ElementsMatch(t,
		[]string{model.FieldPrice, model.FieldTax, model.FieldShipping, model.FieldLeadTime},
		s.RequiredFields())

	empty := Build([][]any{{"物料名称"}})
	assert.Len(t, empty.RequiredFields(), 4)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "单价(元)", NormalizeHeader("  单价（元） "))
	assert.Equal(t, "含税:是", NormalizeHeader("含税： 是"))
	assert.Equal(t, "物料名称", NormalizeHeader("物料 名称"))
	assert.Equal(t, "", NormalizeHeader(nil))
	assert.Equal(t, "650", NormalizeHeader(650.0))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "650", CellText(650.0))
	assert.Equal(t, "650.5", CellText(650.5))
	assert.Equal(t, "3", CellText(3))
	assert.Equal(t, "abc", CellText("  abc "))
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, CellValue(""))
	assert.Nil(t, CellValue("  "))
	assert.Nil(t, CellValue("None"))
	assert.Nil(t, CellValue("none"))
	assert.Equal(t, "FESTO", CellValue("FESTO"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("CPE14", "CPE14"))
	assert.Equal(t, 100.0, Similarity(" CPE 14 ", "CPE14"))
	assert.Equal(t, 0.0, Similarity("", "CPE14"))
	assert.Equal(t, 0.0, Similarity("CPE14", ""))

	// one edit over four runes
	assert.InDelta(t, 75.0, Similarity("ABCD", "ABCE"), 0.001)
	// transposition counts as one edit
	assert.InDelta(t, 75.0, Similarity("ABCD", "ABDC"), 0.001)
}
