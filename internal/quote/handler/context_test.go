package handler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
	"quote-service/internal/quote/schema"
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

func testGrid() [][]any {
	h := testHeaders(2)
	s := schema.Build([][]any{h})
	row2 := make([]any, len(h))
	row2[0], row2[1], row2[2], row2[3] = "气缸", "FESTO", "CPE14-M1BH", "标准"
	row2[s.SlotIndex(1, model.FieldPrice)] = 650.0
	row3 := make([]any, len(h))
	row3[0], row3[1], row3[2], row3[3] = "电磁阀", "SMC", "VT307", "三通"
	return [][]any{h, row2, row3}
}

func TestSheetStateSummary(t *testing.T) {
	grid := testGrid()
	s := schema.Build(grid)
	out := sheetStateSummary(grid, s)

	assert.Contains(t, out, "槽位数:2")
	assert.Contains(t, out, "FESTO 1项 已询1/2")
	assert.Contains(t, out, "SMC 1项 已询0/2")
	assert.Contains(t, out, "行2: 气缸 | 品牌:FESTO | 型号:CPE14-M1BH | 已询:1/2")

	assert.Equal(t, "空", sheetStateSummary(nil, schema.Build(nil)))
}

func TestPendingSummary(t *testing.T) {
	grid := testGrid()
	out := pendingSummary(grid, schema.Build(grid))
	assert.Contains(t, out, "行2: 气缸 (标准)")
	assert.Contains(t, out, "行3: 电磁阀 (三通)")

	assert.Equal(t, "空", pendingSummary([][]any{testHeaders(1)}, schema.Build([][]any{testHeaders(1)})))
}

func TestRelevantRowsFuzzyAndBrand(t *testing.T) {
	grid := testGrid()
	s := schema.Build(grid)

	// typo in the part number still finds row 2
	rows, brandCtx := relevantRows(grid, s, "CPE14-M1HB 650含税", 80)
	require.NotEmpty(t, rows)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "未识别到品牌", brandCtx)

	// a brand token narrows matching and is surfaced as context
	_, brandCtx = relevantRows(grid, s, "FESTO 的报价", 80)
	assert.Contains(t, brandCtx, "FESTO")
}

func TestBuildBundle(t *testing.T) {
	grid := testGrid()
	s := schema.Build(grid)
	bundle := buildBundle(grid, s, "CPE14-M1BH 650元", 80)

	assert.Contains(t, bundle.HeadersPreviewJSON, "单价1")
	assert.Contains(t, bundle.WritableFieldsJSON, "供应商2")
	assert.Contains(t, bundle.RequiredFieldsJSON, "单价")
	assert.Equal(t, 1, bundle.TotalRelevantRows)
	assert.Contains(t, bundle.RelevantRowsJSON, "CPE14-M1BH")
}
