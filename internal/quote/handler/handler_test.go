package handler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/config"
	"quote-service/internal/quote/agent"
	"quote-service/internal/quote/engine"
	"quote-service/internal/quote/model"
	"quote-service/internal/quote/schema"
)

func testHandler() *Handler {
	return New(config.Config{}, zerolog.Nop(), nil, nil, nil)
}

func batchItem(row int, price float64) map[string]any {
	return map[string]any{
		"target_row":    row,
		"price":         price,
		"tax":           true,
		"shipping":      true,
		"delivery_time": "3天",
	}
}

func TestApplyWriteBatchSkipsInvalidItems(t *testing.T) {
	h := testHandler()
	grid := testGrid()
	s := schema.Build(grid)

	res := agent.Result{Action: "WRITE", Updates: []map[string]any{
		{"price": 999.0, "tax": true, "shipping": true, "delivery_time": "现货"},
		batchItem(2, 320.0),
		batchItem(3, 120.0),
	}}
	out := h.applyWrite(context.Background(), zerolog.Nop(), grid, s, "", res)

	require.Equal(t, "WRITE", out.Action)
	assert.Contains(t, out.Content, "行 2, 3")
	assert.Contains(t, out.Content, "已跳过1项")

	applied, ok := out.Data.([]map[string]any)
	require.True(t, ok)
	require.Len(t, applied, 2)
	assert.Equal(t, 2, model.CoerceInt(applied[0]["target_row"]))

	// the 320 offer undercuts row 2's existing 650 and takes slot 1
	p, priced := engine.OfferPrice(engine.SlotValues(out.UpdatedSheet[1], s, 1))
	require.True(t, priced)
	assert.Equal(t, 320.0, p)
	p, priced = engine.OfferPrice(engine.SlotValues(out.UpdatedSheet[1], s, 2))
	require.True(t, priced)
	assert.Equal(t, 650.0, p)

	p, priced = engine.OfferPrice(engine.SlotValues(out.UpdatedSheet[2], s, 1))
	require.True(t, priced)
	assert.Equal(t, 120.0, p)
}

func TestApplyWriteBatchAllInvalidAsks(t *testing.T) {
	h := testHandler()
	grid := testGrid()
	s := schema.Build(grid)

	res := agent.Result{Action: "WRITE", Updates: []map[string]any{
		{"price": 999.0, "tax": true, "shipping": true, "delivery_time": "现货"},
		{"target_row": 2, "tax": true, "shipping": true, "delivery_time": "现货"},
	}}
	out := h.applyWrite(context.Background(), zerolog.Nop(), grid, s, "", res)

	require.Equal(t, "ASK", out.Action)
	assert.Contains(t, out.Content, "更新列表中没有可执行的更新项")
	assert.Contains(t, out.Content, "行号/物料名称")
	assert.Contains(t, out.Content, model.FieldPrice)
	assert.Nil(t, out.UpdatedSheet)

	// nothing was written
	_, priced := engine.OfferPrice(engine.SlotValues(grid[2], s, 1))
	assert.False(t, priced)
}

func TestApplyWriteBatchExplicitRowFallback(t *testing.T) {
	h := testHandler()
	grid := testGrid()
	s := schema.Build(grid)

	res := agent.Result{Action: "WRITE", Updates: []map[string]any{
		{"price": 88.0, "tax": true, "shipping": true, "delivery_time": "一周"},
	}}
	out := h.applyWrite(context.Background(), zerolog.Nop(), grid, s, "第3行 88元 含税含运 一周", res)

	require.Equal(t, "WRITE", out.Action)
	assert.Contains(t, out.Content, "行 3")
	assert.NotContains(t, out.Content, "已跳过")
}
