package handler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
)

func TestTrimHistoryFiltersAndCaps(t *testing.T) {
	var history []model.ChatMessage
	for i := 0; i < 20; i++ {
		history = append(history, model.ChatMessage{Role: "user", Content: fmt.Sprintf("msg %d", i)})
	}
	history = append(history,
		model.ChatMessage{Role: "system", Content: "dropped"},
		model.ChatMessage{Role: "user", Content: "   "},
		model.ChatMessage{Role: "assistant", Content: strings.Repeat("长", 2000)},
	)

	out := trimHistory(history)
	require.Len(t, out, maxHistoryMessages)
	last := out[len(out)-1]
	assert.Equal(t, "assistant", last.Role)
	assert.Len(t, []rune(last.Content), maxCharsPerMessage)
	for _, m := range out {
		assert.NotEqual(t, "system", m.Role)
		assert.NotEqual(t, "", strings.TrimSpace(m.Content))
	}
}

func TestMissingFields(t *testing.T) {
	required := []string{model.FieldPrice, model.FieldTax, model.FieldShipping, model.FieldLeadTime}

	missing := missingFields(map[string]any{}, required)
	assert.ElementsMatch(t,
		[]string{model.FieldPrice, model.FieldTax, model.FieldShipping, model.FieldLeadTime, "行号/物料名称"},
		missing)

	// zero price is a legitimate quote; explicit null tax/shipping count as answered
	complete := map[string]any{
		"target_row":    2,
		"price":         0.0,
		"tax":           nil,
		"shipping":      nil,
		"delivery_time": "现货",
	}
	assert.Empty(t, missingFields(complete, required))

	noDelivery := map[string]any{
		"target_row": 2, "price": 650.0, "tax": true, "shipping": false,
	}
	assert.Equal(t, []string{model.FieldLeadTime}, missingFields(noDelivery, required))
}

func TestMissingFieldsRespectsSheetColumns(t *testing.T) {
	// a sheet without tax/shipping columns never asks for them
	required := []string{model.FieldPrice, model.FieldLeadTime}
	data := map[string]any{"target_row": 2, "price": 650.0, "delivery_time": "3天"}
	assert.Empty(t, missingFields(data, required))
}

func TestRenderCandidates(t *testing.T) {
	candidates := []model.CandidateRow{
		{Row: 2, Name: "气缸", Brand: "FESTO", Model: "CPE14"},
		{Row: 3, Name: "气缸", Brand: "SMC"},
		{Row: 4, Name: "电磁阀", Spec: "三通"},
		{Row: 5, Name: "第四个不展示"},
	}
	tip := renderCandidates(candidates)
	assert.Contains(t, tip, "行2: 气缸 | 品牌:FESTO | 型号:CPE14")
	assert.Contains(t, tip, "行4: 电磁阀 | 规格:三通")
	assert.NotContains(t, tip, "行5")

	assert.Equal(t, "存在多个候选行", renderCandidates(nil))
}

func TestLastLocateCandidates(t *testing.T) {
	toolResults := []map[string]any{
		{"ok": true, "tool": "supplier_lookup", "result": map[string]any{}},
		{"ok": false, "tool": "locate_row", "error": "boom"},
		{"ok": true, "tool": "locate_row", "result": map[string]any{
			"candidates": []model.CandidateRow{{Row: 2}, {Row: 3}},
			"ambiguous":  true,
		}},
	}
	candidates, ambiguous, found := lastLocateCandidates(toolResults)
	require.True(t, found)
	assert.True(t, ambiguous)
	assert.Len(t, candidates, 2)

	_, _, found = lastLocateCandidates(nil)
	assert.False(t, found)
}

func TestFormatRows(t *testing.T) {
	assert.Equal(t, "2, 3", formatRows([]int{2, 3}))

	many := make([]int, 15)
	for i := range many {
		many[i] = i + 2
	}
	assert.Len(t, strings.Split(formatRows(many), ", "), maxRowsInWriteReply)
}
