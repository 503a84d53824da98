package handler

import (
	"fmt"
	"strings"

	"quote-service/internal/quote/model"
	"quote-service/internal/quote/schema"
)

const (
	maxHistoryMessages  = 12
	maxCharsPerMessage  = 1200
	maxUpdatesPerBatch  = 50
	maxCandidatesInTip  = 3
	maxRowsInWriteReply = 10
)

// trimHistory keeps the most recent user/assistant turns, each capped in
// length, so prompt size stays bounded on long conversations.
func trimHistory(history []model.ChatMessage) []model.ChatMessage {
	var items []model.ChatMessage
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		c := strings.TrimSpace(m.Content)
		if c == "" {
			continue
		}
		if r := []rune(c); len(r) > maxCharsPerMessage {
			c = string(r[:maxCharsPerMessage])
		}
		items = append(items, model.ChatMessage{Role: m.Role, Content: c})
	}
	if len(items) > maxHistoryMessages {
		items = items[len(items)-maxHistoryMessages:]
	}
	return items
}

// missingFields validates a raw WRITE payload against the sheet's
// required quote fields. Price zero is a valid quote; tax and shipping
// only need to be present, explicit null included.
func missingFields(data map[string]any, required []string) []string {
	req := map[string]struct{}{}
	for _, f := range required {
		req[f] = struct{}{}
	}

	var missing []string
	if _, ok := req[model.FieldPrice]; ok {
		if !hasValue(data, "price") {
			missing = append(missing, model.FieldPrice)
		}
	}
	if _, ok := req[model.FieldTax]; ok {
		if _, present := data["tax"]; !present {
			missing = append(missing, model.FieldTax)
		}
	}
	if _, ok := req[model.FieldShipping]; ok {
		if _, present := data["shipping"]; !present {
			missing = append(missing, model.FieldShipping)
		}
	}
	if _, ok := req[model.FieldLeadTime]; ok {
		if model.CoerceString(data["delivery_time"]) == "" {
			missing = append(missing, model.FieldLeadTime)
		}
	}
	if model.CoerceInt(data["target_row"]) == 0 {
		missing = append(missing, "行号/物料名称")
	}
	return missing
}

// mergeMissing accumulates missing-field names across skipped batch
// items without repeating them.
func mergeMissing(acc, missing []string) []string {
	for _, f := range missing {
		dup := false
		for _, have := range acc {
			if have == f {
				dup = true
				break
			}
		}
		if !dup {
			acc = append(acc, f)
		}
	}
	return acc
}

func hasValue(data map[string]any, key string) bool {
	v, present := data[key]
	if !present || v == nil {
		return false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	if _, ok := model.CoerceFloat(v); key == "price" && !ok {
		return false
	}
	return true
}

// renderCandidates formats locator hits for a disambiguation question.
func renderCandidates(candidates []model.CandidateRow) string {
	var lines []string
	for _, c := range candidates {
		if len(lines) >= maxCandidatesInTip {
			break
		}
		text := fmt.Sprintf("行%d: %s", c.Row, schema.CellText(c.Name))
		if b := schema.CellText(c.Brand); b != "" {
			text += " | 品牌:" + b
		}
		if m := schema.CellText(c.Model); m != "" {
			text += " | 型号:" + m
		}
		if sp := schema.CellText(c.Spec); sp != "" {
			text += " | 规格:" + sp
		}
		lines = append(lines, text)
	}
	if len(lines) == 0 {
		return "存在多个候选行"
	}
	return strings.Join(lines, "；")
}

// lastLocateCandidates scans tool results newest-first for a successful
// row-locate call and returns its candidates with the ambiguity flag.
func lastLocateCandidates(toolResults []map[string]any) ([]model.CandidateRow, bool, bool) {
	for i := len(toolResults) - 1; i >= 0; i-- {
		tr := toolResults[i]
		okFlag, _ := tr["ok"].(bool)
		name, _ := tr["tool"].(string)
		if !okFlag || name != "locate_row" {
			continue
		}
		result, _ := tr["result"].(map[string]any)
		if result == nil {
			continue
		}
		candidates, _ := result["candidates"].([]model.CandidateRow)
		ambiguous, _ := result["ambiguous"].(bool)
		return candidates, ambiguous, true
	}
	return nil, false, false
}

func formatRows(rows []int) string {
	parts := make([]string, 0, len(rows))
	for i, r := range rows {
		if i >= maxRowsInWriteReply {
			break
		}
		parts = append(parts, fmt.Sprintf("%d", r))
	}
	return strings.Join(parts, ", ")
}
