package handler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"quote-service/internal/quote/agent"
	"quote-service/internal/quote/engine"
	"quote-service/internal/quote/model"
	"quote-service/internal/quote/schema"
)

// buildBundle precomputes the context injected into both agent prompts so
// the oracle can match quotes to rows without extra tool round-trips.
func buildBundle(grid [][]any, s *schema.Schema, message string, fuzzyThreshold float64) agent.Context {
	relevant, brandCtx := relevantRows(grid, s, message, fuzzyThreshold)
	return agent.Context{
		SheetStateSummary:   sheetStateSummary(grid, s),
		PendingItemsSummary: pendingSummary(grid, s),
		HeadersPreviewJSON:  marshalJSON(headersPreview(s)),
		WritableFieldsJSON:  marshalJSON(s.WritableFields(3)),
		RequiredFieldsJSON:  marshalJSON(s.RequiredFields()),
		BrandContext:        brandCtx,
		RelevantRowsJSON:    marshalJSON(relevant),
		TotalRelevantRows:   len(relevant),
	}
}

func headersPreview(s *schema.Schema) []string {
	out := make([]string, 0, 40)
	for i, h := range s.Headers {
		if i >= 40 {
			break
		}
		out = append(out, schema.CellText(h))
	}
	return out
}

// sheetStateSummary renders slot count, per-brand quote progress and a
// bounded row detail list, e.g. "行2: 气缸 | 品牌:FESTO | 已询:1/3".
func sheetStateSummary(grid [][]any, s *schema.Schema) string {
	if len(grid) < 2 {
		return "空"
	}
	slotNums := s.SlotNumbers()
	if len(slotNums) == 0 {
		slotNums = []int{1}
	}

	type brandStat struct {
		items, got, total int
	}
	perBrand := map[string]*brandStat{}
	var detail []string

	for i := 1; i < len(grid); i++ {
		row := grid[i]
		rowNum := i + 1
		name := cellString(row, s.ItemCols.Name)
		brand := cellString(row, s.ItemCols.Brand)
		mdl := cellString(row, s.ItemCols.Model)
		if name == "" && brand == "" && mdl == "" {
			continue
		}

		got := 0
		for _, n := range slotNums {
			if _, ok := engine.OfferPrice(engine.SlotValues(row, s, n)); ok {
				got++
			}
		}

		bkey := brand
		if bkey == "" {
			bkey = "未填品牌"
		}
		stat := perBrand[bkey]
		if stat == nil {
			stat = &brandStat{}
			perBrand[bkey] = stat
		}
		stat.items++
		stat.got += got
		stat.total += len(slotNums)

		if len(detail) < 12 {
			base := fmt.Sprintf("行%d: %s", rowNum, orText(name, "未填名称"))
			if brand != "" {
				base += " | 品牌:" + brand
			}
			if mdl != "" {
				base += " | 型号:" + mdl
			}
			base += fmt.Sprintf(" | 已询:%d/%d", got, len(slotNums))
			detail = append(detail, base)
		}
	}

	brands := make([]string, 0, len(perBrand))
	for b := range perBrand {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if perBrand[brands[i]].items != perBrand[brands[j]].items {
			return perBrand[brands[i]].items > perBrand[brands[j]].items
		}
		return brands[i] < brands[j]
	})
	var brandParts []string
	for _, b := range brands {
		if len(brandParts) >= 6 {
			break
		}
		stat := perBrand[b]
		brandParts = append(brandParts, fmt.Sprintf("%s %d项 已询%d/%d", b, stat.items, stat.got, stat.total))
	}

	return fmt.Sprintf("槽位数:%d | 品牌汇总:%s | 明细:%s",
		len(slotNums), orText(strings.Join(brandParts, "；"), "无"), orText(strings.Join(detail, "；"), "无"))
}

// pendingSummary lists the first few inquiry items as "行N: name (spec)".
func pendingSummary(grid [][]any, s *schema.Schema) string {
	if len(grid) < 2 {
		return "空"
	}
	var parts []string
	for i := 1; i < len(grid) && i+1 <= 8; i++ {
		row := grid[i]
		name := cellString(row, s.ItemCols.Name)
		spec := cellString(row, s.ItemCols.Spec)
		if name == "" && spec == "" {
			continue
		}
		if spec != "" {
			parts = append(parts, fmt.Sprintf("行%d: %s (%s)", i+1, name, spec))
		} else {
			parts = append(parts, fmt.Sprintf("行%d: %s", i+1, name))
		}
	}
	if len(parts) == 0 {
		return "空"
	}
	return strings.Join(parts, "; ")
}

// relevantRows fuzzy-matches message tokens against the sheet so typos
// and partial part numbers still surface the right rows. When a token
// equals a brand present in the sheet, matching narrows to that brand and
// the brand is reported back as context.
func relevantRows(grid [][]any, s *schema.Schema, message string, threshold float64) ([]model.CandidateRow, string) {
	brands := sheetBrands(grid, s)
	brandFilter := ""
	for _, tok := range strings.Fields(message) {
		for _, b := range brands {
			if strings.EqualFold(schema.NormalizeHeader(tok), schema.NormalizeHeader(b)) {
				brandFilter = b
				break
			}
		}
		if brandFilter != "" {
			break
		}
	}

	best := map[int]model.CandidateRow{}
	for _, tok := range strings.Fields(message) {
		if len([]rune(tok)) < 3 {
			continue
		}
		for _, c := range schema.FuzzyMatch(grid, tok, brandFilter, threshold, 5) {
			if prev, ok := best[c.Row]; !ok || c.Score > prev.Score {
				best[c.Row] = c
			}
		}
	}

	// keyword hits on the whole message catch rows the per-token fuzzy
	// pass missed (multi-word item names)
	for _, rowNum := range schema.FindCandidateRows(grid, message, 3) {
		if _, ok := best[rowNum]; ok {
			continue
		}
		row := grid[rowNum-1]
		best[rowNum] = model.CandidateRow{
			Row:        rowNum,
			MatchField: "关键词",
			Name:       schema.CellValue(cellAny(row, s.ItemCols.Name)),
			Brand:      schema.CellValue(cellAny(row, s.ItemCols.Brand)),
			Model:      schema.CellValue(cellAny(row, s.ItemCols.Model)),
			Spec:       schema.CellValue(cellAny(row, s.ItemCols.Spec)),
		}
	}

	out := make([]model.CandidateRow, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Row < out[j].Row
	})
	if len(out) > 10 {
		out = out[:10]
	}

	brandCtx := "未识别到品牌"
	if brandFilter != "" {
		brandCtx = fmt.Sprintf("检测到品牌 %s，相关产品列表已按该品牌过滤", brandFilter)
	}
	return out, brandCtx
}

func sheetBrands(grid [][]any, s *schema.Schema) []string {
	seen := map[string]string{}
	for i := 1; i < len(grid); i++ {
		b := cellString(grid[i], s.ItemCols.Brand)
		if b == "" {
			continue
		}
		key := schema.NormalizeHeader(b)
		if _, ok := seen[key]; !ok {
			seen[key] = b
		}
	}
	out := make([]string, 0, len(seen))
	for _, b := range seen {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func cellAny(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func cellString(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	t := strings.TrimSpace(schema.CellText(row[idx]))
	if strings.EqualFold(t, "none") {
		return ""
	}
	return t
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
