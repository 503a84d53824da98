package schema

import (
	"strconv"

	"quote-service/internal/quote/model"
)

// RowSlotSnapshot is a per-slot view of one data row, shaped for tool
// results and prompt context.
type RowSlotSnapshot struct {
	Row   int                      `json:"row"`
	Name  any                      `json:"物品名称"`
	Brand any                      `json:"品牌"`
	Spec  any                      `json:"规格"`
	Model any                      `json:"型号"`
	Slots map[string]model.Offer `json:"slots"`
}

// SlotSnapshot reads up to maxSlots slot groups from one row, nil when
// the row is out of range.
func (s *Schema) SlotSnapshot(grid [][]any, rowNum, maxSlots int) *RowSlotSnapshot {
	if rowNum <= 0 || rowNum-1 >= len(grid) {
		return nil
	}
	row := grid[rowNum-1]

	out := &RowSlotSnapshot{
		Row:   rowNum,
		Name:  rawCell(row, s.ItemCols.Name),
		Brand: rawCell(row, s.ItemCols.Brand),
		Spec:  rawCell(row, s.ItemCols.Spec),
		Model: rawCell(row, s.ItemCols.Model),
		Slots: map[string]model.Offer{},
	}
	for i, n := range s.SlotNumbers() {
		if i >= maxSlots {
			break
		}
		values := make(model.Offer, len(model.SlotFields))
		for _, field := range model.SlotFields {
			values[field] = rawCell(row, s.SlotIndex(n, field))
		}
		out.Slots[strconv.Itoa(n)] = values
	}
	return out
}
