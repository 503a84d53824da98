package engine

import (
	"fmt"
	"sort"
	"strings"

	"quote-service/internal/quote/model"
	"quote-service/internal/quote/schema"
	"quote-service/internal/utils"
)

// SlotValues reads one slot's offer from a row.
func SlotValues(row []any, s *schema.Schema, slotNum int) model.Offer {
	values := make(model.Offer, len(model.SlotFields))
	for _, field := range model.SlotFields {
		idx := s.SlotIndex(slotNum, field)
		if idx >= 0 && idx < len(row) {
			values[field] = row[idx]
		} else {
			values[field] = nil
		}
	}
	return values
}

func setSlotValues(grid [][]any, rowIdx int, s *schema.Schema, slotNum int, values model.Offer) {
	row := grid[rowIdx]
	for _, field := range model.SlotFields {
		idx := s.SlotIndex(slotNum, field)
		if idx < 0 {
			continue
		}
		for len(row) <= idx {
			row = append(row, nil)
		}
		row[idx] = values[field]
	}
	grid[rowIdx] = row
}

// OfferPrice extracts a slot's numeric price. ok=false means the slot is
// effectively empty: absent, blank or unparseable price.
func OfferPrice(o model.Offer) (float64, bool) {
	v := o[model.FieldPrice]
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		s := schema.CellText(v)
		if s == "" || strings.EqualFold(s, "none") {
			return 0, false
		}
		return utils.ParseDecimal(s)
	}
}

// ApplyUpdate merges one new offer into a row's price-sorted slot ranking
// and writes the result back, mutating and returning the grid. Out-of-range
// target rows no-op: range errors here come from oracle hallucination and
// must not crash the chat path.
//
// Unpriced slots are dropped before ranking, so offers always compact
// toward slot 1; slot position is not a stable identifier across updates.
func ApplyUpdate(grid [][]any, s *schema.Schema, act model.UpdateAction) [][]any {
	rowIdx := act.TargetRow - 1
	if rowIdx < 1 || rowIdx >= len(grid) {
		return grid
	}
	slotNumbers := s.SlotNumbers()
	if len(slotNumbers) == 0 {
		return grid
	}
	row := grid[rowIdx]

	rowModel := schema.CellText(schema.CellValue(cellAt(row, s.ItemCols.Model)))
	rowSpec := schema.CellText(schema.CellValue(cellAt(row, s.ItemCols.Spec)))
	rowBrand := schema.CellText(schema.CellValue(cellAt(row, s.ItemCols.Brand)))

	remarks := strings.TrimSpace(act.Remarks)
	if note := mismatchNote("型号不一致", act.QuotedModel, rowModel); note != "" {
		remarks = appendRemark(remarks, note)
	}
	if note := mismatchNote("规格不一致", act.QuotedSpec, rowSpec); note != "" {
		remarks = appendRemark(remarks, note)
	}

	offerBrand := strings.TrimSpace(act.OfferBrand)
	if offerBrand == "" {
		offerBrand = rowBrand
	}

	tax := "否"
	if act.Tax {
		tax = "是"
	}
	newOffer := model.Offer{
		model.FieldBrand:    orNil(offerBrand),
		model.FieldRemark:   orNil(remarks),
		model.FieldPrice:    act.Price,
		model.FieldTax:      tax,
		model.FieldShipping: act.Shipping.Cell(),
		model.FieldLeadTime: orNil(act.DeliveryTime),
		model.FieldSupplier: orNil(act.Supplier),
	}

	// collect currently priced offers, in (price, slot) order
	type ranked struct {
		price float64
		slot  int
		vals  model.Offer
	}
	var offers []ranked
	for _, n := range slotNumbers {
		vals := SlotValues(row, s, n)
		if p, ok := OfferPrice(vals); ok {
			offers = append(offers, ranked{price: p, slot: n, vals: vals})
		}
	}
	sort.SliceStable(offers, func(a, b int) bool {
		if offers[a].price != offers[b].price {
			return offers[a].price < offers[b].price
		}
		return offers[a].slot < offers[b].slot
	})

	out := make([]model.Offer, 0, len(offers)+1)
	inserted := false
	for _, o := range offers {
		if !inserted && act.Price < o.price {
			out = append(out, newOffer)
			inserted = true
		}
		out = append(out, o.vals)
	}
	if !inserted {
		out = append(out, newOffer)
	}
	if len(out) > len(slotNumbers) {
		out = out[:len(slotNumbers)] // worst-priced offer evicted
	}

	for i, n := range slotNumbers {
		if i < len(out) {
			setSlotValues(grid, rowIdx, s, n, out[i])
		} else {
			setSlotValues(grid, rowIdx, s, n, model.EmptyOffer())
		}
	}
	return grid
}

// mismatchNote renders the auto-remark for a quoted model/spec differing
// from the sheet's. Comparison is case-insensitive after normalization,
// so case-only variants stay silent.
func mismatchNote(label, quoted, inSheet string) string {
	quoted = strings.TrimSpace(quoted)
	if quoted == "" || inSheet == "" {
		return ""
	}
	if strings.EqualFold(schema.NormalizeHeader(quoted), schema.NormalizeHeader(inSheet)) {
		return ""
	}
	return fmt.Sprintf("%s: 报价(%s) 表内(%s)", label, quoted, inSheet)
}

// appendRemark appends a note unless it is already present.
func appendRemark(remarks, note string) string {
	if remarks == "" {
		return note
	}
	if strings.Contains(remarks, note) {
		return remarks
	}
	return remarks + "；" + note
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
