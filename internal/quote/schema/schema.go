package schema

import (
	"sort"
	"strconv"
	"strings"

	"quote-service/internal/quote/model"
)

const (
	// BasicColCount is the fixed count of base item columns ahead of the
	// first slot block (序号/物品名称/规格/数量/单位/品牌 in some order).
	BasicColCount = 5
	// SlotSize is the fixed width of one supplier-offer block.
	SlotSize = 7
)

// Synonym lists for base item columns, in priority order.
var (
	itemNameSynonyms  = []string{"物料名称", "物品名称", "品名", "名称", "物料", "产品名称", "材料名称"}
	itemSpecSynonyms  = []string{"规格", "规格型号", "型号", "规格/型号", "规格型号/型号"}
	itemBrandSynonyms = []string{"品牌", "牌", "品牌名称"}
	itemModelSynonyms = []string{"产品型号", "型号", "物料型号", "规格型号", "产品编码", "物料编码", "料号", "型号/编码", "规格型号/编码"}
)

// ItemColumns maps semantic roles to column indices; -1 means absent.
type ItemColumns struct {
	Name  int
	Spec  int
	Brand int
	Model int
}

// Schema is a derived, read-only view of a sheet's column layout.
// Slot numbers are contiguous starting at 1; zero slots means the sheet
// has no writable pricing columns.
type Schema struct {
	Headers  []any
	ItemCols ItemColumns
	Slots    map[int]map[string]int
}

// Build infers the schema from a raw grid. Row 0 is the header row; a
// grid without one yields an empty schema. Slot blocks are positional:
// after the base columns every full block of SlotSize columns is one
// slot, fields assigned in model.SlotFields order. Slot headers like
// 单价1/单价2 are not unique, so position is the only robust anchor.
func Build(grid [][]any) *Schema {
	s := &Schema{
		ItemCols: ItemColumns{Name: -1, Spec: -1, Brand: -1, Model: -1},
		Slots:    map[int]map[string]int{},
	}
	if len(grid) == 0 {
		return s
	}
	s.Headers = grid[0]

	base := s.Headers
	if len(base) > BasicColCount {
		base = base[:BasicColCount]
	}
	s.ItemCols = ItemColumns{
		Name:  bestHeaderIndex(base, itemNameSynonyms),
		Spec:  bestHeaderIndex(base, itemSpecSynonyms),
		Brand: bestHeaderIndex(base, itemBrandSynonyms),
		Model: bestHeaderIndex(base, itemModelSynonyms),
	}

	slotNum := 1
	for col := BasicColCount; col+SlotSize <= len(s.Headers); col += SlotSize {
		m := make(map[string]int, SlotSize)
		for i, field := range model.SlotFields {
			m[field] = col + i
		}
		s.Slots[slotNum] = m
		slotNum++
	}
	return s
}

// bestHeaderIndex finds the first column whose normalized header matches
// one of the candidates: exact match wins over substring containment
// (either direction), ties broken by synonym priority then leftmost column.
func bestHeaderIndex(headers []any, candidates []string) int {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = NormalizeHeader(h)
	}
	for _, c := range candidates {
		cn := NormalizeHeader(c)
		for i, h := range norm {
			if h != "" && h == cn {
				return i
			}
		}
	}
	for _, c := range candidates {
		cn := NormalizeHeader(c)
		if cn == "" {
			continue
		}
		for i, h := range norm {
			if h == "" {
				continue
			}
			if strings.Contains(cn, h) || strings.Contains(h, cn) {
				return i
			}
		}
	}
	return -1
}

// SlotNumbers returns the detected slot numbers in ascending order.
func (s *Schema) SlotNumbers() []int {
	out := make([]int, 0, len(s.Slots))
	for n := range s.Slots {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Capacity is the number of offers a row can hold.
func (s *Schema) Capacity() int { return len(s.Slots) }

// SlotIndex resolves a slot field to its column index, -1 if unknown.
func (s *Schema) SlotIndex(slotNum int, field string) int {
	slot, ok := s.Slots[slotNum]
	if !ok {
		return -1
	}
	idx, ok := slot[field]
	if !ok {
		return -1
	}
	return idx
}

// HasPriceColumn reports whether any slot carries a price column;
// without one, quote resolution is disabled for the sheet.
func (s *Schema) HasPriceColumn() bool {
	for _, slot := range s.Slots {
		if _, ok := slot[model.FieldPrice]; ok {
			return true
		}
	}
	return false
}

// WritableFields maps slot number -> canonical field -> verbatim header
// text, for oracle consumption.
func (s *Schema) WritableFields(maxSlots int) map[string]map[string]string {
	out := map[string]map[string]string{}
	for i, n := range s.SlotNumbers() {
		if i >= maxSlots {
			break
		}
		m := map[string]string{}
		for field, idx := range s.Slots[n] {
			if idx >= 0 && idx < len(s.Headers) {
				m[field] = CellText(s.Headers[idx])
			}
		}
		out[strconv.Itoa(n)] = m
	}
	return out
}

// RequiredFields derives the mandatory quote fields from the first slot's
// field set, so validation messages never name columns the sheet lacks.
func (s *Schema) RequiredFields() []string {
	all := []string{model.FieldPrice, model.FieldTax, model.FieldShipping, model.FieldLeadTime}
	nums := s.SlotNumbers()
	if len(nums) == 0 {
		return all
	}
	first := s.Slots[nums[0]]
	out := make([]string, 0, len(all))
	for _, f := range all {
		if _, ok := first[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
