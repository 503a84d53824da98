package model

// Canonical slot fields, in column order within one 7-column block.
const (
	FieldBrand    = "品牌"
	FieldRemark   = "备注"
	FieldPrice    = "单价"
	FieldTax      = "含税"
	FieldShipping = "含运"
	FieldLeadTime = "货期"
	FieldSupplier = "供应商"
)

// SlotFields is the positional field order inside a slot block.
var SlotFields = []string{
	FieldBrand, FieldRemark, FieldPrice, FieldTax, FieldShipping, FieldLeadTime, FieldSupplier,
}

// Offer holds one slot's worth of cell values keyed by canonical field.
type Offer map[string]any

// EmptyOffer returns an all-nil offer used to clear a slot.
func EmptyOffer() Offer {
	o := make(Offer, len(SlotFields))
	for _, f := range SlotFields {
		o[f] = nil
	}
	return o
}

// CandidateRow is one scored hit from the row locator or fuzzy matcher.
// Row numbers are 1-based, data rows start at 2.
type CandidateRow struct {
	Row        int     `json:"row"`
	Score      float64 `json:"score"`
	MatchField string  `json:"match_field,omitempty"`
	Name       any     `json:"name"`
	Brand      any     `json:"brand"`
	Model      any     `json:"model"`
	Spec       any     `json:"spec"`
}

// LocateResult bundles locator candidates with the weak-query ambiguity flag.
type LocateResult struct {
	Candidates []CandidateRow `json:"candidates"`
	Ambiguous  bool           `json:"ambiguous"`
}

// Shipping is a boolean-or-annotation union: free text such as a
// conditional-free-shipping clause is preserved verbatim in the cell,
// otherwise the flag renders as 是/否.
type Shipping struct {
	Text string
	Yes  bool
}

// Cell renders the value written into the 含运 column.
func (s Shipping) Cell() string {
	if s.Text != "" {
		return s.Text
	}
	if s.Yes {
		return "是"
	}
	return "否"
}

// UpdateAction is one validated sheet mutation instruction.
type UpdateAction struct {
	TargetRow    int
	Price        float64
	Tax          bool
	Shipping     Shipping
	DeliveryTime string
	OfferBrand   string
	Supplier     string
	Remarks      string
	QuotedModel  string
	QuotedSpec   string

	LookupSupplier string
}

// updateKeys is the allow-list of recognized WRITE payload keys.
// Anything else coming back from the oracle is dropped, not passed through.
var updateKeys = map[string]struct{}{
	"target_row": {}, "price": {}, "tax": {}, "shipping": {},
	"delivery_time": {}, "offer_brand": {}, "supplier": {}, "remarks": {},
	"quoted_model": {}, "quoted_spec": {}, "lookup_supplier": {},
	"lookup_item": {}, "lookup_brand": {}, "lookup_model": {},
}

// DecodeUpdate builds an UpdateAction from a loose oracle payload,
// coercing natural-language boolean tokens. Presence checks for required
// fields are the caller's job and run against the raw map.
func DecodeUpdate(m map[string]any) UpdateAction {
	var a UpdateAction
	for k := range m {
		if _, ok := updateKeys[k]; !ok {
			delete(m, k)
		}
	}
	a.TargetRow = CoerceInt(m["target_row"])
	if p, ok := CoerceFloat(m["price"]); ok {
		a.Price = p
	}
	if b, ok := CoerceBool(m["tax"]); ok {
		a.Tax = b
	}
	a.Shipping = CoerceShipping(m["shipping"])
	a.DeliveryTime = CoerceString(m["delivery_time"])
	a.OfferBrand = CoerceString(m["offer_brand"])
	a.Supplier = CoerceString(m["supplier"])
	a.Remarks = CoerceString(m["remarks"])
	a.QuotedModel = CoerceString(m["quoted_model"])
	a.QuotedSpec = CoerceString(m["quoted_spec"])
	a.LookupSupplier = CoerceString(m["lookup_supplier"])
	return a
}

// ChatMessage is one prior conversation turn; only user/assistant roles count.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message          string        `json:"message"`
	CurrentSheetData [][]any       `json:"current_sheet_data"`
	ChatHistory      []ChatMessage `json:"chat_history"`
}

// ChatResponse is either an ASK (Content for the user) or a WRITE
// (Data echoes the applied updates, UpdatedSheet carries the mutated grid).
type ChatResponse struct {
	Action       string  `json:"action"`
	Content      string  `json:"content,omitempty"`
	Data         any     `json:"data,omitempty"`
	UpdatedSheet [][]any `json:"updated_sheet,omitempty"`
}
