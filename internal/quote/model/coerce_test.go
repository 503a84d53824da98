package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceBool(t *testing.T) {
	affirmatives := []any{true, 1, 1.0, "yes", "Y", "是", "含税", "含运", "包邮", " 含税含运 "}
	for _, v := range affirmatives {
		got, ok := CoerceBool(v)
		require.True(t, ok, "input %v", v)
		assert.True(t, got, "input %v", v)
	}

	negatives := []any{false, 0, "no", "否", "不含税", "不含运"}
	for _, v := range negatives {
		got, ok := CoerceBool(v)
		require.True(t, ok, "input %v", v)
		assert.False(t, got, "input %v", v)
	}

	for _, v := range []any{nil, "也许", "满1000包邮", struct{}{}} {
		_, ok := CoerceBool(v)
		assert.False(t, ok, "input %v", v)
	}
}

func TestCoerceShipping(t *testing.T) {
	assert.Equal(t, "是", CoerceShipping("含运").Cell())
	assert.Equal(t, "否", CoerceShipping(false).Cell())
	assert.Equal(t, "否", CoerceShipping(nil).Cell())
	// unrecognized annotations survive verbatim
	assert.Equal(t, "满1000包邮", CoerceShipping("满1000包邮").Cell())
}

func TestCoerceNumbers(t *testing.T) {
	f, ok := CoerceFloat("650.5")
	require.True(t, ok)
	assert.Equal(t, 650.5, f)
	_, ok = CoerceFloat("面议")
	assert.False(t, ok)

	assert.Equal(t, 3, CoerceInt(3.0))
	assert.Equal(t, 3, CoerceInt(" 3 "))
	assert.Equal(t, 0, CoerceInt("abc"))
	assert.Equal(t, 0, CoerceInt(nil))
}

func TestDecodeUpdate(t *testing.T) {
	m := map[string]any{
		"target_row":    float64(2),
		"price":         "650元价格", // not a bare number: stays zero
		"tax":           "含税",
		"shipping":      nil,
		"delivery_time": " 3-5周 ",
		"quoted_model":  "CPE18",
		"hallucinated":  "dropped",
	}
	a := DecodeUpdate(m)

	assert.Equal(t, 2, a.TargetRow)
	assert.Equal(t, 0.0, a.Price)
	assert.True(t, a.Tax)
	assert.Equal(t, "否", a.Shipping.Cell())
	assert.Equal(t, "3-5周", a.DeliveryTime)
	assert.Equal(t, "CPE18", a.QuotedModel)
	assert.NotContains(t, m, "hallucinated")
}

func TestDecodeUpdateNumericPrice(t *testing.T) {
	a := DecodeUpdate(map[string]any{"target_row": 2, "price": 650.0})
	assert.Equal(t, 650.0, a.Price)
	assert.False(t, a.Tax)
}

func TestEmptyOffer(t *testing.T) {
	o := EmptyOffer()
	require.Len(t, o, len(SlotFields))
	for _, f := range SlotFields {
		v, present := o[f]
		assert.True(t, present)
		assert.Nil(t, v)
	}
}
