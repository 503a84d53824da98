package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"650", 650, true},
		{"650.5", 650.5, true},
		{"1,234.50", 1234.5, true},
		{"1,234", 1234, true},
		{"￥650", 650, true},
		{"¥650", 650, true},
		{"650元", 650, true},
		{"$12.3", 12.3, true},
		{"-5", -5, true},
		{" 6 50 ", 650, true},
		{"", 0, false},
		{"面议", 0, false},
		{"-", 0, false},
		{".", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDecimal(c.in)
		require.Equal(t, c.ok, ok, "input %q", c.in)
		if ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}
