package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d.\-]`)

// ParseDecimal parses price-like cell text: "650", "1,234.50", "￥650",
// "650元" and NBSP-padded variants. Returns ok=false for anything that
// does not hold a single decimal number.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// drop regular and non-breaking spaces plus common currency marks
	repl := strings.NewReplacer(" ", "", " ", "", " ", "", "\t", "",
		"￥", "", "¥", "", "元", "", "$", "")
	s = repl.Replace(s)
	// commas are thousands separators in quote sheets
	s = strings.ReplaceAll(s, ",", "")
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
