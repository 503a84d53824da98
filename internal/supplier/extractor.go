package supplier

import (
	"regexp"
	"strings"
)

// Info is the structured form of one free-text supplier cell, e.g.
// "苏州比高机电有限公司 张三 139-8888-6666". Phone is the unique key.
type Info struct {
	CompanyName  string
	ContactPhone string
	ContactName  string
	Tags         []string
}

var (
	mobileRe   = regexp.MustCompile(`1[3-9]\d{9}`)
	landlineRe = regexp.MustCompile(`0\d{2,3}[-\s]?\d{7,8}`)
	plainRe    = regexp.MustCompile(`\d{7,8}`)
	companyRe  = regexp.MustCompile(`[\p{Han}]+(?:公司|厂|中心|企业|集团|工厂|有限|股份)`)
	hanNameRe  = regexp.MustCompile(`[\p{Han}]{2,4}`)
)

// nonNames are generic business words that look like 2-4 character names.
var nonNames = map[string]struct{}{
	"有限": {}, "股份": {}, "责任": {}, "科技": {}, "贸易": {},
	"机电": {}, "设备": {}, "器材": {},
}

// Extract pulls company/contact/phone out of a supplier cell. A phone
// number is mandatory: without one there is no stable identity to
// persist, so Extract returns nil.
func Extract(supplierText, offerBrand string) *Info {
	text := strings.Join(strings.Fields(supplierText), " ")
	if text == "" {
		return nil
	}

	cleaned := strings.NewReplacer("-", "", " ", "", "(", "", ")", "").Replace(text)

	phone := mobileRe.FindString(cleaned)
	if phone == "" {
		if m := landlineRe.FindString(text); m != "" {
			phone = strings.ReplaceAll(m, " ", "")
		} else {
			phone = plainRe.FindString(cleaned)
		}
	}
	if phone == "" {
		return nil
	}

	company := companyRe.FindString(text)
	rest := text
	if company != "" {
		rest = strings.ReplaceAll(text, company, "")
	} else {
		company = "未知公司"
	}

	contact := ""
	for _, m := range hanNameRe.FindAllString(rest, -1) {
		if _, generic := nonNames[m]; !generic {
			contact = m
			break
		}
	}

	var tags []string
	if b := strings.TrimSpace(offerBrand); b != "" {
		tags = append(tags, b)
	}

	return &Info{
		CompanyName:  company,
		ContactPhone: phone,
		ContactName:  contact,
		Tags:         tags,
	}
}

// Cell renders the canonical single-cell supplier string.
func (i *Info) Cell() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{i.CompanyName, i.ContactName, i.ContactPhone} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
