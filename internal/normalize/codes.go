package normalize

import "strings"

// RevenueCode trims and uppercases a procedure code and zero-pads
// 3-digit numeric revenue codes to the canonical 4-digit form the
// billing-code reference uses ("110" becomes "0110").
func RevenueCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	if len(s) == 3 && isDigits(s) {
		return "0" + s
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Remark trims and uppercases a free-text remark for matching against
// the configured remark sets.
func Remark(remark string) string {
	return strings.ToUpper(strings.TrimSpace(remark))
}
