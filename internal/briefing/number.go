package briefing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	equalsResultRe = regexp.MustCompile(`=\s*([0-9,]+)`)
	multiplyRe     = regexp.MustCompile(`([0-9,.]+)\s*\*\s*([0-9,.]+)`)
	nonNumericRe   = regexp.MustCompile(`[^0-9.\-]`)
	anyDigitsRe    = regexp.MustCompile(`\d+`)
	percentRe      = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseNumber extracts a numeric amount from free text. An "=result"
// suffix wins over an A*B product, which wins over stripping currency
// symbols and separators from the raw text.
func ParseNumber(value string) (float64, bool) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return 0, false
	}

	if m := equalsResultRe.FindStringSubmatch(clean); m != nil {
		if n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			return n, true
		}
	}

	if m := multiplyRe.FindStringSubmatch(clean); m != nil {
		left, errL := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		right, errR := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if errL == nil && errR == nil {
			return left * right, true
		}
	}

	normalized := nonNumericRe.ReplaceAllString(clean, "")
	if normalized == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseNumberPtr is ParseNumber returning nil on failure.
func ParseNumberPtr(value string) *float64 {
	if n, ok := ParseNumber(value); ok {
		return &n
	}
	return nil
}

// ParseInt extracts an integer amount, truncating any fraction.
func ParseInt(value string) (int, bool) {
	n, ok := ParseNumber(value)
	if !ok {
		return 0, false
	}
	return int(n), true
}

var hanYears = []struct {
	han   string
	years int
}{
	{"一", 1},
	{"二", 2},
	{"兩", 2},
	{"三", 3},
	{"四", 4},
	{"五", 5},
}

// ParseContractYears reads a contract duration. Digits win; Chinese
// numerals up to five are accepted.
func ParseContractYears(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	if m := anyDigitsRe.FindString(value); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return n, true
		}
	}
	for _, entry := range hanYears {
		if strings.Contains(value, entry.han) {
			return entry.years, true
		}
	}
	return 0, false
}

// NormalizeCurrency folds common spellings onto ISO-style codes.
func NormalizeCurrency(value string) string {
	if value == "" {
		return ""
	}
	lowered := strings.ToLower(value)
	if strings.Contains(value, "澳") || strings.Contains(lowered, "mop") {
		return "MOP"
	}
	if strings.Contains(lowered, "hkd") || strings.Contains(value, "港") {
		return "HKD"
	}
	return strings.TrimSpace(value)
}

var paymentKeywordCodes = []struct {
	keyword string
	code    string
}{
	{"信用卡分期", "02"},
	{"一次性全繳", "01"},
	{"一次性", "01"},
	{"全繳", "01"},
	{"季度收費", "04"},
	{"季度", "04"},
	{"年度收費", "05"},
	{"年度", "05"},
	{"試用", "06"},
	{"每月收費", "07"},
	{"月費", "07"},
	{"銀行卡自動轉賬", "03"},
	{"自動轉賬", "03"},
	{"自動扣款", "03"},
}

var twoDigitAnywhereRe = regexp.MustCompile(`\d{2}`)

// NormalizePaymentCode extracts a two-digit payment code from free
// text. Multi-option values separated by / or 、 take the first option.
func NormalizePaymentCode(value string) string {
	clean := NormalizePlaceholder(value)
	if clean == "" {
		return ""
	}

	if strings.ContainsAny(clean, "/、") {
		for _, part := range strings.FieldsFunc(clean, func(r rune) bool {
			return r == '/' || r == '、'
		}) {
			if p := strings.TrimSpace(part); p != "" {
				clean = p
				break
			}
		}
	}

	if m := twoDigitAnywhereRe.FindString(clean); m != "" {
		return m
	}

	for _, entry := range paymentKeywordCodes {
		if strings.Contains(clean, entry.keyword) {
			return entry.code
		}
	}
	return clean
}

// NormalizePercentage pulls the numeric part out of a win-rate value.
func NormalizePercentage(value string) string {
	if value == "" {
		return ""
	}
	if m := percentRe.FindString(value); m != "" {
		return m
	}
	return strings.TrimSpace(value)
}
