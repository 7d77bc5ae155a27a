package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"equals result wins", "288*24=6912", 6912, true},
		{"product of factors", "288*24", 6912, true},
		{"currency and separators stripped", "$1,234.50 元", 1234.5, true},
		{"thousands separator", "1,200", 1200, true},
		{"plain integer", "500", 500, true},
		{"equals with separator", "288*24=6,912", 6912, true},
		{"empty", "", 0, false},
		{"no digits", "月費", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 0.001)
			}
		})
	}
}

func TestParseNumberPtr(t *testing.T) {
	assert.Nil(t, ParseNumberPtr("--"))
	got := ParseNumberPtr("288")
	if assert.NotNil(t, got) {
		assert.InDelta(t, 288, *got, 0.001)
	}
}

func TestParseContractYears(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"2年", 2, true},
		{"3", 3, true},
		{"兩年", 2, true},
		{"三年", 3, true},
		{"一年", 1, true},
		{"沒有", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseContractYears(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"澳門幣", "MOP"},
		{"mop", "MOP"},
		{"港幣", "HKD"},
		{"HKD", "HKD"},
		{"USD", "USD"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeCurrency(tt.input), "input %q", tt.input)
	}
}

func TestNormalizePaymentCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"two digit passthrough", "02", "02"},
		{"digits inside text", "第07種", "07"},
		{"multi option takes first", "01/02", "01"},
		{"enumeration separator", "03、04", "03"},
		{"keyword quarterly", "季度收費", "04"},
		{"keyword monthly", "月費", "07"},
		{"keyword one-off", "一次性付清", "01"},
		{"placeholder folds", "--", ""},
		{"unknown kept verbatim", "看情況", "看情況"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePaymentCode(tt.input))
		})
	}
}

func TestNormalizePercentage(t *testing.T) {
	assert.Equal(t, "50", NormalizePercentage("50%"))
	assert.Equal(t, "87.5", NormalizePercentage("約87.5%"))
	assert.Equal(t, "", NormalizePercentage(""))
	assert.Equal(t, "高", NormalizePercentage("高"))
}
