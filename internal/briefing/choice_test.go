package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func paymentResolver() *Resolver {
	opts := DefaultOptions()
	return NewResolver(opts.PaymentMethods, opts.PaymentAliases)
}

func TestResolver_Resolve(t *testing.T) {
	r := paymentResolver()

	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"two digit id", "02", "信用卡分期", true},
		{"unknown two digit id", "99", "", false},
		{"exact key", "季度收費", "季度收費", true},
		{"key with spaces", " 季度 收費 ", "季度收費", true},
		{"exact alias", "月付", "每月收費", true},
		{"alias inside sentence", "客戶想要自動扣款比較方便", "銀行卡自動轉賬", true},
		{"key inside sentence", "想用季度收費的方式", "季度收費", true},
		{"parenthetical wins", "之前月付（這次試試一次性全繳）", "一次性全繳", true},
		{"full width parens", "（季度收費）", "季度收費", true},
		{"no match", "看心情", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolver_Deterministic(t *testing.T) {
	r := paymentResolver()

	first, ok := r.Resolve("每月付款")
	assert.True(t, ok)
	for i := 0; i < 50; i++ {
		got, ok := r.Resolve("每月付款")
		assert.True(t, ok)
		assert.Equal(t, first, got)
	}
}

func TestResolver_IgnoresAliasesForUnknownKeys(t *testing.T) {
	r := NewResolver(
		[]Option{{Key: "租", Label: "租", ID: "R1"}},
		map[string]string{"租用": "租", "買斷": "買"},
	)

	got, ok := r.Resolve("租用")
	assert.True(t, ok)
	assert.Equal(t, "租", got)

	_, ok = r.Resolve("買斷")
	assert.False(t, ok)
}

func TestResolver_Option(t *testing.T) {
	r := paymentResolver()

	opt, ok := r.Option("每月收費")
	assert.True(t, ok)
	assert.Equal(t, "07", opt.ID)

	_, ok = r.Option("不存在")
	assert.False(t, ok)
}
