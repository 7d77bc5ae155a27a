package briefing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqua-crm/internal/common/logger"
)

func newTestEngine() *Engine {
	engine := NewEngine(DefaultOptions(), logger.NewNop())
	engine.Now = func() time.Time { return testNow }
	return engine
}

func TestParseCustomer_FullBriefing(t *testing.T) {
	engine := newTestEngine()

	text := "客戶名稱：美好餐廳 C1001\n" +
		"聯繫電話：66881234\n" +
		"聯絡地址：澳門殷皇子大馬路33號\n" +
		"目前付費方式：月付\n" +
		"使用方式：租\n" +
		"月費金額：288\n" +
		"按金：500\n" +
		"預繳金：--\n" +
		"安裝內容：RO900S\n" +
		"安裝時間：2026年9月1日\n" +
		"客戶分類：商用客戶\n" +
		"備註：週末安裝\n" +
		"請盡快聯絡\n" +
		"銷售：james"

	result, err := engine.ParseCustomer(text, true)
	require.NoError(t, err)
	require.NotNil(t, result)

	customer := result.Customer
	assert.Equal(t, "C1001", customer.CustomerCode)
	assert.Equal(t, "美好餐廳", customer.BaseName)
	assert.Equal(t, "C1001美好餐廳66881234", customer.DisplayName)
	assert.Equal(t, "C1001美好餐廳", customer.ShortName)
	assert.Equal(t, "66881234", customer.ContactTel)
	assert.Equal(t, "聯絡人", customer.ContactName)
	assert.Equal(t, "澳門殷皇子大馬路33號", customer.Address)

	require.NotNil(t, customer.PaymentMethod)
	assert.Equal(t, "07", customer.PaymentMethod.ID)
	assert.Equal(t, "每月收費", customer.PaymentLabel)

	require.NotNil(t, customer.UsageMode)
	assert.Equal(t, "租", customer.UsageLabel)

	require.NotNil(t, customer.SaleArea)
	assert.Equal(t, "澳門島", customer.SaleArea.Label)

	require.NotNil(t, customer.CustomerClass)
	assert.Equal(t, "商用客戶", customer.CustomerClass.Label)

	require.NotNil(t, customer.MonthlyFee)
	assert.InDelta(t, 288, *customer.MonthlyFee, 0.001)
	require.NotNil(t, customer.Deposit)
	assert.InDelta(t, 500, *customer.Deposit, 0.001)
	assert.Nil(t, customer.Prepay)

	assert.Equal(t, "RO900S", customer.InstallContent)
	require.NotNil(t, customer.InstallTime)
	assert.Equal(t, "2026-09-01 00:00", customer.InstallTime.Display)

	assert.Equal(t, "週末安裝\n請盡快聯絡", customer.Remark)

	assert.Equal(t, "james", customer.OwnerHint)
	assert.Equal(t, "James", customer.Owner.Name)

	require.NotNil(t, customer.CustomerIndustry)
	assert.Equal(t, "1580721825339932673", customer.CustomerIndustry.ID)
	assert.Equal(t, "每月收費", customer.CustomerIndustry.Label)

	assert.Empty(t, result.Warnings)
}

func TestParseCustomer_Deterministic(t *testing.T) {
	engine := newTestEngine()
	text := "客戶名稱：美好餐廳 C1001\n聯繫電話：66881234\n月費金額：288"

	first, err := engine.ParseCustomer(text, true)
	require.NoError(t, err)
	second, err := engine.ParseCustomer(text, true)
	require.NoError(t, err)

	assert.Equal(t, first.Customer, second.Customer)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestParseCustomer_DefaultsAndWarnings(t *testing.T) {
	engine := newTestEngine()

	text := "客戶名稱：小明\n" +
		"客戶分類：神秘會員\n" +
		"付款方式：看心情"

	result, err := engine.ParseCustomer(text, true)
	require.NoError(t, err)

	customer := result.Customer
	assert.True(t, strings.HasPrefix(customer.CustomerCode, "C"))

	require.NotNil(t, customer.CustomerClass)
	assert.Equal(t, "商用客戶", customer.CustomerClass.Label)
	require.NotNil(t, customer.PaymentMethod)
	assert.Equal(t, "01", customer.PaymentMethod.ID)

	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "未偵測到客戶編碼，已自動生成")
	assert.Contains(t, joined, "未偵測到聯繫電話")
	assert.Contains(t, joined, "無法識別的客戶分類：神秘會員")
	assert.Contains(t, joined, "無法識別的付款方式：看心情")
}

func TestParseCustomer_NoAutoCode(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.ParseCustomer("客戶名稱：小明", false)
	require.NoError(t, err)

	assert.Equal(t, "", result.Customer.CustomerCode)
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "未偵測到客戶編碼")
}

func TestParseCustomer_EmptyText(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.ParseCustomer("   \n  ", true)
	assert.Error(t, err)
}

func TestParseCustomer_CodeFromAnywhereInText(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.ParseCustomer("客戶名稱：美好餐廳\n備註：舊編碼 c2044", true)
	require.NoError(t, err)

	assert.Equal(t, "C2044", result.Customer.CustomerCode)
	assert.Equal(t, "美好餐廳", result.Customer.BaseName)
}

func TestGenerateCustomerCode(t *testing.T) {
	engine := newTestEngine()

	t.Run("with base keeps prefix", func(t *testing.T) {
		assert.Equal(t, "C1008251430", engine.GenerateCustomerCode("C1001"))
	})

	t.Run("short base kept whole", func(t *testing.T) {
		assert.Equal(t, "C108251430", engine.GenerateCustomerCode("C1"))
	})

	t.Run("fresh code", func(t *testing.T) {
		code := engine.GenerateCustomerCode("")
		assert.True(t, strings.HasPrefix(code, "C260825"))
		assert.Len(t, code, 11)
		assert.Equal(t, strings.ToUpper(code), code)
	})
}
