package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 30*time.Second, cfg.CRM.Timeout)
	assert.Equal(t, 60*time.Second, cfg.CRM.TokenMargin)
	assert.NotEmpty(t, cfg.CRM.BaseURL)
	assert.NotEmpty(t, cfg.CRM.AuthURL)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	sub := cfg.Submission
	assert.Equal(t, "auto_crm", sub.SystemSource)
	assert.Equal(t, "客服003", sub.ServiceOwnerName)
	assert.Equal(t, "客服部", sub.ServiceDeptName)
	assert.Equal(t, "99", sub.DefaultPaymentWay)
	assert.Equal(t, "AUTO", sub.SearchCodePrefix)
	assert.Equal(t, "1580721825339932673", sub.CustomerIndustryID)
	assert.Equal(t, "merchantAppliedDetail!payway", sub.PaymentField)
	assert.False(t, sub.CreateOpportunity)
	assert.False(t, sub.AttachContactRecords)
	assert.Equal(t, time.Hour, sub.Session.TTL)

	oppt := sub.Opportunity
	assert.Equal(t, "sfa_opptcard", oppt.MainBillNum)
	assert.Equal(t, "MOP", oppt.Currency)
	assert.Equal(t, "1587859872035110919", oppt.StageRentID)
	assert.Equal(t, "1476791442110679300", oppt.StageBuyID)
	assert.Equal(t, 2, oppt.ContractDefaultYears)
	assert.Equal(t, 3, oppt.ContractExtendedYears)
	assert.Equal(t, []string{"HS990", "HM190", "HM290"}, oppt.ContractKeywords)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAQUA_SERVER_PORT", "9090")
	t.Setenv("MAQUA_SUBMISSION_DEFAULT_PAYMENT_WAY", "01")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "01", cfg.Submission.DefaultPaymentWay)
}
