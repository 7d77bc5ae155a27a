package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/catalog"
)

func testOpportunityContext() *briefing.OpportunityContext {
	fee := 288.0
	deposit := 500.0
	money := 6912.0
	return &briefing.OpportunityContext{
		Name:              "美好餐廳飲水方案",
		InstallLocation:   "澳門殷皇子大馬路33號",
		UsageLabel:        "租",
		PlanType:          "RO900S",
		MonthlyFee:        &fee,
		Deposit:           &deposit,
		ContractStartDate: "2026-09-01",
		ExpectSignDate:    "2026-09-01",
		ExpectSignMoney:   &money,
		Currency:          "MOP",
		PaymentCode:       "07",
		WinningRate:       "0",
		OpportunityDate:   "2026-08-25",
		CustomerName:      "美好餐廳",
		CustomerCode:      "C1001",
		ContactTel:        "66881234",
		SaleAreaID:        "1482639830460399618",
		OwnerID:           "1634633148216115210",
		OwnerName:         "James",
	}
}

func TestBuildOpportunityDuplicateRequest(t *testing.T) {
	cfg := testSubmissionConfig(t)
	ctx := testOpportunityContext()

	payload := BuildOpportunityDuplicateRequest(ctx, cfg)

	assert.Equal(t, cfg.SystemSource, payload["systemSource"])
	assert.Equal(t, "browse", payload["action"])
	assert.Equal(t, cfg.Opportunity.MainBillNum, payload["mainBillNum"])
	assert.Equal(t, cfg.Opportunity.MainBillNum, payload["billnum"])

	data := payload["data"].(Tree)
	assert.Equal(t, "美好餐廳飲水方案", data["name"])
	assert.Equal(t, "C1001", data["customer"])
	assert.Equal(t, "1634633148216115210", data["ower"])
	assert.Equal(t, "6912", data["expectSignMoney"])
	assert.Equal(t, "RO900S", data["description"])
}

func TestBuildOpportunityCreatePayload(t *testing.T) {
	cfg := testSubmissionConfig(t)
	ctx := testOpportunityContext()
	customer := &briefing.Customer{
		InstallContent: "RO900S",
		Address:        "澳門殷皇子大馬路33號",
	}
	params := OpportunityParams{
		Code:       "C100120260825143000",
		StageValue: cfg.Opportunity.StageBuyID,
		StageKind:  StageKindBuy,
		RawText:    "客戶名稱：美好餐廳 C1001",
		Now:        testNow,
	}

	payload := BuildOpportunityCreatePayload(ctx, customer, catalog.Default(), cfg, params)
	data := payload["data"].(Tree)

	assert.Equal(t, "C100120260825143000", data["code"])
	assert.Equal(t, "C100120260825143000", data["resubmitCheckKey"])
	assert.Equal(t, "澳門殷皇子大馬路33號", data["name"])
	assert.Equal(t, "C1001", data["customer"])
	assert.Equal(t, "C1001", data["settleCustomer"])
	assert.Equal(t, cfg.Opportunity.StageBuyID, data["opptStage"])
	assert.Equal(t, cfg.Opportunity.TransTypeID, data["opptTransType"])
	assert.Equal(t, "MOP", data["currency"])
	assert.Equal(t, "6912", data["expectSignMoney"])
	assert.Equal(t, cfg.Opportunity.SystemCode, data["systemCode"])

	// Contract years derive from the plan and fill the end date.
	assert.Equal(t, 2, data["contractYear"])
	assert.Equal(t, "2026-09-01", data["contractBeginDate"])
	assert.Equal(t, "2028-09-01", data["contractEndDate"])
	assert.Equal(t, "2028-09-01", ctx.ContractEndDate)

	headDef := data["headDef"].(Tree)
	assert.Equal(t, "租用", headDef["define8"])
	assert.Equal(t, "RO900S", headDef["define9"])
	assert.Equal(t, "288", headDef["define10"])
	assert.Equal(t, "500", headDef["define12"])
	assert.Equal(t, "2026-09-01", headDef["define17"])
	assert.Equal(t, "2028-09-01", headDef["define18"])
	assert.Equal(t, "2", headDef["define19"])
	assert.Equal(t, "客戶名稱：美好餐廳 C1001", headDef["define20"])

	opptChar := data["opptDefineCharacter"].(Tree)
	assert.Equal(t, "租用", opptChar["attrext8"])
	assert.Equal(t, "2026-09-01", opptChar["attrext2"])
	assert.Equal(t, "2028-09-01", opptChar["attrext3"])
	assert.Equal(t, 288.0, opptChar["attrext10"])
	assert.Equal(t, 500.0, opptChar["attrext17"])

	assert.Equal(t, cfg.CustomerIndustryID, data["industry"])
	assert.Equal(t, "每月收費", data["industry_name"])

	assert.Equal(t, cfg.Opportunity.StageBuyProcessID, data["process"])
	assert.Equal(t, cfg.Opportunity.StageBuyProcessStageID, data["processStage"])

	items := data["opptItemList"].([]interface{})
	require.Len(t, items, 2)

	membrane := items[0].(Tree)
	assert.Equal(t, "1351", membrane["productCode"])
	assert.Equal(t, "1351", membrane["product"])
	assert.Equal(t, "R-002高效抗污RO膜", membrane["productName"])
	membraneChar := membrane["opptItemDefineCharacter"].(Tree)
	assert.Equal(t, "2026-09-01", membraneChar["attrext11"])
	assert.Equal(t, 24, membraneChar["attrext12"])
	assert.Equal(t, "2028-09-01", membraneChar["attrext13"])
	membraneDef := membrane["bodyDef"].(Tree)
	assert.Equal(t, "2026-09-01", membraneDef["define1"])
	assert.Equal(t, 24, membraneDef["define2"])
	assert.Equal(t, "2028-09-01", membraneDef["define3"])

	filter := items[1].(Tree)
	assert.Equal(t, "1350", filter["productCode"])
	filterChar := filter["opptItemDefineCharacter"].(Tree)
	assert.Equal(t, 12, filterChar["attrext12"])
	assert.Equal(t, "2027-09-01", filterChar["attrext13"])
}

func TestBuildOpportunityCreatePayload_RentStage(t *testing.T) {
	cfg := testSubmissionConfig(t)
	ctx := testOpportunityContext()
	ctx.UsageLabel = "買"
	params := OpportunityParams{
		Code:       "C100120260825143000",
		StageValue: cfg.Opportunity.StageRentID,
		StageKind:  StageKindRent,
		Now:        testNow,
	}

	data := BuildOpportunityCreatePayload(ctx, nil, catalog.Default(), cfg, params)["data"].(Tree)

	assert.Equal(t, cfg.Opportunity.StageRentProcessID, data["process"])
	assert.Equal(t, cfg.Opportunity.StageRentProcessStageID, data["processStage"])
	assert.Equal(t, "買斷", data["headDef"].(Tree)["define8"])
}

func TestBuildOpportunityCreatePayload_FallbackItem(t *testing.T) {
	cfg := testSubmissionConfig(t)
	ctx := testOpportunityContext()
	ctx.PlanType = "神秘方案"

	params := OpportunityParams{Code: "X1", StageValue: "", StageKind: StageKindNone, Now: testNow}
	data := BuildOpportunityCreatePayload(ctx, nil, catalog.Default(), cfg, params)["data"].(Tree)

	items := data["opptItemList"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "神秘方案", items[0].(Tree)["productName"])
	assert.NotContains(t, items[0].(Tree), "productCode")

	// No stage means no process binding.
	assert.NotContains(t, data, "process")
	assert.NotContains(t, data, "processStage")
}

func TestDetermineContractYears(t *testing.T) {
	cfg := testSubmissionConfig(t).Opportunity

	assert.Equal(t, 2, DetermineContractYears("RO900S", cfg))
	assert.Equal(t, 3, DetermineContractYears("包含HS990機型", cfg))
	assert.Equal(t, 3, DetermineContractYears("hm190桌上型", cfg))
	assert.Equal(t, 2, DetermineContractYears("", cfg))
}

func TestGenerateOpportunityCode(t *testing.T) {
	assert.Equal(t, "C100120260825143000", GenerateOpportunityCode("C1001", testNow))
	assert.Equal(t, "OPPT20260825143000", GenerateOpportunityCode("", testNow))
	assert.Equal(t, "C12345" + "20260825143000", GenerateOpportunityCode("c1234567", testNow))
}

func TestPaymentLabelFromCode(t *testing.T) {
	assert.Equal(t, "每月收費", PaymentLabelFromCode("07"))
	assert.Equal(t, "一次性全繳", PaymentLabelFromCode("1"))
	assert.Equal(t, "", PaymentLabelFromCode("99"))
	assert.Equal(t, "", PaymentLabelFromCode(""))
}
