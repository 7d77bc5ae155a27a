package payload

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/catalog"
	"maqua-crm/internal/common/config"
)

// StageKind names the stage bucket an opportunity falls into.
type StageKind string

const (
	StageKindNone StageKind = ""
	StageKindRent StageKind = "rent"
	StageKindBuy  StageKind = "buy"
)

// paymentCodeLabels maps two-digit payment codes back to display labels.
var paymentCodeLabels = map[string]string{
	"01": "一次性全繳",
	"02": "信用卡分期",
	"03": "銀行卡自動轉賬",
	"04": "季度收費",
	"05": "年度收費",
	"06": "試用",
	"07": "每月收費",
}

// PaymentLabelFromCode returns the display label for a payment code.
func PaymentLabelFromCode(code string) string {
	if code == "" {
		return ""
	}
	normalized := code
	if isDigits(normalized) && len(normalized) == 1 {
		normalized = "0" + normalized
	}
	return paymentCodeLabels[normalized]
}

// OpportunityParams carries the values the submission layer resolves
// before the payload is built: the opportunity code, the stage and
// transaction-type ids, and the raw briefing text.
type OpportunityParams struct {
	Code           string
	StageValue     string
	StageKind      StageKind
	TransTypeValue string
	RawText        string
	Now            time.Time
}

var codeNamePhoneRe = regexp.MustCompile(`C\d+.+\d{6,}`)

// BuildOpportunityDuplicateRequest builds the opportunity duplicate
// check request body.
func BuildOpportunityDuplicateRequest(ctx *briefing.OpportunityContext, cfg config.SubmissionConfig) Tree {
	data := Tree{
		"name":            ctx.Name,
		"customer":        ctx.CustomerCode,
		"customerName":    ctx.CustomerName,
		"org":             cfg.SalesOrgID,
		"dept":            cfg.ApplicantDeptID,
		"ower":            firstNonEmpty(ctx.OwnerID, cfg.ApplicantUserID),
		"saleArea":        ctx.SaleAreaID,
		"address":         ctx.InstallLocation,
		"opptDate":        ctx.OpportunityDate,
		"expectSignDate":  ctx.ExpectSignDate,
		"expectSignMoney": FormatAmountPtr(ctx.ExpectSignMoney),
		"opptTransType":   cfg.Opportunity.TransTypeID,
		"opptSource":      cfg.Opportunity.Source,
		"winningRate":     ctx.WinningRate,
		"description":     firstNonEmpty(ctx.PlanType, ctx.Remark),
	}
	if ctx.ExpectSignNum != nil {
		data["expectSignNum"] = strconv.Itoa(*ctx.ExpectSignNum)
	}
	return Tree{
		"systemSource": cfg.SystemSource,
		"action":       "browse",
		"mainBillNum":  cfg.Opportunity.MainBillNum,
		"data":         Cleanup(data),
		"billnum":      cfg.Opportunity.MainBillNum,
		"tabInfo": []interface{}{
			Tree{"billNum": cfg.Opportunity.MainBillNum, "mappingType": "0"},
		},
	}
}

// BuildOpportunityCreatePayload builds the opportunity create request.
// It fills derived contract fields into ctx (years from plan keywords,
// end date from start plus years) so the caller sees what was sent.
func BuildOpportunityCreatePayload(
	ctx *briefing.OpportunityContext,
	customer *briefing.Customer,
	cat *catalog.Catalog,
	cfg config.SubmissionConfig,
	params OpportunityParams,
) Tree {
	if customer == nil {
		customer = &briefing.Customer{}
	}
	ownerID := firstNonEmpty(ctx.OwnerID, cfg.ApplicantUserID)

	if ctx.ContractYears == 0 {
		ctx.ContractYears = DetermineContractYears(ctx.PlanType, cfg.Opportunity)
	}
	if ctx.ContractYears > 0 && ctx.ContractStartDate != "" && ctx.ContractEndDate == "" {
		if start, ok := briefing.ParseDate(ctx.ContractStartDate, params.Now); ok {
			ctx.ContractEndDate = briefing.FormatDate(briefing.AddYears(start, ctx.ContractYears))
		}
	}

	remarkText := ctx.Remark
	items := buildOpportunityItems(ctx, customer, cat, cfg, params.Now)
	customerRef := ctx.CustomerCode

	data := Tree{
		"code":             params.Code,
		"resubmitCheckKey": params.Code,
		"name":             firstNonEmpty(ctx.InstallLocation, ctx.Address, ctx.Name),
		"customer":         customerRef,
		"settleCustomer":   customerRef,
		"finalUser":        customerRef,
		"opptDate":         ctx.OpportunityDate,
		"opptTransType":    firstNonEmpty(params.TransTypeValue, cfg.Opportunity.TransTypeID),
		"opptStage":        params.StageValue,
		"winningRate":      firstNonEmpty(ctx.WinningRate, "0"),
		"opptSource":       cfg.Opportunity.Source,
		"opptState":        0,
		"currency":         firstNonEmpty(ctx.Currency, cfg.Opportunity.Currency),
		"expectSignMoney":  FormatAmountPtr(ctx.ExpectSignMoney),
		"expectSignDate":   ctx.ExpectSignDate,
		"address":          ctx.InstallLocation,
		"ower":             ownerID,
		"dept":             cfg.ApplicantDeptID,
		"saleArea":         ctx.SaleAreaID,
		"org":              cfg.SalesOrgID,
		"description":      firstNonEmpty(remarkText, ctx.PlanType, customer.InstallContent),
		"regionCode":       cfg.DefaultRegionCode,
		"remark":           remarkText,
		"opptDefineCharacter": Tree{},
		"opptItemList":        items,
		"_status":             "Insert",
		"systemCode":          cfg.Opportunity.SystemCode,
	}
	if ctx.ExpectSignNum != nil {
		data["expectSignNum"] = strconv.Itoa(*ctx.ExpectSignNum)
	}

	headDef := Tree{}
	data["headDef"] = headDef
	opptChar := data["opptDefineCharacter"].(Tree)

	if params.RawText != "" {
		headDef["define20"] = params.RawText
		data["headDef!define20"] = params.RawText
	}

	if ctx.PaymentCode != "" {
		if industryID := resolvePaymentIndustryID(ctx.PaymentCode, cfg); industryID != "" {
			data["industry"] = industryID
			if label := PaymentLabelFromCode(ctx.PaymentCode); label != "" {
				data["industry_name"] = label
			}
		}
	}

	if ctx.UsageLabel != "" {
		usage := normalizeUsageLabel(ctx.UsageLabel)
		headDef["define8"] = usage
		data["headDef!define8"] = usage
		opptChar["attrext8"] = usage
	}
	if transLabel := firstNonEmpty(ctx.TransactionType, ctx.UsageLabel); transLabel != "" {
		data["transType_name"] = transLabel
		data["opptTransType_name"] = transLabel
	}

	if ctx.PlanType != "" {
		headDef["define9"] = ctx.PlanType
		data["headDef!define9"] = ctx.PlanType
		opptChar["attrext9"] = ctx.PlanType
	}

	location := ctx.InstallLocation
	if location != "" && codeNamePhoneRe.MatchString(location) && customer.Address != "" {
		location = customer.Address
	}
	if final := firstNonEmpty(location, customer.Address, ctx.PlanType); final != "" {
		data["address"] = final
	}

	if ctx.ContractStartDate != "" {
		data["contractBeginDate"] = ctx.ContractStartDate
		data["contractStartDate"] = ctx.ContractStartDate
		headDef["define17"] = ctx.ContractStartDate
		opptChar["attrext2"] = ctx.ContractStartDate
	}
	if ctx.ContractEndDate != "" {
		data["contractEndDate"] = ctx.ContractEndDate
		data["contractEnd"] = ctx.ContractEndDate
		headDef["define18"] = ctx.ContractEndDate
		opptChar["attrext3"] = ctx.ContractEndDate
	}
	if ctx.ContractYears > 0 {
		data["contractYear"] = ctx.ContractYears
		data["contractYears"] = ctx.ContractYears
		headDef["define19"] = strconv.Itoa(ctx.ContractYears)
		opptChar["attrext4"] = strconv.Itoa(ctx.ContractYears)
	}

	if ctx.MonthlyFee != nil {
		headDef["define10"] = FormatAmount(*ctx.MonthlyFee)
		data["headDef!define10"] = FormatAmount(*ctx.MonthlyFee)
		opptChar["attrext10"] = *ctx.MonthlyFee
		data["monthlyFee"] = *ctx.MonthlyFee
	}
	if ctx.Prepay != nil {
		headDef["define11"] = FormatAmount(*ctx.Prepay)
		data["headDef!define11"] = FormatAmount(*ctx.Prepay)
		opptChar["attrext16"] = *ctx.Prepay
		data["prepay"] = *ctx.Prepay
	}
	if ctx.Deposit != nil {
		headDef["define12"] = FormatAmount(*ctx.Deposit)
		data["headDef!define12"] = FormatAmount(*ctx.Deposit)
		opptChar["attrext17"] = *ctx.Deposit
		data["deposit"] = *ctx.Deposit
	}

	switch params.StageKind {
	case StageKindRent:
		if params.StageValue != "" {
			data["process"] = cfg.Opportunity.StageRentProcessID
			data["processStage"] = cfg.Opportunity.StageRentProcessStageID
		}
	case StageKindBuy:
		if params.StageValue != "" {
			data["process"] = cfg.Opportunity.StageBuyProcessID
			data["processStage"] = cfg.Opportunity.StageBuyProcessStageID
		}
	}

	return Tree{"data": Cleanup(data)}
}

// DetermineContractYears picks the contract duration from the plan
// text: extended years when any configured keyword appears, default
// years otherwise.
func DetermineContractYears(planText string, cfg config.OpportunityConfig) int {
	lowered := strings.ToLower(planText)
	for _, keyword := range cfg.ContractKeywords {
		if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
			if cfg.ContractExtendedYears > cfg.ContractDefaultYears {
				return cfg.ContractExtendedYears
			}
			return cfg.ContractDefaultYears
		}
	}
	return cfg.ContractDefaultYears
}

// GenerateOpportunityCode mints a code from the customer code prefix
// and a timestamp.
func GenerateOpportunityCode(customerCode string, now time.Time) string {
	prefix := customerCode
	if prefix == "" {
		prefix = "OPPT"
	}
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return strings.ToUpper(prefix) + now.Format("20060102150405")
}

// buildOpportunityItems resolves installation content into item lines.
// Consumables carry the install date and replacement schedule in both
// the character block (attrext11-14) and the body define block
// (define1-4). When nothing resolves, a single line with the plan name
// is emitted so the opportunity is never item-less.
func buildOpportunityItems(
	ctx *briefing.OpportunityContext,
	customer *briefing.Customer,
	cat *catalog.Catalog,
	cfg config.SubmissionConfig,
	now time.Time,
) []interface{} {
	source := firstNonEmpty(customer.InstallContent, ctx.PlanType)
	items := cat.ParseInstallItems(source)
	if len(items) == 0 {
		items = []catalog.Item{{
			Name: firstNonEmpty(ctx.PlanType, ctx.Name),
			Qty:  1,
		}}
	}

	installDate := firstNonEmpty(ctx.ContractStartDate, ctx.ExpectSignDate, ctx.OpportunityDate)
	unitPrice := 0.0
	if ctx.ExpectSignMoney != nil {
		unitPrice = *ctx.ExpectSignMoney
	}

	built := make([]interface{}, 0, len(items))
	for _, item := range items {
		productName := firstNonEmpty(item.Name, ctx.PlanType, ctx.Name)
		qty := item.Qty
		if qty <= 0 {
			qty = 1
		}

		itemPayload := Tree{
			"itemCurrency": firstNonEmpty(ctx.Currency, cfg.Opportunity.Currency),
			"unitPrice":    FormatAmount(unitPrice),
			"num":          qty,
			"money":        FormatAmount(unitPrice * float64(qty)),
			"productName":  productName,
			"_status":      "Insert",
			"systemCode":   cfg.Opportunity.SystemCode,
		}
		if item.Code != "" {
			itemPayload["productCode"] = item.Code
			if isDigits(item.Code) {
				itemPayload["product"] = item.Code
			}
		}

		defChar := Tree{}
		if installDate != "" {
			defChar["attrext11"] = installDate
			defChar["attrext14"] = installDate
		}
		if item.CycleMonths > 0 {
			defChar["attrext12"] = item.CycleMonths
			if base, ok := briefing.ParseDate(installDate, now); ok {
				defChar["attrext13"] = briefing.FormatDate(briefing.AddMonths(base, item.CycleMonths))
			}
		}
		if len(defChar) > 0 {
			itemPayload["opptItemDefineCharacter"] = defChar
			bodyDef := Tree{}
			if v, ok := defChar["attrext11"]; ok {
				bodyDef["define1"] = v
			}
			if v, ok := defChar["attrext12"]; ok {
				bodyDef["define2"] = v
			}
			if v, ok := defChar["attrext13"]; ok {
				bodyDef["define3"] = v
			}
			if v, ok := defChar["attrext14"]; ok {
				bodyDef["define4"] = v
			}
			itemPayload["bodyDef"] = bodyDef
		}
		built = append(built, itemPayload)
	}
	return built
}

func normalizeUsageLabel(label string) string {
	switch label {
	case "租", "租用":
		return "租用"
	case "買", "買斷", "買入", "購買", "购买":
		return "買斷"
	}
	return label
}
