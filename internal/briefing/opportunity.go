package briefing

import (
	"regexp"
	"strings"
	"time"

	"maqua-crm/internal/common/logger"
)

var (
	codeTokenRe     = regexp.MustCompile(`(?i)\bC\d{3,}\b`)
	planCodeRe      = regexp.MustCompile(`([A-Z]{1,3}\d{2,4})`)
	phoneRe         = regexp.MustCompile(`\d{6,}`)
	embeddedCodeRe  = regexp.MustCompile(`C\d+`)
	pureDigitCodeRe = regexp.MustCompile(`^\d{2,3}$`)
)

// addressKeywords mark a value as looking like a street address rather
// than a plan name.
var addressKeywords = []string{"座", "樓", "大廈", "廣場", "中心", "花園", "苑", "邨", "街", "路"}

// ContextBuilder merges opportunity briefing fields with an optional
// previously normalized customer into an OpportunityContext.
type ContextBuilder struct {
	extractor *Extractor
	log       logger.Logger
	Now       func() time.Time
}

// NewContextBuilder builds an opportunity context builder.
func NewContextBuilder(log logger.Logger) *ContextBuilder {
	return &ContextBuilder{
		extractor: NewOpportunityExtractor(),
		log:       log,
		Now:       time.Now,
	}
}

// ParseOpportunity extracts fields from text and builds the context.
// customer may be nil; its fields backfill whatever the text omits.
func (b *ContextBuilder) ParseOpportunity(text string, customer *Customer) *OpportunityResult {
	fields := b.extractor.Parse(text)
	ctx, warnings := b.BuildContext(fields, customer)
	if b.log != nil {
		b.log.Debug("opportunity briefing parsed", map[string]interface{}{
			"name":     ctx.Name,
			"fields":   len(fields),
			"warnings": len(warnings),
		})
	}
	return &OpportunityResult{Fields: fields, Context: ctx, Warnings: warnings}
}

// BuildContext derives the opportunity context from extracted fields,
// falling back to the customer record field by field.
func (b *ContextBuilder) BuildContext(fields FieldMap, customer *Customer) (*OpportunityContext, []string) {
	if customer == nil {
		customer = &Customer{}
	}
	var warnings []string
	now := b.Now()

	name := firstNonEmpty(fields.Get("opportunityName"), customer.DisplayName, customer.ShortName, "新商機")

	installLocation := b.resolveInstallLocation(fields, customer)

	planType := firstNonEmpty(fields.Get("planType"), customer.InstallContent)
	if planType != "" && looksLikeAddress(planType) {
		planType = "MAQUA方案"
	}

	usageLabel := fields.Get("usageMode")
	if usageLabel == "" {
		usageLabel = customer.UsageLabel
	}
	if usageLabel == "" && customer.UsageMode != nil {
		usageLabel = customer.UsageMode.Label
	}

	monthlyFee := numberOr(fields.Get("monthlyFee"), customer.MonthlyFee)
	deposit := numberOr(fields.Get("deposit"), customer.Deposit)
	prepay := numberOr(fields.Get("prepay"), customer.Prepay)
	totalAmount := numberOr(fields.Get("totalAmount"), customer.TotalAmount)

	contractYears, _ := ParseContractYears(fields.Get("contractYears"))

	installTimeText := fields.Get("installTime")
	if installTimeText == "" && customer.InstallTime != nil {
		installTimeText = customer.InstallTime.Display
	}
	contractStart, startOK := ParseDate(firstNonEmpty(fields.Get("contractStartDate"), installTimeText), now)
	contractEnd, endOK := ParseDate(fields.Get("contractEndDate"), now)
	expectSignDate, expectOK := ParseDate(fields.Get("expectSignDate"), now)

	expectSignMoney := ParseNumberPtr(fields.Get("expectSignMoney"))
	if expectSignMoney == nil {
		expectSignMoney = totalAmount
	}
	if expectSignMoney == nil && monthlyFee != nil && contractYears > 0 {
		money := *monthlyFee * float64(contractYears) * 12
		expectSignMoney = &money
	}

	var expectSignNum *int
	if n, ok := ParseInt(fields.Get("expectSignNum")); ok {
		expectSignNum = &n
	}

	currency := NormalizeCurrency(fields.Get("currency"))
	if currency == "" {
		currency = "MOP"
	}

	paymentCode := NormalizePaymentCode(fields.Get("paymentMethod"))
	if paymentCode == "" && customer.PaymentMethod != nil {
		paymentCode = customer.PaymentMethod.ID
	}
	if paymentCode == "" {
		if planRaw := strings.TrimSpace(fields.Get("planType")); pureDigitCodeRe.MatchString(planRaw) {
			paymentCode = planRaw
		}
	}

	winningRate := NormalizePercentage(fields.Get("winningRate"))
	if winningRate == "" {
		winningRate = "0"
	}

	ownerHint := firstNonEmpty(fields.Get("ownerHint"), customer.Owner.Name)
	transactionType := fields.Get("transactionType")
	if transactionType == "" {
		transactionType = fields.Get("customerCategory")
	}
	if transactionType == "" && customer.CustomerClass != nil {
		transactionType = customer.CustomerClass.Label
	}

	contactMethod := firstNonEmpty(fields.Get("contactMethod"), customer.ContactTel, fields.Get("contactPhone"))
	remark := combineText(fields.Get("remark"), customer.Remark)
	contractNumber := fields.Get("contractNumber")
	if contractNumber == "" && customer.RawFields != nil {
		contractNumber = customer.RawFields.Get("contractNumber")
	}

	opportunityDate, dateOK := ParseDate(fields.Get("opportunityDate"), now)

	if !startOK && installTimeText != "" {
		warnings = append(warnings, "未取得合約開始日，已改用安裝時間。")
	}
	if startOK && !endOK && contractYears > 0 {
		contractEnd = AddYears(contractStart, contractYears)
		endOK = true
	}
	if !expectOK && startOK {
		expectSignDate = contractStart
		expectOK = true
	}
	if !dateOK {
		switch {
		case expectOK:
			opportunityDate = expectSignDate
		case startOK:
			opportunityDate = contractStart
		default:
			opportunityDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	customerCode := customer.CustomerCode
	if customerCode == "" {
		customerCode = strings.ToUpper(codeTokenRe.FindString(fields.Get("customerLine")))
	}
	if customerCode == "" {
		customerCode = strings.ToUpper(codeTokenRe.FindString(fields.Get("customerName")))
	}
	customerName := firstNonEmpty(fields.Get("customerName"), customer.BaseName, customer.DisplayName, "客戶")

	contactPhone := firstNonEmpty(customer.ContactTel, fields.Get("contactPhone"))
	if contactPhone == "" && fields.Get("customerLine") != "" {
		contactPhone = phoneRe.FindString(fields.Get("customerLine"))
	}

	planCode := fields.Get("planCode")
	if planCode == "" {
		planCode = planCodeRe.FindString(planType)
	}

	itemHint := ItemHint{
		BrandName:        firstNonEmpty(fields.Get("brandName"), "MAQUA"),
		ProductName:      firstNonEmpty(fields.Get("productName"), planType, name),
		ProductCode:      firstNonEmpty(planCode, planType, customerCode),
		ProductClassName: firstNonEmpty(fields.Get("productClassName"), transactionType),
		ProductLineName:  firstNonEmpty(fields.Get("productLineName"), planType),
		ManageClassName:  transactionType,
	}

	ctx := &OpportunityContext{
		Name:              name,
		InstallLocation:   installLocation,
		UsageLabel:        usageLabel,
		PlanType:          planType,
		MonthlyFee:        monthlyFee,
		TotalAmount:       totalAmount,
		Deposit:           deposit,
		Prepay:            prepay,
		ContractNumber:    contractNumber,
		ContractStartDate: formatIf(contractStart, startOK),
		ContractEndDate:   formatIf(contractEnd, endOK),
		ContractYears:     contractYears,
		ExpectSignDate:    formatIf(expectSignDate, expectOK),
		ExpectSignMoney:   expectSignMoney,
		ExpectSignNum:     expectSignNum,
		Currency:          currency,
		PaymentCode:       paymentCode,
		WinningRate:       winningRate,
		OwnerHint:         ownerHint,
		StageHint:         fields.Get("opportunityStage"),
		TransactionType:   transactionType,
		OpportunityDate:   FormatDate(opportunityDate),
		InstallTime:       installTimeText,
		ContactMethod:     contactMethod,
		Remark:            remark,
		CustomerName:      customerName,
		CustomerCode:      customerCode,
		ContactTel:        contactPhone,
		Address:           firstNonEmpty(installLocation, customer.Address),
		ItemHint:          itemHint,
	}
	if customer.SaleArea != nil {
		ctx.SaleAreaID = customer.SaleArea.ID
	}
	if customer.Owner.ID != "" {
		ctx.OwnerID = customer.Owner.ID
		ctx.OwnerName = customer.Owner.Name
	}
	if customer.CustomerClass != nil {
		ctx.CustomerClassID = customer.CustomerClass.ID
		ctx.CustomerClassLabel = customer.CustomerClass.Label
	}

	if contactPhone == "" {
		warnings = append(warnings, "未偵測到聯絡電話")
	}
	if customerCode == "" {
		warnings = append(warnings, "未偵測到客戶編碼")
	}
	return ctx, warnings
}

// resolveInstallLocation keeps the user-entered location unless it is a
// customer-code line, in which case the customer address or an
// address-like plan value replaces it.
func (b *ContextBuilder) resolveInstallLocation(fields FieldMap, customer *Customer) string {
	installLocation := fields.Get("installLocation")
	if installLocation != "" && embeddedCodeRe.MatchString(installLocation) {
		if customer.Address != "" {
			return customer.Address
		}
		if planRaw := fields.Get("planType"); planRaw != "" && looksLikeAddress(planRaw) {
			return planRaw
		}
		return installLocation
	}
	if installLocation == "" {
		if addr := fields.Get("address"); addr != "" {
			return addr
		}
		if planRaw := fields.Get("planType"); planRaw != "" && looksLikeAddress(planRaw) {
			return planRaw
		}
		return customer.Address
	}
	return installLocation
}

func looksLikeAddress(value string) bool {
	for _, keyword := range addressKeywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func numberOr(raw string, fallback *float64) *float64 {
	if n := ParseNumberPtr(raw); n != nil {
		return n
	}
	return fallback
}

func combineText(parts ...string) string {
	seen := make(map[string]struct{})
	var kept []string
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		kept = append(kept, clean)
	}
	return strings.Join(kept, "\n")
}

func formatIf(value time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return FormatDate(value)
}
