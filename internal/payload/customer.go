package payload

import (
	"strings"
	"time"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/common/config"
)

// BuildDuplicatePayload builds the customer duplicate-check request.
func BuildDuplicatePayload(customer *briefing.Customer, cfg config.SubmissionConfig) Tree {
	data := Tree{
		"name":       customer.DisplayName,
		"code":       customer.CustomerCode,
		"contactTel": customer.ContactTel,
		"address":    customer.Address,
	}
	if customer.CustomerClass != nil {
		data["customerClass"] = customer.CustomerClass.ID
	}
	return Tree{
		"systemSource": cfg.SystemSource,
		"action":       "browse",
		"mainBillNum":  "cust_customerCard",
		"data":         data,
		"tabInfo": []interface{}{
			Tree{"billNum": "cust_customerCard", "mappingType": "0"},
		},
	}
}

// BuildApplyPayload builds the customer application request. The sales
// whitelist applies here: only liz, james, 成 and 寧 keep their own
// owner id; everything else is filed under the service account.
func BuildApplyPayload(customer *briefing.Customer, cfg config.SubmissionConfig, now time.Time) Tree {
	applyCode := "CUST" + now.Format("20060102150405")

	owner, deptID := resolveApplyOwner(customer, cfg)

	contactName := customer.ContactName
	if contactName == "" {
		contactName = "聯絡人"
	}
	contactTel := customer.ContactTel
	addressText := customer.Address

	contactBlock := Tree{
		"isDefault":           true,
		"org":                 cfg.SalesOrgID,
		"dept":                cfg.ApplicantDeptID,
		"fullName":            TextMap(contactName),
		"mobile":              contactTel,
		"telePhone":           contactTel,
		"_status":             "Insert",
		"contacterCharacter":  Tree{},
	}
	addressBlock := Tree{
		"isDefault":            true,
		"addressCode":          fallbackAddressCode(customer, now),
		"address":              addressText,
		"receiver":             contactName,
		"mobile":               contactTel,
		"telePhone":            contactTel,
		"_status":              "Insert",
		"addressInfoCharacter": Tree{},
	}
	if cfg.DefaultRegionCode != "" {
		addressBlock["regionCode"] = cfg.DefaultRegionCode
		addressBlock["mergerName"] = addressText
	}

	personLabel := firstNonEmpty(customer.ShortName, customer.BaseName, contactName)
	parentOrg := firstNonEmpty(cfg.ParentManageOrgID, cfg.SalesOrgID)

	paymentCode := ""
	paymentLabel := ""
	if customer.PaymentMethod != nil {
		paymentCode = customer.PaymentMethod.ID
		paymentLabel = customer.PaymentMethod.Label
	}
	paymentCode = SanitizePaymentCode(paymentCode, cfg.DefaultPaymentWay)

	industryName := paymentLabel
	industryID := ""
	if customer.CustomerIndustry != nil {
		industryID = customer.CustomerIndustry.ID
		industryName = firstNonEmpty(customer.CustomerIndustry.Name, customer.CustomerIndustry.Label, paymentLabel)
	}
	if industryID == "" {
		industryID = resolvePaymentIndustryID(paymentCode, cfg)
	}

	usageLabel := ""
	if customer.UsageMode != nil {
		usageLabel = customer.UsageMode.Label
	}

	data := Tree{
		"systemSource":    cfg.SystemSource,
		"bustype":         cfg.BustypeID,
		"applyTime":       now.Format("2006-01-02 15:04:05"),
		"code":            applyCode,
		"org":             cfg.ApplicantOrgID,
		"transType":       cfg.TransTypeID,
		"ower":            firstNonEmpty(owner.ID, cfg.ApplicantUserID),
		"dept":            deptID,
		"name":            TextMap(firstNonEmpty(customer.DisplayName, customer.ShortName, "新客戶")),
		"shortname":       TextMap(firstNonEmpty(customer.ShortName, customer.DisplayName, "新客戶")),
		"custCode":        customer.CustomerCode,
		"retailInvestors": false,
		"internalOrg":     false,
		"parentManageOrg": parentOrg,
		"merchantAppliedDetail!belongOrg":     cfg.SalesOrgID,
		"merchantAppliedDetail!searchcode":    cfg.SearchCodePrefix + customer.CustomerCode,
		"merchantAppliedDetail!customerLevel": cfg.CustomerLevelID,
		"enterpriseNature":    cfg.EnterpriseNature,
		"licenseType":         cfg.LicenseType,
		"taxPayingCategories": cfg.TaxCategory,
		"enterpriseName":      customer.DisplayName,
		"leaderName":          personLabel,
		"address":             TextMap(addressText),
		"personName":          personLabel,
		"contactName":         contactName,
		"contactTel":          contactTel,
		"buildTime":           now.Format("2006-01-02"),
		"scopeModel":          0,
		"largeText1":          usageLabel,
		"principals": []interface{}{
			Tree{
				"isDefault":            true,
				"professSalesman":      firstNonEmpty(owner.ID, cfg.ApplicantUserID),
				"specialManagementDep": deptID,
				"_status":              "Insert",
			},
		},
		"merchantAddressInfos": []interface{}{addressBlock},
		"merchantContacterInfos": contactRecords(contactBlock, cfg),
		"_status":              "Insert",
		"customerAddApplyCharacter":                              Tree{},
		"merchantAppliedDetail!merchantApplyRangeDetailCharacter": Tree{},
		"merchantCharacterEntity!merchantCharacter":               Tree{},
	}
	if customer.CustomerClass != nil {
		data["customerClass"] = customer.CustomerClass.ID
	}
	if industryID != "" {
		data["customerIndustry"] = industryID
	}
	if customer.SaleArea != nil {
		data["saleArea"] = customer.SaleArea.ID
		data["customerAreas"] = []interface{}{
			Tree{"isDefault": true, "saleAreaId": customer.SaleArea.ID, "_status": "Insert"},
		}
	}
	if cfg.DefaultRegionCode != "" {
		data["regionCode"] = cfg.DefaultRegionCode
	}
	if customer.TotalAmount != nil {
		data["money"] = *customer.TotalAmount
	}
	if customer.MonthlyFee != nil {
		data["largeText3"] = *customer.MonthlyFee
	}
	if customer.InstallContent != "" {
		data["largeText2"] = customer.InstallContent
	}
	if customer.Remark != "" {
		data["largeText4"] = customer.Remark
	}

	Assign(data, "merchantAppliedDetail!payway", paymentCode)
	if cfg.PaymentField != "" && cfg.PaymentField != "merchantAppliedDetail!payway" {
		Assign(data, cfg.PaymentField, firstNonEmpty(paymentLabel, paymentCode))
	}
	Assign(data, cfg.PlanField, customer.InstallContent)
	Assign(data, cfg.RemarkField, customer.Remark)
	if industryName != "" {
		Assign(data, "customerIndustry.name", industryName)
	}
	Assign(data, cfg.UsageField, usageLabel)
	if customer.MonthlyFee != nil {
		Assign(data, cfg.MonthlyFeeField, *customer.MonthlyFee)
	}

	return Tree{"data": Cleanup(data)}
}

// BuildAuditPayload builds the application audit request.
func BuildAuditPayload(applicationID string, cfg config.SubmissionConfig) Tree {
	return Tree{
		"data": []interface{}{
			Tree{"systemSource": cfg.SystemSource, "id": applicationID},
		},
	}
}

// applyOwnerWhitelist maps recognized owner hints to configured sales
// ids with the display names the CRM expects.
func resolveApplyOwner(customer *briefing.Customer, cfg config.SubmissionConfig) (briefing.Owner, string) {
	hint := strings.ToLower(strings.TrimSpace(customer.OwnerHint))
	switch hint {
	case "liz":
		return briefing.Owner{ID: cfg.OwnerLizID, Name: "LIZ"}, cfg.ApplicantDeptID
	case "james":
		return briefing.Owner{ID: cfg.OwnerJamesID, Name: "James"}, cfg.ApplicantDeptID
	case "成":
		return briefing.Owner{ID: cfg.OwnerLiangID, Name: "成"}, cfg.ApplicantDeptID
	case "寧":
		return briefing.Owner{ID: cfg.OwnerJamesID, Name: "寧"}, cfg.ApplicantDeptID
	}
	return briefing.Owner{ID: cfg.ServiceOwnerID, Name: cfg.ServiceOwnerName}, cfg.ServiceDeptID
}

// resolvePaymentIndustryID maps a payment code to the industry id bound
// to it, falling back to the tenant default, then the code itself.
func resolvePaymentIndustryID(paymentCode string, cfg config.SubmissionConfig) string {
	if paymentCode != "" {
		code := paymentCode
		if len(code) == 1 {
			code = "0" + code
		}
		if override := cfg.PaymentIndustryIDs[code]; override != "" {
			return override
		}
		if cfg.CustomerIndustryID != "" {
			return cfg.CustomerIndustryID
		}
		return code
	}
	return cfg.CustomerIndustryID
}

func contactRecords(contactBlock Tree, cfg config.SubmissionConfig) []interface{} {
	if !cfg.AttachContactRecords {
		return nil
	}
	return []interface{}{contactBlock}
}

func fallbackAddressCode(customer *briefing.Customer, now time.Time) string {
	for _, candidate := range []string{
		customer.CustomerCode,
		customer.ShortName,
		customer.DisplayName,
		customer.ContactTel,
	} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return "ADDR" + now.Format("20060102150405")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
