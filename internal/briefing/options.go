package briefing

// Options carries the categorical option sets and defaults the
// normalization engine resolves against. DefaultOptions mirrors the
// production CRM dictionaries; ids can be overridden through config.
type Options struct {
	SaleAreas       []SaleAreaOption
	CustomerClasses []Option
	UsageModes      []Option
	PaymentMethods  []Option
	PaymentAliases  map[string]string
	OwnerRules      []OwnerRule
	DefaultOwner    Owner
	Qualification   Qualification

	// DefaultIndustryID backs the payment-method industry mirror when no
	// per-code override is configured.
	DefaultIndustryID string
	// PaymentIndustryIDs overrides the industry id per payment code.
	PaymentIndustryIDs map[string]string

	DefaultCustomerClass string
	DefaultPayment       string
	DefaultUsage         string
}

// SaleAreaOption binds a sales territory to the address keywords that
// select it.
type SaleAreaOption struct {
	SaleArea
	Keywords []string
}

// OwnerRule assigns an owner when any keyword appears in the owner hint
// or the raw briefing text.
type OwnerRule struct {
	Keywords []string
	Owner    Owner
}

// DefaultOptions returns the production option tables.
func DefaultOptions() Options {
	return Options{
		SaleAreas: []SaleAreaOption{
			{
				SaleArea: SaleArea{Label: "澳門島", ID: "1482639830460399618", Code: "001"},
				Keywords: []string{"澳門", "澳門島", "macau", "macao"},
			},
			{
				SaleArea: SaleArea{Label: "氹仔", ID: "1482639942129549313", Code: "002"},
				Keywords: []string{"氹仔", "taipa"},
			},
			{
				SaleArea: SaleArea{Label: "珠海", ID: "1789854460290793480", Code: "003"},
				Keywords: []string{"珠海", "zhuhai"},
			},
		},
		CustomerClasses: []Option{
			{Key: "家用客戶", Label: "家用客戶", ID: "1482638121070755844"},
			{Key: "商用客戶", Label: "商用客戶", ID: "1482638189791805446"},
			{Key: "政府專案", Label: "政府專案", ID: "1482638816869613570"},
		},
		UsageModes: []Option{
			{Key: "租", Label: "租", ID: "USAGE_RENT_ID"},
			{Key: "買", Label: "買", ID: "USAGE_BUY_ID"},
		},
		PaymentMethods: []Option{
			{Key: "一次性全繳", Label: "一次性全繳", ID: "01"},
			{Key: "信用卡分期", Label: "信用卡分期", ID: "02"},
			{Key: "銀行卡自動轉賬", Label: "銀行卡自動轉賬", ID: "03"},
			{Key: "季度收費", Label: "季度收費", ID: "04"},
			{Key: "年度收費", Label: "年度收費", ID: "05"},
			{Key: "試用", Label: "試用", ID: "06"},
			{Key: "每月收費", Label: "每月收費", ID: "07"},
		},
		PaymentAliases: map[string]string{
			"一次性付款":    "一次性全繳",
			"一次性繳交":    "一次性全繳",
			"一次性全款":    "一次性全繳",
			"全額付款":     "一次性全繳",
			"全額繳交":     "一次性全繳",
			"季度月費":     "季度收費",
			"季度付款":     "季度收費",
			"季度繳費":     "季度收費",
			"季付":       "季度收費",
			"年度月費":     "年度收費",
			"年度付款":     "年度收費",
			"年度繳費":     "年度收費",
			"年付":       "年度收費",
			"月費":       "每月收費",
			"每月月費":     "每月收費",
			"每月付款":     "每月收費",
			"每月繳費":     "每月收費",
			"月付":       "每月收費",
			"銀行轉帳":     "銀行卡自動轉賬",
			"銀行匯款":     "銀行卡自動轉賬",
			"自動扣款":     "銀行卡自動轉賬",
			"銀行卡自動扣款":  "銀行卡自動轉賬",
			"銀行自動轉賬":   "銀行卡自動轉賬",
			"轉帳":       "銀行卡自動轉賬",
			"轉賬":       "銀行卡自動轉賬",
			"信用卡":      "信用卡分期",
			"信用卡付款":    "信用卡分期",
			"信用卡刷卡":    "信用卡分期",
			"信用卡付費":    "信用卡分期",
			"信用卡分期付款":  "信用卡分期",
			"試用期":      "試用",
			"免費試用":     "試用",
		},
		OwnerRules: []OwnerRule{
			{
				Keywords: []string{"寧", "james", "ning"},
				Owner:    Owner{ID: "1634633148216115210", Name: "James"},
			},
			{
				Keywords: []string{"成", "cheng"},
				Owner:    Owner{ID: "1675717018645954563", Name: "梁必成"},
			},
			{
				Keywords: []string{"liz", "莉茲"},
				Owner:    Owner{ID: "1804041613437042698", Name: "李潤婷"},
			},
		},
		DefaultOwner:      Owner{ID: "1482551268133044232", Name: "客服003"},
		DefaultIndustryID: "1580721825339932673",
		Qualification: Qualification{
			EnterpriseType:    "個人",
			QualificationType: "其他",
		},
		DefaultCustomerClass: "商用客戶",
		DefaultPayment:       "一次性全繳",
		DefaultUsage:         "租",
	}
}
