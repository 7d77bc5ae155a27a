package briefing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/common/logger"
)

var (
	customerCodeRe = regexp.MustCompile(`(?i)c\d{3,}`)
	digitRunRe     = regexp.MustCompile(`\d+`)
)

// Engine normalizes customer briefing text into Customer records. Now
// is injectable so two parses of the same text in the same instant
// produce identical output.
type Engine struct {
	opts      Options
	extractor *Extractor
	classes   *Resolver
	payments  *Resolver
	usages    *Resolver
	log       logger.Logger
	Now       func() time.Time
}

// NewEngine builds an engine over the given option tables.
func NewEngine(opts Options, log logger.Logger) *Engine {
	return &Engine{
		opts:      opts,
		extractor: NewCustomerExtractor(),
		classes:   NewResolver(opts.CustomerClasses, nil),
		payments:  NewResolver(opts.PaymentMethods, opts.PaymentAliases),
		usages:    NewResolver(opts.UsageModes, nil),
		log:       log,
		Now:       time.Now,
	}
}

// ParseCustomer normalizes one customer briefing. Unresolvable
// categorical fields degrade to defaults with a warning; only empty
// input is an error.
func (e *Engine) ParseCustomer(text string, autoGenerateCode bool) (*CustomerResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("briefing text is empty")
	}

	rawFields := e.extractor.Parse(text)
	var warnings []string

	nameField := rawFields.Get("customerName")
	customerCode := strings.ToUpper(customerCodeRe.FindString(nameField))
	if customerCode == "" {
		customerCode = strings.ToUpper(customerCodeRe.FindString(text))
	}
	if customerCode == "" {
		if autoGenerateCode {
			customerCode = e.GenerateCustomerCode("")
			warnings = append(warnings, fmt.Sprintf("未偵測到客戶編碼，已自動生成：%s", customerCode))
		} else {
			warnings = append(warnings, "未偵測到客戶編碼 (需包含 C 開頭的編號)")
		}
	}

	baseName := nameField
	if customerCode != "" {
		baseName = removeCaseInsensitive(nameField, customerCode)
	}
	baseName = strings.TrimSpace(baseName)

	contactField := rawFields.Get("contactPhone")
	contactTel := strings.TrimSpace(contactField)
	if contactTel == "" {
		contactTel = strings.Join(digitRunRe.FindAllString(contactField, -1), "")
	}
	if contactTel == "" {
		warnings = append(warnings, "未偵測到聯繫電話")
	}
	contactName := strings.TrimSpace(strings.ReplaceAll(contactField, contactTel, ""))
	if contactName == "" {
		contactName = "聯絡人"
	}

	displayName := strings.TrimSpace(customerCode + baseName + contactTel)
	shortName := strings.TrimSpace(customerCode + baseName)
	if shortName == "" {
		shortName = customerCode
	}

	classKey, classOK := e.classes.Resolve(rawFields.Get("customerCategory"))
	if !classOK {
		classKey = e.opts.DefaultCustomerClass
		if rawFields.Get("customerCategory") != "" {
			warnings = append(warnings, fmt.Sprintf("無法識別的客戶分類：%s", rawFields.Get("customerCategory")))
		}
	}
	var customerClass *CustomerClass
	if opt, ok := e.classes.Option(classKey); ok {
		customerClass = &CustomerClass{Label: opt.Key, ID: opt.ID}
	}

	paymentMethod, paymentLabel := e.resolvePayment(rawFields.Get("paymentMethod"), &warnings)
	usageMode, usageLabel := e.resolveUsage(rawFields.Get("usageMode"))

	address := rawFields.Get("address")
	saleArea := e.resolveSaleArea(address)
	if saleArea == nil && address != "" {
		warnings = append(warnings, "無法依地址判斷銷售區域，請手動確認")
	}

	customer := &Customer{
		CustomerCode:   customerCode,
		BaseName:       baseName,
		DisplayName:    displayName,
		ShortName:      shortName,
		ContactTel:     contactTel,
		ContactName:    contactName,
		Address:        address,
		SaleArea:       saleArea,
		CustomerClass:  customerClass,
		PaymentMethod:  paymentMethod,
		UsageMode:      usageMode,
		PaymentLabel:   paymentLabel,
		UsageLabel:     usageLabel,
		MonthlyFee:     ParseNumberPtr(rawFields.Get("monthlyFee")),
		Deposit:        ParseNumberPtr(rawFields.Get("deposit")),
		Prepay:         ParseNumberPtr(rawFields.Get("prepay")),
		TotalAmount:    ParseNumberPtr(rawFields.Get("totalAmount")),
		InstallContent: rawFields.Get("installContent"),
		Remark:         rawFields.Get("remark"),
		InstallTime:    ParseInstallTime(rawFields.Get("installTime"), e.Now()),
		OwnerHint:      rawFields.Get("ownerHint"),
		Owner:          e.resolveOwner(text, rawFields.Get("ownerHint")),
		Qualification:  e.opts.Qualification,
		RawFields:      rawFields,
		RawText:        text,
	}

	if paymentMethod != nil {
		if industryID := e.resolveIndustryID(paymentMethod.ID); industryID != "" {
			customer.CustomerIndustry = &IndustryRef{
				ID:    industryID,
				Label: paymentLabel,
				Name:  paymentLabel,
			}
		}
	}

	if e.log != nil {
		e.log.Debug("customer briefing parsed", map[string]interface{}{
			"customerCode": customerCode,
			"fields":       len(rawFields),
			"warnings":     len(warnings),
		})
	}
	return &CustomerResult{Customer: customer, Warnings: warnings}, nil
}

// GenerateCustomerCode creates a replacement customer code. With a base
// code the first three characters are kept and a timestamp appended;
// otherwise a fresh C-prefixed code is minted.
func (e *Engine) GenerateCustomerCode(base string) string {
	now := e.Now()
	if base != "" {
		prefix := base
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		return prefix + now.Format("01021504")
	}
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return "C" + now.Format("060102") + random
}

func (e *Engine) resolvePayment(input string, warnings *[]string) (*Choice, string) {
	key, ok := e.payments.Resolve(input)
	if !ok {
		key = e.opts.DefaultPayment
		if input != "" {
			*warnings = append(*warnings, fmt.Sprintf("無法識別的付款方式：%s", input))
		}
	}
	opt, found := e.payments.Option(key)
	if !found {
		return nil, key
	}
	return &Choice{Label: opt.Label, ID: opt.ID}, key
}

func (e *Engine) resolveUsage(input string) (*Choice, string) {
	key, ok := e.usages.Resolve(input)
	if !ok {
		key = e.opts.DefaultUsage
	}
	opt, found := e.usages.Option(key)
	if !found {
		return nil, key
	}
	return &Choice{Label: opt.Label, ID: opt.ID}, key
}

func (e *Engine) resolveSaleArea(address string) *SaleArea {
	if address == "" {
		return nil
	}
	lowered := strings.ToLower(address)
	for _, area := range e.opts.SaleAreas {
		for _, keyword := range area.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				result := area.SaleArea
				return &result
			}
		}
	}
	return nil
}

func (e *Engine) resolveOwner(rawText, ownerHint string) Owner {
	candidates := make([]string, 0, 2)
	if ownerHint != "" {
		candidates = append(candidates, ownerHint)
	}
	candidates = append(candidates, rawText)
	for _, candidate := range candidates {
		lowered := strings.ToLower(candidate)
		for _, rule := range e.opts.OwnerRules {
			for _, keyword := range rule.Keywords {
				if strings.Contains(lowered, keyword) {
					return rule.Owner
				}
			}
		}
	}
	return e.opts.DefaultOwner
}

func (e *Engine) resolveIndustryID(paymentCode string) string {
	if paymentCode != "" {
		code := paymentCode
		if len(code) == 1 {
			code = "0" + code
		}
		if override := e.opts.PaymentIndustryIDs[code]; override != "" {
			return override
		}
		if e.opts.DefaultIndustryID != "" {
			return e.opts.DefaultIndustryID
		}
		return code
	}
	return e.opts.DefaultIndustryID
}

func removeCaseInsensitive(source, target string) string {
	if target == "" {
		return source
	}
	lowerSource := strings.ToLower(source)
	lowerTarget := strings.ToLower(target)
	var b strings.Builder
	for {
		idx := strings.Index(lowerSource, lowerTarget)
		if idx < 0 {
			b.WriteString(source)
			return b.String()
		}
		b.WriteString(source[:idx])
		source = source[idx+len(target):]
		lowerSource = lowerSource[idx+len(lowerTarget):]
	}
}
