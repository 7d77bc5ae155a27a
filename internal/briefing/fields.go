package briefing

import (
	"strings"

	"golang.org/x/text/width"
)

// placeholderTokens are values that mean "not provided". They fold to
// the empty string so downstream defaults apply.
var placeholderTokens = map[string]struct{}{
	"--": {},
	"—":  {},
	"-":  {},
	"暫無": {},
	"暂无": {},
	"無":  {},
	"无":  {},
	"n/a": {},
	"n\\a": {},
	"na": {},
}

// fieldSeparators are tried in order; the first one present in a line
// wins. The full-width colon is checked first so values containing
// ASCII '=' (arithmetic expressions) survive intact.
var fieldSeparators = []string{"：", ":", "="}

// Extractor turns label-delimited briefing text into a FieldMap. Label
// recognition is driven by an alias table mapping visible labels
// (traditional and simplified) to canonical field keys.
type Extractor struct {
	labels map[string]string

	// continueRemark appends unrecognized lines that follow a remark
	// field to the remark instead of dropping them.
	continueRemark bool

	// pairBareLabels accepts a label on its own line followed by a bare
	// value line, a shape common in forwarded opportunity briefs.
	pairBareLabels bool
}

// NewCustomerExtractor builds the extractor for customer briefings.
func NewCustomerExtractor() *Extractor {
	return &Extractor{labels: customerLabels, continueRemark: true}
}

// NewOpportunityExtractor builds the extractor for opportunity briefings.
func NewOpportunityExtractor() *Extractor {
	return &Extractor{labels: opportunityLabels, pairBareLabels: true}
}

// Parse scans the text line by line and returns the extracted fields.
// Later occurrences of a field overwrite earlier ones.
func (e *Extractor) Parse(text string) FieldMap {
	parsed := make(FieldMap)
	lines := strings.Split(text, "\n")
	lastKey := ""

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if e.pairBareLabels {
			if key, ok := e.labels[normalizeLabel(line)]; ok {
				if i+1 < len(lines) {
					next := strings.TrimSpace(lines[i+1])
					if next != "" {
						if _, isLabel := e.labels[normalizeLabel(next)]; !isLabel && !containsSeparator(next) {
							parsed[key] = NormalizePlaceholder(next)
							lastKey = key
							i++
							continue
						}
					}
				}
			}
		}

		label, value, found := splitLabelLine(line)
		if !found {
			if e.continueRemark && lastKey == "remark" {
				parsed["remark"] = strings.TrimSpace(parsed["remark"] + "\n" + line)
			}
			continue
		}

		key, known := e.labels[normalizeLabel(label)]
		if !known {
			if e.continueRemark && lastKey == "remark" {
				parsed["remark"] = strings.TrimSpace(parsed["remark"] + "\n" + line)
			} else {
				lastKey = ""
			}
			continue
		}
		parsed[key] = NormalizePlaceholder(value)
		lastKey = key
	}
	return parsed
}

// NormalizePlaceholder trims the value and folds placeholder tokens to
// the empty string.
func NormalizePlaceholder(value string) string {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return ""
	}
	if _, ok := placeholderTokens[strings.ToLower(clean)]; ok {
		return ""
	}
	return clean
}

// normalizeLabel folds full-width punctuation to ASCII and trims the
// label before alias lookup.
func normalizeLabel(label string) string {
	return strings.TrimSpace(width.Narrow.String(label))
}

func splitLabelLine(line string) (label, value string, found bool) {
	for _, sep := range fieldSeparators {
		if idx := strings.Index(line, sep); idx >= 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(sep):]), true
		}
	}
	return "", "", false
}

func containsSeparator(line string) bool {
	for _, sep := range fieldSeparators {
		if strings.Contains(line, sep) {
			return true
		}
	}
	return false
}

// customerLabels maps customer-briefing labels to canonical keys.
var customerLabels = map[string]string{
	"客戶名稱":   "customerName",
	"客户名称":   "customerName",
	"客戶編碼":   "customerCode",
	"客户编码":   "customerCode",
	"聯繫電話":   "contactPhone",
	"联系电话":   "contactPhone",
	"目前付費方式": "paymentMethod",
	"付款方式":   "paymentMethod",
	"安裝時間":   "installTime",
	"安装时间":   "installTime",
	"安裝內容":   "installContent",
	"方案類型":   "installContent",
	"方案类型":   "installContent",
	"總金額":    "totalAmount",
	"总金额":    "totalAmount",
	"聯絡地址":   "address",
	"安裝地址":   "address",
	"裝地址":    "address",
	"地址":     "address",
	"住址":     "address",
	"位置":     "address",
	"安裝位置":   "address",
	"聯絡位置":   "address",
	"聯繫地址":   "address",
	"地點":     "address",
	"備註":     "remark",
	"備注":     "remark",
	"备注":     "remark",
	"客戶分類":   "customerCategory",
	"客户分类":   "customerCategory",
	"使用方式":   "usageMode",
	"月費金額":   "monthlyFee",
	"月费金额":   "monthlyFee",
	"按金":     "deposit",
	"預繳金":    "prepay",
	"负责人":    "ownerHint",
	"負責人":    "ownerHint",
	"銷售":     "ownerHint",
	"销售":     "ownerHint",
}

// opportunityLabels maps opportunity-briefing labels to canonical keys.
// Labels carrying parenthetical hints are stored with ASCII parens; the
// lookup folds full-width punctuation first.
var opportunityLabels = map[string]string{
	"商機名稱":          "opportunityName",
	"商机名称":          "opportunityName",
	"客戶名稱":          "customerName",
	"客户名称":          "customerName",
	"客戶":            "customerLine",
	"客户":            "customerLine",
	"聯絡地址":          "address",
	"联系地址":          "address",
	"聯繫電話":          "contactPhone",
	"联系电话":          "contactPhone",
	"安裝位置":          "installLocation",
	"安装位置":          "installLocation",
	"安裝位置(客戶地址)":    "installLocation",
	"安装位置(客户地址)":    "installLocation",
	"安裝位置(客戶地址 )":   "installLocation",
	"安装位置(客户地址 )":   "installLocation",
	"商機階段":          "opportunityStage",
	"商机阶段":          "opportunityStage",
	"交易類型":          "transactionType",
	"交易类型":          "transactionType",
	"客戶分類":          "customerCategory",
	"客户分类":          "customerCategory",
	"客戶分類(家用客戶 商業客戶 政府專案)": "customerCategory",
	"客户分类(家用客户 商业客户 政府专案)": "customerCategory",
	"商機日期":    "opportunityDate",
	"商机日期":    "opportunityDate",
	"負責人":     "ownerHint",
	"负责人":     "ownerHint",
	"銷售":      "ownerHint",
	"销售":      "ownerHint",
	"预计签单日期":  "expectSignDate",
	"預計簽單日期":  "expectSignDate",
	"预计签单金额":  "expectSignMoney",
	"預計簽單金額":  "expectSignMoney",
	"预计签单数量":  "expectSignNum",
	"預計簽單數量":  "expectSignNum",
	"預計簽單數":   "expectSignNum",
	"币种":      "currency",
	"幣種":      "currency",
	"幣別":      "currency",
	"目前付款方式":  "paymentMethod",
	"目前付費方式":  "paymentMethod",
	"目前付款方式(01-07)": "paymentMethod",
	"付款方式":    "paymentMethod",
	"合約1開始日":  "contractStartDate",
	"合约1开始日":  "contractStartDate",
	"合約開始日":   "contractStartDate",
	"合约开始日":   "contractStartDate",
	"合同開始日":   "contractStartDate",
	"合同开始日":   "contractStartDate",
	"合約1結束日期": "contractEndDate",
	"合约1结束日期": "contractEndDate",
	"合約結束日":   "contractEndDate",
	"合约结束日":   "contractEndDate",
	"合同結束日":   "contractEndDate",
	"合同结束日":   "contractEndDate",
	"合約1年期":   "contractYears",
	"合约1年期":   "contractYears",
	"合約年期":    "contractYears",
	"合约年期":    "contractYears",
	"使用方式":    "usageMode",
	"方案類型":    "planType",
	"方案类型":    "planType",
	"方案名稱":    "planType",
	"方案名称":    "planType",
	"方案类型(方案類型)": "planType",
	"方案类型(方案类型)": "planType",
	"月費金額":    "monthlyFee",
	"月费金额":    "monthlyFee",
	"按金":      "deposit",
	"押金":      "deposit",
	"預繳金":     "prepay",
	"预缴金":     "prepay",
	"總金額":     "totalAmount",
	"总金额":     "totalAmount",
	"合約號":     "contractNumber",
	"合约号":     "contractNumber",
	"合同號":     "contractNumber",
	"合同号":     "contractNumber",
	"常用聯絡方式":  "contactMethod",
	"常用联系方式":  "contactMethod",
	"贏單率":     "winningRate",
	"赢单率":     "winningRate",
	"安裝時間":    "installTime",
	"安装时间":    "installTime",
	"商機來源":    "opportunitySource",
	"商机来源":    "opportunitySource",
	"品牌":      "brandName",
	"品牌名稱":    "brandName",
	"品牌名称":    "brandName",
	"產品名稱":    "productName",
	"产品名称":    "productName",
	"產品分類":    "productClassName",
	"产品分类":    "productClassName",
	"產品線":     "productLineName",
	"产品线":     "productLineName",
	"方案編號":    "planCode",
	"方案编号":    "planCode",
	"備註":      "remark",
	"備注":      "remark",
	"备注":      "remark",
}
