package briefing

// FieldMap holds extracted briefing fields keyed by canonical field keys.
type FieldMap map[string]string

// Get returns the value for key, or "" when absent.
func (m FieldMap) Get(key string) string {
	return m[key]
}

// Choice is a resolved categorical value. It is either fully populated
// or replaced wholesale by the configured default, never partial.
type Choice struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// SaleArea is a sales territory resolved from address keywords.
type SaleArea struct {
	Label string `json:"label"`
	ID    string `json:"id"`
	Code  string `json:"code"`
}

// Owner is the account owner resolved from the briefing text.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerClass is the customer classification choice.
type CustomerClass struct {
	Label string `json:"label"`
	ID    string `json:"id"`
	Code  string `json:"code"`
}

// InstallTime carries a display form alongside the machine form. ISO is
// empty when the text could not be interpreted as a date.
type InstallTime struct {
	Display string `json:"display"`
	ISO     string `json:"iso,omitempty"`
}

// Qualification is the fixed qualification block attached to every
// customer application.
type Qualification struct {
	EnterpriseType    string `json:"enterpriseType"`
	QualificationType string `json:"qualificationType"`
}

// Customer is the normalized customer record produced from a briefing.
type Customer struct {
	CustomerCode string `json:"customerCode"`
	BaseName     string `json:"baseName"`
	DisplayName  string `json:"displayName"`
	ShortName    string `json:"shortName"`
	ContactTel   string `json:"contactTel"`
	ContactName  string `json:"contactName"`
	Address      string `json:"address"`

	SaleArea      *SaleArea      `json:"saleArea,omitempty"`
	CustomerClass *CustomerClass `json:"customerClass,omitempty"`
	PaymentMethod *Choice        `json:"paymentMethod,omitempty"`
	UsageMode     *Choice        `json:"usageMode,omitempty"`
	PaymentLabel  string         `json:"paymentLabel"`
	UsageLabel    string         `json:"usageLabel"`

	MonthlyFee  *float64 `json:"monthlyFee,omitempty"`
	Deposit     *float64 `json:"deposit,omitempty"`
	Prepay      *float64 `json:"prepay,omitempty"`
	TotalAmount *float64 `json:"totalAmount,omitempty"`

	InstallContent string       `json:"installContent"`
	Remark         string       `json:"remark"`
	InstallTime    *InstallTime `json:"installTime,omitempty"`

	OwnerHint     string        `json:"ownerHint,omitempty"`
	Owner         Owner         `json:"owner"`
	Qualification Qualification `json:"qualification"`

	// CustomerIndustry mirrors the payment method into the CRM industry
	// field when a binding exists.
	CustomerIndustry *IndustryRef `json:"customerIndustry,omitempty"`

	RawFields FieldMap `json:"rawFields"`
	RawText   string   `json:"-"`
}

// IndustryRef points at a CRM industry dictionary entry.
type IndustryRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Name  string `json:"name"`
}

// CustomerResult bundles the normalized customer with soft-degradation
// warnings collected during parsing.
type CustomerResult struct {
	Customer *Customer `json:"normalized"`
	Warnings []string  `json:"warnings"`
}

// ItemHint carries product descriptors for the opportunity item line.
type ItemHint struct {
	BrandName        string `json:"brand_name"`
	ProductName      string `json:"product_name"`
	ProductCode      string `json:"product_code"`
	ProductClassName string `json:"productClass_name"`
	ProductLineName  string `json:"productLine_name"`
	ManageClassName  string `json:"manageClass_name"`
}

// OpportunityContext is the normalized opportunity record, merged from
// opportunity briefing fields with customer-record fallbacks.
type OpportunityContext struct {
	Name            string `json:"name"`
	InstallLocation string `json:"installLocation"`
	UsageLabel      string `json:"usageLabel"`
	PlanType        string `json:"planType"`

	MonthlyFee  *float64 `json:"monthlyFee,omitempty"`
	TotalAmount *float64 `json:"totalAmount,omitempty"`
	Deposit     *float64 `json:"deposit,omitempty"`
	Prepay      *float64 `json:"prepay,omitempty"`

	ContractNumber    string `json:"contractNumber,omitempty"`
	ContractStartDate string `json:"contractStartDate,omitempty"`
	ContractEndDate   string `json:"contractEndDate,omitempty"`
	ContractYears     int    `json:"contractYears,omitempty"`

	ExpectSignDate  string   `json:"expectSignDate,omitempty"`
	ExpectSignMoney *float64 `json:"expectSignMoney,omitempty"`
	ExpectSignNum   *int     `json:"expectSignNum,omitempty"`

	Currency    string `json:"currency"`
	PaymentCode string `json:"paymentCode,omitempty"`
	WinningRate string `json:"winningRate"`

	OwnerHint       string `json:"ownerHint,omitempty"`
	StageHint       string `json:"stageHint,omitempty"`
	TransactionType string `json:"transactionType,omitempty"`
	OpportunityDate string `json:"opportunityDate"`
	InstallTime     string `json:"installTime,omitempty"`
	ContactMethod   string `json:"contactMethod,omitempty"`
	Remark          string `json:"remark,omitempty"`

	CustomerName string `json:"customerName"`
	CustomerCode string `json:"customerCode,omitempty"`
	CustomerID   string `json:"customerId,omitempty"`
	ContactTel   string `json:"contactTel,omitempty"`
	Address      string `json:"address,omitempty"`

	SaleAreaID         string `json:"saleAreaId,omitempty"`
	OwnerID            string `json:"ownerId,omitempty"`
	OwnerName          string `json:"ownerName,omitempty"`
	CustomerClassID    string `json:"customerClassId,omitempty"`
	CustomerClassLabel string `json:"customerClassLabel,omitempty"`

	ItemHint ItemHint `json:"itemHint"`
}

// OpportunityResult bundles the raw fields, the built context and the
// warnings from a single parse.
type OpportunityResult struct {
	Fields   FieldMap            `json:"fields"`
	Context  *OpportunityContext `json:"context"`
	Warnings []string            `json:"warnings"`
}
