package config

import "time"

// Config is the root configuration for the service. Values come from
// config.yaml with environment-variable overrides; see loader.go.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CRM        CRMConfig        `mapstructure:"crm"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Submission SubmissionConfig `mapstructure:"submission"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CRMConfig holds the YonBIP gateway connection settings.
type CRMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AuthURL     string        `mapstructure:"auth_url"`
	AppKey      string        `mapstructure:"app_key"`
	AppSecret   string        `mapstructure:"app_secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TokenMargin time.Duration `mapstructure:"token_margin"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SubmissionConfig carries the CRM entity ids and field bindings used
// when building customer and opportunity payloads. The defaults mirror
// the production tenant.
type SubmissionConfig struct {
	SystemSource    string `mapstructure:"system_source"`
	BustypeID       string `mapstructure:"bustype_id"`
	ApplicantOrgID  string `mapstructure:"applicant_org_id"`
	ApplicantUserID string `mapstructure:"applicant_user_id"`
	ApplicantDeptID string `mapstructure:"applicant_dept_id"`

	ServiceOwnerID   string `mapstructure:"service_owner_id"`
	ServiceOwnerName string `mapstructure:"service_owner_name"`
	ServiceDeptID    string `mapstructure:"service_dept_id"`
	ServiceDeptName  string `mapstructure:"service_dept_name"`
	OwnerJamesID     string `mapstructure:"owner_james_id"`
	OwnerLiangID     string `mapstructure:"owner_liang_id"`
	OwnerLizID       string `mapstructure:"owner_liz_id"`
	SalesOrgID       string `mapstructure:"sales_org_id"`

	TransTypeID        string `mapstructure:"trans_type_id"`
	CustomerIndustryID string `mapstructure:"customer_industry_id"`
	TaxCategory        int    `mapstructure:"tax_category"`
	EnterpriseNature   int    `mapstructure:"enterprise_nature"`
	LicenseType        int    `mapstructure:"license_type"`
	DefaultPaymentWay  string `mapstructure:"default_payment_way"`
	CustomerLevelID    string `mapstructure:"customer_level_id"`
	SearchCodePrefix   string `mapstructure:"searchcode_prefix"`
	DefaultRegionCode  string `mapstructure:"default_region_code"`
	ParentManageOrgID  string `mapstructure:"parent_manage_org_id"`

	// Field bindings: where parsed values land in the customer payload.
	PaymentField    string `mapstructure:"payment_field"`
	PlanField       string `mapstructure:"plan_field"`
	RemarkField     string `mapstructure:"remark_field"`
	UsageField      string `mapstructure:"usage_field"`
	MonthlyFeeField string `mapstructure:"monthly_fee_field"`

	// Per-payment-method industry overrides, keyed by two-digit code.
	PaymentIndustryIDs map[string]string `mapstructure:"payment_industry_ids"`

	AttachContactRecords bool `mapstructure:"attach_contact_records"`

	// CreateOpportunity makes Run create the opportunity inline once the
	// audit passes. When false the caller triggers it later through the
	// opportunity session token.
	CreateOpportunity bool `mapstructure:"create_opportunity"`

	Opportunity OpportunityConfig `mapstructure:"opportunity"`
	Session     SessionConfig     `mapstructure:"session"`
}

// OpportunityConfig holds stage ids and contract rules for opportunity
// creation.
type OpportunityConfig struct {
	BustypeID   string `mapstructure:"bustype_id"`
	TransTypeID string `mapstructure:"trans_type_id"`
	MainBillNum string `mapstructure:"main_bill_num"`
	Currency    string `mapstructure:"currency"`
	Source      string `mapstructure:"source"`
	SystemCode  string `mapstructure:"system_code"`

	StageRentID             string `mapstructure:"stage_rent_id"`
	StageRentProcessID      string `mapstructure:"stage_rent_process_id"`
	StageRentProcessStageID string `mapstructure:"stage_rent_process_stage_id"`
	StageBuyID              string `mapstructure:"stage_buy_id"`
	StageBuyProcessID       string `mapstructure:"stage_buy_process_id"`
	StageBuyProcessStageID  string `mapstructure:"stage_buy_process_stage_id"`

	ContractDefaultYears  int      `mapstructure:"contract_default_years"`
	ContractExtendedYears int      `mapstructure:"contract_extended_years"`
	ContractKeywords      []string `mapstructure:"contract_keywords"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}
