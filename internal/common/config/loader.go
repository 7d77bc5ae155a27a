package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from config.yaml (optional), a .env file
// (optional), and MAQUA_* environment variables, in increasing order of
// precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("MAQUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("crm.base_url", "https://c2.yonyoucloud.com/iuap-api-gateway")
	v.SetDefault("crm.auth_url", "https://c2.yonyoucloud.com/iuap-api-auth")
	v.SetDefault("crm.timeout", 30*time.Second)
	v.SetDefault("crm.token_margin", 60*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("submission.system_source", "auto_crm")
	v.SetDefault("submission.bustype_id", "1779393122472558598")
	v.SetDefault("submission.applicant_org_id", "2816765183021312")
	v.SetDefault("submission.applicant_user_id", "1634633148216115210")
	v.SetDefault("submission.applicant_dept_id", "1482538237314465798")
	v.SetDefault("submission.service_owner_id", "1482551268133044232")
	v.SetDefault("submission.service_owner_name", "客服003")
	v.SetDefault("submission.service_dept_id", "1482538237314465798")
	v.SetDefault("submission.service_dept_name", "客服部")
	v.SetDefault("submission.owner_james_id", "1634633148216115210")
	v.SetDefault("submission.owner_liang_id", "1675717018645954563")
	v.SetDefault("submission.owner_liz_id", "1804041613437042698")
	v.SetDefault("submission.sales_org_id", "2816765183021312")
	v.SetDefault("submission.trans_type_id", "1476790952607089117")
	v.SetDefault("submission.customer_industry_id", "1580721825339932673")
	v.SetDefault("submission.tax_category", 0)
	v.SetDefault("submission.enterprise_nature", 1)
	v.SetDefault("submission.license_type", 3)
	v.SetDefault("submission.default_payment_way", "99")
	v.SetDefault("submission.searchcode_prefix", "AUTO")
	v.SetDefault("submission.payment_field", "merchantAppliedDetail!payway")
	v.SetDefault("submission.plan_field", "merchantCharacter__customerDefine6")
	v.SetDefault("submission.remark_field", "merchantCharacter__customerDefine7")
	v.SetDefault("submission.usage_field", "largeText1")
	v.SetDefault("submission.monthly_fee_field", "largeText3")

	v.SetDefault("submission.opportunity.bustype_id", "1779393122472558598")
	v.SetDefault("submission.opportunity.trans_type_id", "1476790952607089117")
	v.SetDefault("submission.opportunity.main_bill_num", "sfa_opptcard")
	v.SetDefault("submission.opportunity.currency", "MOP")
	v.SetDefault("submission.opportunity.system_code", "opptOpenApIAdd")
	v.SetDefault("submission.opportunity.stage_rent_id", "1587859872035110919")
	v.SetDefault("submission.opportunity.stage_rent_process_id", "1607907035615068175")
	v.SetDefault("submission.opportunity.stage_rent_process_stage_id", "1607907035615068223")
	v.SetDefault("submission.opportunity.stage_buy_id", "1476791442110679300")
	v.SetDefault("submission.opportunity.stage_buy_process_id", "1607907035615068175")
	v.SetDefault("submission.opportunity.stage_buy_process_stage_id", "1607907035615068211")
	v.SetDefault("submission.opportunity.contract_default_years", 2)
	v.SetDefault("submission.opportunity.contract_extended_years", 3)
	v.SetDefault("submission.opportunity.contract_keywords", []string{"HS990", "HM190", "HM290"})

	v.SetDefault("submission.create_opportunity", false)

	v.SetDefault("submission.session.ttl", time.Hour)
}
