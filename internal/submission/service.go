// Package submission orchestrates the briefing-to-CRM pipeline: parse
// the text, check duplicates, submit and audit the customer
// application, then create the opportunity and its follow-up tasks.
package submission

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/catalog"
	"maqua-crm/internal/common/config"
	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/common/logger"
	"maqua-crm/internal/common/metrics"
	"maqua-crm/internal/crm"
	"maqua-crm/internal/payload"
)

const lookupRetryDelay = time.Second

// Gateway is the slice of the CRM client the submission flow uses.
type Gateway interface {
	GetFollowups(ctx context.Context, keyword string, page, pageSize int, field, operator string) (crm.Response, error)
	CreateTask(ctx context.Context, payload map[string]interface{}) (crm.Response, error)
	GetOpportunities(ctx context.Context, customerCode string, page, pageSize int, field, operator string) (crm.Response, error)
	GetOpportunityDetail(ctx context.Context, opportunityID string) (crm.Response, error)
	CheckOpportunityRepeat(ctx context.Context, payload map[string]interface{}) (crm.Response, error)
	CreateOpportunity(ctx context.Context, payload map[string]interface{}) (crm.Response, error)
	CustomerDuplicateCheck(ctx context.Context, payload map[string]interface{}) (crm.Response, error)
	SubmitCustomerApplication(ctx context.Context, payload map[string]interface{}) (crm.Response, error)
	AuditCustomerApplication(ctx context.Context, payload map[string]interface{}) (crm.Response, error)
}

// Service runs submissions end to end.
type Service struct {
	cfg          *config.Config
	gateway      Gateway
	engine       *briefing.Engine
	contexts     *briefing.ContextBuilder
	catalog      *catalog.Catalog
	sessions     *SessionStore
	rawText      RawTextStore
	dictionaries *dictionaryCache
	log          logger.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewService wires the submission pipeline.
func NewService(cfg *config.Config, gateway Gateway, rawText RawTextStore, log logger.Logger) *Service {
	if rawText == nil {
		rawText = NewMemoryRawTextStore(0)
	}
	return &Service{
		cfg:          cfg,
		gateway:      gateway,
		engine:       briefing.NewEngine(briefing.DefaultOptions(), log),
		contexts:     briefing.NewContextBuilder(log),
		catalog:      catalog.Default(),
		sessions:     NewSessionStore(cfg.Submission.Session.TTL),
		rawText:      rawText,
		dictionaries: newDictionaryCache(30 * time.Minute),
		log:          log,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// RunOptions tweak a single submission.
type RunOptions struct {
	// SkipAudit submits the application but leaves it unaudited.
	SkipAudit bool
	// PaymentMethod overrides the payment method parsed from the text.
	PaymentMethod string
}

// SessionInfo points the caller at the stored opportunity session.
type SessionInfo struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// RunResult is the full outcome of one submission.
type RunResult struct {
	Submitted           bool                         `json:"submitted"`
	Message             string                       `json:"message,omitempty"`
	Warnings            []string                     `json:"warnings"`
	DuplicateResponse   crm.Response                 `json:"duplicateResponse,omitempty"`
	ApplicationResponse crm.Response                 `json:"applicationResponse,omitempty"`
	AuditResponse       crm.Response                 `json:"auditResponse,omitempty"`
	Customer            *briefing.Customer           `json:"normalized,omitempty"`
	OpportunityContext  *briefing.OpportunityContext `json:"opportunityContext,omitempty"`
	OpportunitySession  *SessionInfo                 `json:"opportunitySession,omitempty"`
	Opportunity         *OpportunityOutcome          `json:"opportunityResponse,omitempty"`
}

// OpportunityOutcome reports the opportunity-creation step.
type OpportunityOutcome struct {
	Skipped           bool                         `json:"skipped"`
	Success           bool                         `json:"success"`
	Reason            string                       `json:"reason,omitempty"`
	Duplicates        []interface{}                `json:"duplicates,omitempty"`
	DuplicateResponse crm.Response                 `json:"duplicateResponse,omitempty"`
	CreateResponse    crm.Response                 `json:"createResponse,omitempty"`
	Context           *briefing.OpportunityContext `json:"context,omitempty"`
}

// Run parses the briefing text and pushes the customer into the CRM:
// duplicate check, application, audit, and an opportunity session for
// the follow-up creation step.
func (s *Service) Run(ctx context.Context, text string, opts RunOptions) (*RunResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("請提供銷售文案內容。")
	}

	parsed, err := s.engine.ParseCustomer(text, true)
	if err != nil {
		return nil, err
	}
	customer := parsed.Customer
	customer.RawText = text
	if customer.CustomerCode != "" {
		if err := s.rawText.Save(ctx, customer.CustomerCode, text); err != nil && s.log != nil {
			s.log.Warn("raw text save failed", map[string]interface{}{"error": err.Error()})
		}
	}

	result := &RunResult{
		Warnings: append([]string{}, parsed.Warnings...),
		Customer: customer,
	}

	oppParsed := s.contexts.ParseOpportunity(text, customer)
	oppCtx := oppParsed.Context
	result.OpportunityContext = oppCtx
	for _, warning := range oppParsed.Warnings {
		if warning != "" {
			result.Warnings = append(result.Warnings, "商機："+warning)
		}
	}

	if override := strings.TrimSpace(opts.PaymentMethod); override != "" {
		code := payload.SanitizePaymentCode(override, s.cfg.Submission.DefaultPaymentWay)
		customer.PaymentMethod = &briefing.Choice{ID: code, Label: override}
		customer.PaymentLabel = override
		customer.CustomerIndustry = &briefing.IndustryRef{
			ID:    s.cfg.Submission.CustomerIndustryID,
			Name:  override,
			Label: override,
		}
	}

	if stop := s.checkCustomerDuplicates(ctx, customer, result); stop {
		metrics.SubmissionTotal.WithLabelValues("duplicate").Inc()
		return result, nil
	}

	appResp, ok := s.submitApplication(ctx, customer, result)
	if !ok {
		metrics.SubmissionTotal.WithLabelValues("failed").Inc()
		return result, nil
	}
	result.Submitted = true
	result.ApplicationResponse = appResp

	auditSuccess := s.auditApplication(ctx, appResp, opts.SkipAudit, result)

	if entityID := extractCustomerEntityID(appResp); entityID != "" && oppCtx != nil && oppCtx.CustomerID == "" {
		oppCtx.CustomerID = entityID
	}

	token := s.sessions.Remember(&Session{
		Customer:            customer,
		Context:             oppCtx,
		ApplicationResponse: appResp,
	})
	result.OpportunitySession = &SessionInfo{
		Token:     token,
		ExpiresIn: int(s.sessions.TTL().Seconds()),
	}

	if s.cfg.Submission.CreateOpportunity {
		result.Opportunity = s.createOpportunityForCustomer(ctx, customer, oppCtx, appResp, auditSuccess)
		if result.Opportunity != nil && result.Opportunity.Context != nil {
			result.OpportunityContext = result.Opportunity.Context
		}
	}

	metrics.SubmissionTotal.WithLabelValues("submitted").Inc()
	return result, nil
}

// checkCustomerDuplicates runs the duplicate check and reports whether
// the submission must stop. Check failures are recorded but do not
// block the submission.
func (s *Service) checkCustomerDuplicates(ctx context.Context, customer *briefing.Customer, result *RunResult) bool {
	resp, err := s.gateway.CustomerDuplicateCheck(ctx, payload.BuildDuplicatePayload(customer, s.cfg.Submission))
	if err != nil {
		result.DuplicateResponse = crm.Response{"error": remoteMessage(err)}
		return false
	}
	result.DuplicateResponse = resp
	if len(duplicateRecords(resp)) > 0 {
		result.Message = "發現重複客戶，已停止送出。"
		return true
	}
	return false
}

// submitApplication submits the customer application, recovering from
// the two known rejection modes: a pending application locking the
// customer code, and a payment dictionary value still under review.
func (s *Service) submitApplication(ctx context.Context, customer *briefing.Customer, result *RunResult) (crm.Response, bool) {
	submit := func() (crm.Response, error) {
		return s.gateway.SubmitCustomerApplication(ctx, payload.BuildApplyPayload(customer, s.cfg.Submission, s.now()))
	}

	appResp, err := submit()
	if err == nil {
		return appResp, true
	}

	message := remoteMessage(err)
	switch {
	case isPendingApplicationError(message):
		newCode := s.applyNewCustomerCode(customer)
		if newCode == "" {
			result.ApplicationResponse = crm.Response{"error": message}
			result.Message = message
			return nil, false
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("原客戶編碼因 CRM 待審申請被鎖定，已改為 %s 後重新送出。", newCode))
		if stop := s.checkCustomerDuplicates(ctx, customer, result); stop {
			return nil, false
		}
		appResp, err = submit()
		if err != nil {
			retryMessage := remoteMessage(err)
			result.ApplicationResponse = crm.Response{"error": retryMessage, "codeRetry": true}
			result.Message = retryMessage
			return nil, false
		}
		return appResp, true

	case isPaymentPendingError(message):
		result.Warnings = append(result.Warnings,
			"CRM 回報付款方式欄位待審，已改用原始中文描述回填 customerIndustry。")
		customer.PaymentMethod = nil
		customer.CustomerIndustry = nil
		appResp, err = submit()
		if err != nil {
			pendingMessage := remoteMessage(err)
			result.ApplicationResponse = crm.Response{"error": pendingMessage}
			result.Message = pendingMessage
			return nil, false
		}
		return appResp, true

	default:
		result.ApplicationResponse = crm.Response{"error": message}
		result.Message = message
		return nil, false
	}
}

func (s *Service) auditApplication(ctx context.Context, appResp crm.Response, skip bool, result *RunResult) bool {
	if skip {
		result.AuditResponse = crm.Response{"skipped": true}
		return true
	}
	applicationID := stringValue(appResp.Data()["id"])
	if applicationID == "" {
		if nested, ok := appResp.Data()["newBizObject"].(map[string]interface{}); ok {
			applicationID = stringValue(nested["id"])
		}
	}
	if applicationID == "" {
		result.AuditResponse = crm.Response{"skipped": true, "reason": "未取得申請ID"}
		result.Message = "已送出申請，但取不到申請單 ID，請到 CRM 後台確認。"
		return false
	}

	auditResp, err := s.gateway.AuditCustomerApplication(ctx, payload.BuildAuditPayload(applicationID, s.cfg.Submission))
	if err != nil {
		message := remoteMessage(err)
		result.AuditResponse = crm.Response{"error": message}
		result.Message = message
		return false
	}
	result.AuditResponse = auditResp
	return true
}

// CreateOpportunityFromSession creates the opportunity for a submission
// remembered earlier. The session is consumed on success so a retry
// button cannot double-create.
func (s *Service) CreateOpportunityFromSession(ctx context.Context, token string) (*OpportunityOutcome, error) {
	sess, ok := s.sessions.Get(token)
	if !ok {
		return nil, apperrors.NewLookupNotFoundError("找不到對應的商機資料，請重新送出客戶資訊。")
	}
	outcome := s.createOpportunityForCustomer(ctx, sess.Customer, sess.Context, sess.ApplicationResponse, true)
	if outcome.Success {
		s.sessions.Consume(token)
	}
	return outcome, nil
}

func (s *Service) createOpportunityForCustomer(
	ctx context.Context,
	customer *briefing.Customer,
	oppCtx *briefing.OpportunityContext,
	appResp crm.Response,
	auditPassed bool,
) *OpportunityOutcome {
	if oppCtx == nil {
		return &OpportunityOutcome{Skipped: true, Reason: "未提供商機欄位"}
	}
	if !auditPassed {
		return &OpportunityOutcome{Skipped: true, Reason: "客戶尚未審核通過，暫不建立商機"}
	}

	customerID := firstNonEmpty(
		extractCreatedCustomerID(appResp),
		oppCtx.CustomerID,
		extractCustomerEntityID(appResp),
	)
	if customerID == "" {
		customerID = s.lookupCustomerIDByCode(ctx, firstNonEmpty(oppCtx.CustomerCode, customer.CustomerCode), 3)
	}
	if customerID == "" {
		return &OpportunityOutcome{Skipped: true, Reason: "CRM 回傳缺少客戶 ID，無法建立商機"}
	}
	oppCtx.CustomerID = customerID

	if oppCtx.CustomerName == "" {
		oppCtx.CustomerName = firstNonEmpty(customer.DisplayName, customer.BaseName)
	}
	if oppCtx.CustomerCode == "" {
		oppCtx.CustomerCode = customer.CustomerCode
	}
	s.applyOpportunityOwner(customer, oppCtx)
	if oppCtx.WinningRate == "" {
		oppCtx.WinningRate = "0"
	}
	if oppCtx.Name == "" {
		oppCtx.Name = fmt.Sprintf("%s - %s",
			firstNonEmpty(oppCtx.CustomerName, "商機"),
			firstNonEmpty(oppCtx.PlanType, "方案"))
	}
	if oppCtx.Currency == "" {
		oppCtx.Currency = s.cfg.Submission.Opportunity.Currency
	}
	if oppCtx.ContactMethod == "" {
		oppCtx.ContactMethod = oppCtx.ContactTel
	}

	outcome := &OpportunityOutcome{Context: oppCtx}

	dupResp, err := s.gateway.CheckOpportunityRepeat(ctx,
		payload.BuildOpportunityDuplicateRequest(oppCtx, s.cfg.Submission))
	skipDuplicateCheck := false
	if err != nil {
		message := remoteMessage(err)
		if isDuplicateRuleMissingError(message) {
			skipDuplicateCheck = true
			outcome.DuplicateResponse = crm.Response{"error": message, "skipRule": true}
		} else {
			outcome.Skipped = true
			outcome.Reason = "商機查重失敗：" + message
			outcome.DuplicateResponse = crm.Response{"error": message}
			return outcome
		}
	} else {
		outcome.DuplicateResponse = dupResp
	}
	if !skipDuplicateCheck {
		if duplicates := duplicateRecords(dupResp); len(duplicates) > 0 {
			outcome.Skipped = true
			outcome.Reason = "商機查重已存在記錄，未重新建立。"
			outcome.Duplicates = duplicates
			return outcome
		}
	}

	stageValue, stageKind := s.resolveStage(ctx, oppCtx)
	params := payload.OpportunityParams{
		Code:           payload.GenerateOpportunityCode(oppCtx.CustomerCode, s.now()),
		StageValue:     stageValue,
		StageKind:      stageKind,
		TransTypeValue: s.resolveTransType(ctx, oppCtx),
		RawText:        customer.RawText,
		Now:            s.now(),
	}
	body := payload.BuildOpportunityCreatePayload(oppCtx, customer, s.catalog, s.cfg.Submission, params)

	createResp, err := s.gateway.CreateOpportunity(ctx, body)
	if err != nil {
		message := remoteMessage(err)
		outcome.CreateResponse = crm.Response{"error": message}
		outcome.Reason = message
		return outcome
	}
	outcome.CreateResponse = createResp
	outcome.Success = true
	return outcome
}

// applyOpportunityOwner maps the parsed owner hint through the sales
// whitelist. Anything outside the whitelist, including an empty hint,
// lands on the service account.
func (s *Service) applyOpportunityOwner(customer *briefing.Customer, oppCtx *briefing.OpportunityContext) {
	cfg := s.cfg.Submission
	hint := strings.ToLower(strings.TrimSpace(firstNonEmpty(oppCtx.OwnerHint, customer.OwnerHint)))
	switch hint {
	case "liz":
		oppCtx.OwnerID, oppCtx.OwnerName = cfg.OwnerLizID, "LIZ"
	case "james":
		oppCtx.OwnerID, oppCtx.OwnerName = cfg.OwnerJamesID, "James"
	case "成":
		oppCtx.OwnerID, oppCtx.OwnerName = cfg.OwnerLiangID, "成"
	case "寧":
		oppCtx.OwnerID, oppCtx.OwnerName = cfg.OwnerJamesID, "寧"
	default:
		oppCtx.OwnerID, oppCtx.OwnerName = cfg.ServiceOwnerID, cfg.ServiceOwnerName
	}
}

// applyNewCustomerCode regenerates the customer code and reshapes the
// derived name fields around it. Returns "" when nothing changed.
func (s *Service) applyNewCustomerCode(customer *briefing.Customer) string {
	newCode := s.engine.GenerateCustomerCode(customer.CustomerCode)
	if newCode == "" || newCode == customer.CustomerCode {
		return ""
	}
	customer.CustomerCode = newCode
	customer.DisplayName = strings.TrimSpace(newCode + customer.BaseName + customer.ContactTel)
	if customer.DisplayName == "" {
		customer.DisplayName = newCode
	}
	customer.ShortName = strings.TrimSpace(newCode + customer.BaseName)
	if customer.ShortName == "" {
		customer.ShortName = newCode
	}
	if customer.RawFields != nil && customer.RawFields["customerName"] != "" {
		customer.RawFields["customerName"] = strings.TrimSpace(customer.BaseName + " " + newCode)
	}
	return newCode
}

// duplicateRecords digs the duplicate hit list out of a check response.
// The gateway returns either a bare list or an object wrapping one.
func duplicateRecords(resp crm.Response) []interface{} {
	if resp == nil {
		return nil
	}
	switch data := resp["data"].(type) {
	case []interface{}:
		return data
	case map[string]interface{}:
		if records, ok := data["recordList"].([]interface{}); ok {
			return records
		}
		if records, ok := data["data"].([]interface{}); ok {
			return records
		}
	}
	return nil
}

// remoteMessage flattens a gateway error into the text the recovery
// rules match against, including the rejection code when present.
func remoteMessage(err error) string {
	if err == nil {
		return ""
	}
	var stdErr *apperrors.StandardError
	if !stderrors.As(err, &stdErr) {
		return err.Error()
	}
	parts := []string{}
	if msg, ok := stdErr.Metadata["message"].(string); ok && msg != "" {
		parts = append(parts, msg)
	}
	if resp, ok := stdErr.Metadata["response"].(crm.Response); ok {
		if code := stringValue(resp["code"]); code != "" {
			parts = append(parts, code)
		}
	}
	if len(parts) == 0 {
		return stdErr.Message
	}
	return strings.Join(parts, " ")
}

func isPendingApplicationError(message string) bool {
	return strings.Contains(message, "090-501-200376") || strings.Contains(message, "在申请")
}

func isPaymentPendingError(message string) bool {
	return strings.Contains(message, "090-501-200377")
}

func isDuplicateRuleMissingError(message string) bool {
	text := strings.TrimSpace(message)
	if text == "" {
		return false
	}
	return strings.Contains(text, "未设置查重规则") || strings.Contains(text, "090-501-101397")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
