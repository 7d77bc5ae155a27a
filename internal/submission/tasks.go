package submission

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"maqua-crm/internal/briefing"
	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/crm"
	"maqua-crm/internal/payload"
)

// Task type and routing ids in the production tenant.
const (
	taskNewInstallTypeID       = "1984155894542237704"
	taskNewInstallBustypeID    = "1984154580281720833"
	taskNewInstallActionType   = "1597134252596527112"
	taskNewInstallActionBustID = "1597128428638699526"

	taskQuarterlyFeeTypeID    = "1705112066885419012"
	taskQuarterlyFeeBustypeID = "1700013665820344329"

	taskFilterChangeTypeID       = "1587879680409075716"
	taskFilterChangeBustypeID    = "1587876974596980738"
	taskFilterChangeActionType   = "1587879199387942917"
	taskFilterChangeActionBustID = "1587877885106454533"

	taskRenewalTypeID    = "1984155413509046278"
	taskRenewalBustypeID = "1984154477184679941"
)

type taskExecutor struct {
	ID   string
	Name string
}

var (
	executorService     = taskExecutor{ID: "1482551268133044232", Name: "客服003"}
	executorMaintenance = taskExecutor{ID: "1655434173036888070", Name: "維修幫005"}
	executorCashier     = taskExecutor{ID: "1634618416471998473", Name: "出納008"}
)

// TaskOutcome is the result of one task save.
type TaskOutcome struct {
	Type     string       `json:"type"`
	Response crm.Response `json:"resp,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// TaskReport lists the tasks created for a customer.
type TaskReport struct {
	Message   string        `json:"message"`
	Responses []TaskOutcome `json:"responses"`
}

// taskSpec is the per-type slice of a task payload; the shared customer
// and opportunity references come from taskRef.
type taskSpec struct {
	code            string
	transType       string
	actionTransType string
	actionBustype   string
	bustype         string
	startDate       string
	endDate         string
	summary         string
	content         string
	amount          string
	executors       []taskExecutor
}

type taskRef struct {
	customerID   string
	customerName string
	saleArea     string
	opptID       string
	opptStage    string
}

// CreateTasksForCustomerCode creates the follow-up tasks for the most
// recent opportunity of a customer: the installation task, quarterly
// fee collections when the payment method calls for them, the filter
// change reminder and the renewal reminder.
func (s *Service) CreateTasksForCustomerCode(ctx context.Context, customerCode string) (*TaskReport, error) {
	customerCode = strings.TrimSpace(customerCode)
	if customerCode == "" {
		return nil, apperrors.NewValidationError("請提供客戶編碼。")
	}

	listResp, err := s.gateway.GetOpportunities(ctx, customerCode, 1, 1, "", "")
	if err != nil {
		return nil, err
	}
	records := listResp.RecordList()
	if len(records) == 0 {
		return nil, apperrors.NewLookupNotFoundError(fmt.Sprintf("找不到客戶 %s 的商機", customerCode))
	}
	latest := records[0]
	opptID := stringValue(latest["id"])
	if opptID == "" {
		return nil, apperrors.NewLookupNotFoundError("商機缺少 ID")
	}

	detail, err := s.gateway.GetOpportunityDetail(ctx, opptID)
	if err != nil {
		detail = crm.Response{}
	}
	data := detail.Data()
	head := mapOf(data["headDef"])
	defineChar := mapOf(data["opptDefineCharacter"])

	ref := taskRef{
		customerID:   firstNonEmpty(stringValue(latest["customer"]), stringValue(data["customer"])),
		customerName: firstNonEmpty(firstValue(latest, "customer_name", "customerName"), stringValue(data["customer_name"]), customerCode),
		saleArea:     firstNonEmpty(stringValue(latest["saleArea"]), stringValue(data["saleArea"])),
		opptID:       opptID,
		opptStage:    firstNonEmpty(stringValue(latest["opptStage"]), stringValue(data["opptStage"])),
	}

	amount := firstNonEmpty(stringValue(latest["expectSignMoney"]), stringValue(data["expectSignMoney"]))
	monthlyFee := firstNonEmpty(
		stringValue(head["define10"]),
		stringValue(latest["headDef!define10"]),
		stringValue(defineChar["attrext10"]),
	)
	paymentLabel := firstNonEmpty(stringValue(latest["industry_name"]), stringValue(data["industry_name"]))
	paymentCode := firstNonEmpty(stringValue(latest["industry"]), stringValue(data["industry"]))

	contractStart := firstNonEmpty(
		stringValue(data["contractBeginDate"]),
		stringValue(head["define2"]),
		stringValue(head["define17"]),
		stringValue(data["opptDate"]),
	)
	contractEnd := firstNonEmpty(
		stringValue(data["contractEndDate"]),
		stringValue(data["contractEnd"]),
		stringValue(head["define3"]),
		stringValue(head["define18"]),
	)

	installDate := dateOnly(contractStart)
	if installDate == "" {
		installDate = s.now().Format("2006-01-02")
	}

	content := s.installTaskContent(ctx, customerCode, latest, data, head, defineChar, ref, amount, installDate)

	report := &TaskReport{Message: "tasks created"}
	run := func(taskType string, spec taskSpec) {
		resp, err := s.gateway.CreateTask(ctx, payload.Tree{"data": s.taskPayload(spec, ref)})
		outcome := TaskOutcome{Type: taskType, Response: resp}
		if err != nil {
			outcome.Error = remoteMessage(err)
		}
		report.Responses = append(report.Responses, outcome)
	}

	run("new", taskSpec{
		code:            "TASKNEW" + s.now().Format("20060102150405"),
		transType:       taskNewInstallTypeID,
		actionTransType: taskNewInstallActionType,
		actionBustype:   taskNewInstallActionBustID,
		bustype:         taskNewInstallBustypeID,
		startDate:       installDate,
		endDate:         installDate,
		content:         content,
		amount:          amount,
		executors:       []taskExecutor{executorMaintenance, executorCashier},
	})

	s.createQuarterlyFeeTasks(paymentLabel, paymentCode, contractStart, contractEnd, monthlyFee, run)

	if next, productName, ok := s.findNextReplacementDate(data); ok {
		start := next.AddDate(0, 0, -14).Format("2006-01-02")
		taskContent := productName
		if taskContent == "" || isAllDigits(taskContent) {
			taskContent = "更換濾芯"
		}
		run("flt", taskSpec{
			code:            "TASKFLT" + s.now().Format("20060102150405"),
			transType:       taskFilterChangeTypeID,
			actionTransType: taskFilterChangeActionType,
			actionBustype:   taskFilterChangeActionBustID,
			bustype:         taskFilterChangeBustypeID,
			startDate:       start,
			endDate:         start,
			content:         taskContent,
			executors:       []taskExecutor{executorService, executorMaintenance},
		})
	}

	if end, ok := parseDateOnly(contractEnd); ok {
		start := end.AddDate(0, 0, -14).Format("2006-01-02")
		run("ren", taskSpec{
			code:            "TASKREN" + s.now().Format("20060102150405"),
			transType:       taskRenewalTypeID,
			actionTransType: taskFilterChangeActionType,
			actionBustype:   taskFilterChangeActionBustID,
			bustype:         taskRenewalBustypeID,
			startDate:       start,
			endDate:         start,
			content:         "續約",
			executors:       []taskExecutor{executorService, executorMaintenance, executorCashier},
		})
	}

	return report, nil
}

// createQuarterlyFeeTasks schedules one collection task per quarter
// between contract start plus one quarter and contract end minus one
// quarter. Only the quarterly payment method triggers this.
func (s *Service) createQuarterlyFeeTasks(
	paymentLabel, paymentCode, contractStart, contractEnd, monthlyFee string,
	run func(string, taskSpec),
) {
	isQuarterly := paymentLabel == "季度收費" ||
		paymentCode == "04" || paymentCode == "4" || paymentCode == "004"
	if !isQuarterly {
		return
	}
	start, okStart := parseDateOnly(contractStart)
	end, okEnd := parseDateOnly(contractEnd)
	if !okStart || !okEnd {
		return
	}

	amount := ""
	if fee, err := strconv.ParseFloat(strings.ReplaceAll(monthlyFee, ",", ""), 64); err == nil {
		amount = payload.FormatAmount(fee * 3)
	}

	first := briefing.AddMonths(start, 3)
	last := briefing.AddMonths(end, -3)
	for current := first; !current.After(last); current = briefing.AddMonths(current, 3) {
		periodEnd := briefing.AddMonths(current, 3)
		day := current.Format("2006-01-02")
		run("qfee", taskSpec{
			code:            "TASKQFEE" + s.now().Format("20060102150405") + uuid.NewString()[:2],
			transType:       taskQuarterlyFeeTypeID,
			actionTransType: taskNewInstallActionType,
			actionBustype:   taskNewInstallActionBustID,
			bustype:         taskQuarterlyFeeBustypeID,
			startDate:       day,
			endDate:         day,
			summary:         "（季度收費）",
			content:         fmt.Sprintf("%s 至 %s", day, periodEnd.Format("2006-01-02")),
			amount:          amount,
			executors:       []taskExecutor{executorCashier},
		})
	}
}

// installTaskContent prefers the stored full briefing text over the
// lossy CRM fields; without either it recomposes a briefing from the
// opportunity record.
func (s *Service) installTaskContent(
	ctx context.Context,
	customerCode string,
	latest map[string]interface{},
	data, head, defineChar map[string]interface{},
	ref taskRef,
	amount, installDate string,
) string {
	if stored, err := s.rawText.Load(ctx, customerCode); err == nil && strings.TrimSpace(stored) != "" {
		return strings.TrimSpace(stored)
	}
	if raw := firstNonEmpty(
		stringValue(head["define20"]),
		stringValue(data["define20"]),
		stringValue(defineChar["define20"]),
	); raw != "" {
		return raw
	}

	planType := firstNonEmpty(firstValue(latest, "description", "name"), stringValue(data["description"]))
	installLoc := firstNonEmpty(stringValue(latest["address"]), stringValue(data["address"]))
	contactTel := firstNonEmpty(stringValue(latest["contactTel"]), stringValue(data["contactTel"]))
	usage := firstNonEmpty(stringValue(latest["usage"]), stringValue(head["define8"]))

	lines := []struct {
		label string
		value string
	}{
		{"客戶名稱", ref.customerName},
		{"聯繫電話", contactTel},
		{"安裝時間", installDate},
		{"方案類型", planType},
		{"總金額", amount},
		{"聯絡地址", installLoc},
		{"使用方式", usage},
		{"付款方式", stringValue(latest["industry_name"])},
		{"月費金額", stringValue(head["define10"])},
		{"按金", stringValue(latest["deposit"])},
		{"預繳金", stringValue(latest["prepay"])},
		{"備注", firstNonEmpty(stringValue(latest["remark"]), stringValue(data["remark"]))},
	}
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.value != "" {
			parts = append(parts, line.label+"："+line.value)
		}
	}
	return strings.Join(parts, "\n")
}

func (s *Service) taskPayload(spec taskSpec, ref taskRef) payload.Tree {
	cfg := s.cfg.Submission
	defineChar := payload.Tree{}
	if spec.amount != "" {
		defineChar["RW01"] = spec.amount
	}

	executors := make([]interface{}, 0, len(spec.executors))
	for _, executor := range spec.executors {
		executors = append(executors, payload.Tree{
			"executor":               executor.ID,
			"executor_name":          executor.Name,
			"executeStatus":          "0",
			"reformStatus":           "0",
			"acceptStatus":           "0",
			"isUnlock":               "0",
			"startDate":              spec.startDate + " 00:00:00",
			"endDate":                spec.endDate + " 23:59:59",
			"excutorDefineCharacter": payload.Tree{},
			"_status":                "Insert",
		})
	}

	return payload.Tree{
		"code":             spec.code,
		"resubmitCheckKey": shortResubmitKey("task"),
		"org":              cfg.SalesOrgID,
		"taskTransType":    spec.transType,
		"taskTransType_actionTransType":        spec.actionTransType,
		"taskTransType_actionTransTypeBustype": spec.actionBustype,
		"bustype":          spec.bustype,
		"startDate":        spec.startDate + " 00:00:00",
		"endDate":          spec.endDate + " 23:59:59",
		"customer":         ref.customerID,
		"customer_name":    ref.customerName,
		"originator":       cfg.ServiceOwnerID,
		"originator_name":  cfg.ServiceOwnerName,
		"saleArea":         ref.saleArea,
		"dept":             cfg.ServiceDeptID,
		"dept_name":        cfg.ServiceDeptName,
		"summary":          spec.summary,
		"content":          spec.content,
		"oppt":             ref.opptID,
		"opptStage":        ref.opptStage,
		"ower":             cfg.ServiceOwnerID,
		"ower_name":        cfg.ServiceOwnerName,
		"systemSource":     cfg.SystemSource,
		"taskDefineCharacter": defineChar,
		"taskExecutorList":    executors,
		"taskRemindRuleList": []interface{}{
			payload.Tree{
				"remindPoint": "0",
				"advanceTime": "0",
				"timeUnit":    "0",
				"_status":     "Insert",
			},
		},
		"_status": "Insert",
	}
}

// findNextReplacementDate scans the opportunity items for the nearest
// consumable replacement date, preferring future dates over past ones.
func (s *Service) findNextReplacementDate(data map[string]interface{}) (time.Time, string, bool) {
	items, ok := data["opptItemList"].([]interface{})
	if !ok {
		return time.Time{}, "", false
	}

	type candidate struct {
		date time.Time
		name string
	}
	candidates := []candidate{}
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		body := mapOf(item["bodyDef"])
		name := firstNonEmpty(
			stringValue(body["productName"]),
			firstValue(item, "productName", "product_name", "product"),
			stringValue(body["name"]),
		)

		if next, ok := parseDateOnly(stringValue(body["define3"])); ok {
			candidates = append(candidates, candidate{next, name})
			continue
		}
		defineChar := mapOf(item["opptItemDefineCharacter"])
		if next, ok := parseDateOnly(stringValue(defineChar["attrext13"])); ok {
			candidates = append(candidates, candidate{next, name})
			continue
		}
		if base, ok := parseDateOnly(stringValue(body["define1"])); ok {
			if months, err := strconv.Atoi(stringValue(body["define2"])); err == nil && months > 0 {
				candidates = append(candidates, candidate{briefing.AddMonths(base, months), name})
			}
		}
	}
	if len(candidates) == 0 {
		return time.Time{}, "", false
	}

	today := s.now().Truncate(24 * time.Hour)
	best := candidate{}
	haveFuture := false
	for _, c := range candidates {
		if c.date.Before(today) {
			continue
		}
		if !haveFuture || c.date.Before(best.date) {
			best = c
			haveFuture = true
		}
	}
	if !haveFuture {
		best = candidates[0]
		for _, c := range candidates[1:] {
			if c.date.Before(best.date) {
				best = c
			}
		}
	}
	return best.date, best.name, true
}

// shortResubmitKey mints a resubmitCheckKey capped at 32 characters.
func shortResubmitKey(prefix string) string {
	base := strings.ReplaceAll(uuid.NewString(), "-", "")
	available := 32 - len(prefix) - 1
	if available < 1 {
		available = 1
	}
	if available > len(base) {
		available = len(base)
	}
	return prefix + "_" + base[:available]
}

func mapOf(value interface{}) map[string]interface{} {
	if m, ok := value.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func dateOnly(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	return strings.SplitN(text, " ", 2)[0]
}

func parseDateOnly(value string) (time.Time, bool) {
	text := dateOnly(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006.01.02"} {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

