package submission

import (
	"context"
	"fmt"
	"strings"

	"maqua-crm/internal/crm"
)

// followupAttempts are the filtered searches tried in order before the
// unfiltered page scan. Tenants differ in which filter field actually
// hits, so all spellings are attempted.
var followupAttempts = []struct {
	field    string
	operator string
}{
	{"customer.code", "eq"},
	{"customer.code", "like"},
	{"customer_name", "like"},
	{"customer.name", "like"},
}

// lookupCustomerIDByCode resolves the CRM entity id for a customer
// code. The freshly approved customer takes a moment to appear in the
// followup list, hence the retry loop.
func (s *Service) lookupCustomerIDByCode(ctx context.Context, customerCode string, retries int) string {
	if customerCode == "" {
		return ""
	}
	if retries < 1 {
		retries = 1
	}
	for attempt := 0; attempt < retries; attempt++ {
		if id := s.searchCustomerID(ctx, customerCode); id != "" {
			return id
		}
		s.sleep(lookupRetryDelay)
	}
	return ""
}

func (s *Service) searchCustomerID(ctx context.Context, customerCode string) string {
	codeUpper := strings.ToUpper(customerCode)

	for _, attempt := range followupAttempts {
		resp, err := s.gateway.GetFollowups(ctx, customerCode, 1, 10, attempt.field, attempt.operator)
		if err != nil {
			continue
		}
		if id := extractCustomerID(resp.RecordList(), codeUpper); id != "" {
			return id
		}
	}

	for page := 1; page <= 3; page++ {
		resp, err := s.gateway.GetFollowups(ctx, "", page, 20, "", "")
		if err != nil {
			continue
		}
		records := resp.RecordList()
		matches := make([]map[string]interface{}, 0, len(records))
		for _, record := range records {
			if matchFollowupRecord(record, codeUpper) {
				matches = append(matches, record)
			}
		}
		if len(matches) == 0 {
			matches = records
		}
		if id := extractCustomerID(matches, codeUpper); id != "" {
			return id
		}
	}
	return ""
}

func matchFollowupRecord(record map[string]interface{}, codeUpper string) bool {
	candidates := []interface{}{
		record["customerCode"],
		record["customer_code"],
		record["customerName"],
		record["customer_name"],
		record["name"],
	}
	if block, ok := record["customer"].(map[string]interface{}); ok {
		candidates = append(candidates, block["code"], block["name"])
	}
	for _, candidate := range candidates {
		text, ok := candidate.(string)
		if ok && strings.Contains(strings.ToUpper(text), codeUpper) {
			return true
		}
	}
	return false
}

func extractCustomerID(records []map[string]interface{}, codeUpper string) string {
	for _, record := range records {
		customerID := firstValue(record, "customerId", "customer_id", "customerID")
		if customerID == "" {
			switch block := record["customer"].(type) {
			case string:
				customerID = block
			case map[string]interface{}:
				customerID = stringValue(block["id"])
			}
		}
		if customerID != "" && matchFollowupRecord(record, codeUpper) {
			return customerID
		}
	}
	return ""
}

// extractCreatedCustomerID pulls the new customer id out of the
// application response, checking both the flat data block and the
// nested newBizObject.
func extractCreatedCustomerID(resp crm.Response) string {
	data := resp.Data()
	blocks := []map[string]interface{}{data}
	if nested, ok := data["newBizObject"].(map[string]interface{}); ok {
		blocks = append(blocks, nested)
	}
	for _, block := range blocks {
		if customer, ok := block["customer"].(map[string]interface{}); ok {
			if id := stringValue(customer["id"]); id != "" {
				return id
			}
		}
		if id := firstValue(block, "customerId", "customerID", "custId", "custID"); id != "" {
			return id
		}
	}
	return ""
}

// extractCustomerEntityID finds the application entity id, falling back
// to the ids carried by the nested collections.
func extractCustomerEntityID(resp crm.Response) string {
	data := resp.Data()
	if id := stringValue(data["id"]); id != "" {
		return id
	}
	collections := []string{
		"customerAreas",
		"merchantAddressInfos",
		"merchantAppliedDetail",
		"merchantApplyRanges",
		"principals",
	}
	for _, key := range collections {
		items, ok := data[key].([]interface{})
		if !ok {
			continue
		}
		for _, raw := range items {
			item, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			if id := firstValue(item, "customerId", "merchantId", "merchantApplyRangeId"); id != "" {
				return id
			}
		}
	}
	return ""
}

func firstValue(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if text := stringValue(record[key]); text != "" {
			return text
		}
	}
	return ""
}

// stringValue renders a decoded JSON scalar as a trimmed string.
// Numeric ids come back as float64 and must not pick up an exponent or
// fraction on the way out.
func stringValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
