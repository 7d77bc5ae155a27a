// Package crm is the thin HTTP client for the YonBIP CRM gateway. All
// domain decisions live in the callers; this package handles transport,
// authentication and the response envelope.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"maqua-crm/internal/common/config"
	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/common/logger"
	"maqua-crm/internal/common/metrics"
)

// Gateway endpoint paths.
const (
	followupListPath         = "/yonbip/crm/followup/list"
	taskListPath             = "/yonbip/crm/task/list"
	taskSavePath             = "/yonbip/crm/task/save"
	opportunityListPath      = "/yonbip/crm/oppt/bill/list"
	opportunityDetailPath    = "/yonbip/crm/oppt/getbyid"
	opportunityRepeatPath    = "/yonbip/crm/bill/opptcheckrepeat"
	opportunityCreatePath    = "/yonbip/crm/bill/opptsave"
	customerDetailPath       = "/yonbip/crm/customer/getbyid"
	customerAddressListPath  = "/yonbip/digitalModel/merchant/listaddressbycodelist"
	customerDuplicatePath    = "/yonbip/crm/bill/custcheckrepeat"
	customerApplicationPath  = "/yonbip/crm/custaddapply/save"
	customerAuditPath        = "/yonbip/crm/customeraddapply/audit"
)

// Response is a decoded gateway response body.
type Response map[string]interface{}

// Data returns the "data" object of the envelope, or an empty map.
func (r Response) Data() map[string]interface{} {
	if data, ok := r["data"].(map[string]interface{}); ok {
		return data
	}
	return map[string]interface{}{}
}

// RecordList returns data.recordList as a slice of records.
func (r Response) RecordList() []map[string]interface{} {
	raw, ok := r.Data()["recordList"].([]interface{})
	if !ok {
		return nil
	}
	records := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if record, ok := item.(map[string]interface{}); ok {
			records = append(records, record)
		}
	}
	return records
}

// Client calls the YonBIP CRM gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	log        logger.Logger
}

// NewClient builds a gateway client.
func NewClient(cfg config.CRMConfig, tokens TokenProvider, log logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		log:        log,
	}
}

// GetFollowups lists followup records, optionally filtered. field and
// operator default to a fuzzy customer-name match.
func (c *Client) GetFollowups(ctx context.Context, keyword string, page, pageSize int, field, operator string) (Response, error) {
	body := map[string]interface{}{"pageIndex": page, "pageSize": pageSize}
	if keyword != "" {
		if field == "" {
			field = "customer.name"
		}
		if operator == "" {
			operator = "like"
		}
		body["simpleVOs"] = []interface{}{
			map[string]interface{}{"field": field, "op": operator, "value1": keyword},
		}
	}
	return c.request(ctx, http.MethodPost, followupListPath, "followup_list", nil, body)
}

// GetTasks lists tasks, optionally filtered by customer code.
func (c *Client) GetTasks(ctx context.Context, customerCode string, page, pageSize int) (Response, error) {
	body := map[string]interface{}{"pageIndex": page, "pageSize": pageSize}
	if customerCode != "" {
		body["simpleVOs"] = []interface{}{
			map[string]interface{}{"field": "customer.name", "op": "like", "value1": customerCode},
		}
	}
	return c.request(ctx, http.MethodPost, taskListPath, "task_list", nil, body)
}

// CreateTask saves a task.
func (c *Client) CreateTask(ctx context.Context, payload map[string]interface{}) (Response, error) {
	return c.request(ctx, http.MethodPost, taskSavePath, "task_create", nil, payload)
}

// GetOpportunities lists opportunities, optionally filtered. field and
// operator default to an exact customer-code match.
func (c *Client) GetOpportunities(ctx context.Context, customerCode string, page, pageSize int, field, operator string) (Response, error) {
	body := map[string]interface{}{"pageIndex": page, "pageSize": pageSize}
	if customerCode != "" {
		if field == "" {
			field = "customer.code"
		}
		if operator == "" {
			operator = "eq"
		}
		body["simpleVOs"] = []interface{}{
			map[string]interface{}{"field": field, "op": operator, "value1": customerCode},
		}
	}
	return c.request(ctx, http.MethodPost, opportunityListPath, "opportunity_list", nil, body)
}

// GetOpportunityDetail loads one opportunity by id. Some tenants only
// accept POST here, so a GET failure falls back to POST.
func (c *Client) GetOpportunityDetail(ctx context.Context, opportunityID string) (Response, error) {
	if opportunityID == "" {
		return Response{"data": map[string]interface{}{}}, nil
	}
	params := url.Values{"id": []string{opportunityID}}
	resp, err := c.request(ctx, http.MethodGet, opportunityDetailPath, "opportunity_detail", params, nil)
	if err == nil {
		return resp, nil
	}
	return c.request(ctx, http.MethodPost, opportunityDetailPath, "opportunity_detail", params,
		map[string]interface{}{"id": opportunityID})
}

// CheckOpportunityRepeat runs the opportunity duplicate check.
func (c *Client) CheckOpportunityRepeat(ctx context.Context, payload map[string]interface{}) (Response, error) {
	return c.request(ctx, http.MethodPost, opportunityRepeatPath, "opportunity_duplicate", nil, payload)
}

// CreateOpportunity saves an opportunity.
func (c *Client) CreateOpportunity(ctx context.Context, payload map[string]interface{}) (Response, error) {
	return c.request(ctx, http.MethodPost, opportunityCreatePath, "opportunity_create", nil, payload)
}

// GetCustomerDetail loads one customer by id.
func (c *Client) GetCustomerDetail(ctx context.Context, customerID, orgID string) (Response, error) {
	params := url.Values{"id": []string{customerID}, "orgId": []string{orgID}}
	return c.request(ctx, http.MethodGet, customerDetailPath, "customer_detail", params, nil)
}

// GetAddressesByCodes loads merchant addresses for the given customer
// codes.
func (c *Client) GetAddressesByCodes(ctx context.Context, codes []string) (Response, error) {
	pageSize := len(codes)
	if pageSize < 1 {
		pageSize = 1
	}
	body := map[string]interface{}{
		"codeList":  codes,
		"pageIndex": 1,
		"pageSize":  pageSize,
	}
	return c.request(ctx, http.MethodPost, customerAddressListPath, "address_list", nil, body)
}

// CustomerDuplicateCheck runs the customer duplicate check.
func (c *Client) CustomerDuplicateCheck(ctx context.Context, payload map[string]interface{}) (Response, error) {
	return c.request(ctx, http.MethodPost, customerDuplicatePath, "customer_duplicate", nil, payload)
}

// SubmitCustomerApplication submits a customer application.
func (c *Client) SubmitCustomerApplication(ctx context.Context, payload map[string]interface{}) (Response, error) {
	return c.request(ctx, http.MethodPost, customerApplicationPath, "customer_application", nil, payload)
}

// AuditCustomerApplication audits a submitted application.
func (c *Client) AuditCustomerApplication(ctx context.Context, payload map[string]interface{}) (Response, error) {
	return c.request(ctx, http.MethodPost, customerAuditPath, "customer_audit", nil, payload)
}

func (c *Client) request(ctx context.Context, method, path, operation string, params url.Values, body interface{}) (Response, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, method, path, params, body)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
	return resp, err
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body interface{}) (Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{"access_token": []string{token}}
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	endpoint := c.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.NewInternalError("encoding request body").WithCause(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, apperrors.NewInternalError("building gateway request").WithCause(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewRemoteCallError(fmt.Sprintf("calling %s", path)).WithCause(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.NewRemoteCallError(fmt.Sprintf("reading response from %s", path)).WithCause(err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, apperrors.NewRemoteCallError(
			fmt.Sprintf("HTTP %d calling %s", httpResp.StatusCode, path),
		).WithMetadata("body", string(raw))
	}

	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, apperrors.NewRemoteCallError(fmt.Sprintf("decoding response from %s", path)).WithCause(err)
	}
	if !isSuccessCode(decoded["code"]) {
		if c.log != nil {
			c.log.Warn("gateway rejected request", map[string]interface{}{
				"path": path,
				"code": decoded["code"],
			})
		}
		return nil, apperrors.NewRemoteRejectedError(
			fmt.Sprintf("gateway rejected %s", path), decoded,
		).WithMetadata("message", messageOf(decoded))
	}
	return decoded, nil
}

// isSuccessCode accepts the envelope codes the gateway uses for
// success across its endpoint families.
func isSuccessCode(code interface{}) bool {
	switch v := code.(type) {
	case string:
		return v == "00000" || v == "200" || v == "200000"
	case float64:
		return v == 200
	}
	return false
}

func messageOf(resp Response) string {
	for _, key := range []string{"message", "msg", "errMsg"} {
		if text, ok := resp[key].(string); ok && text != "" {
			return text
		}
	}
	return ""
}
