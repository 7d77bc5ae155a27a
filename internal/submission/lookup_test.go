package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"maqua-crm/internal/crm"
)

func followupResponse(records ...interface{}) crm.Response {
	return crm.Response{
		"code": "00000",
		"data": map[string]interface{}{"recordList": records},
	}
}

func TestLookupCustomerIDByCode_FilteredHit(t *testing.T) {
	var fields []string
	gateway := &fakeGateway{
		getFollowups: func(keyword string, page, pageSize int, field, operator string) (crm.Response, error) {
			fields = append(fields, field+"/"+operator)
			if field == "customer.code" && operator == "eq" {
				return followupResponse(map[string]interface{}{
					"customerCode": "C1001",
					"customerId":   "ENT1",
				}), nil
			}
			return followupResponse(), nil
		},
	}
	svc := newTestService(t, gateway)

	id := svc.lookupCustomerIDByCode(context.Background(), "c1001", 1)
	assert.Equal(t, "ENT1", id)
	assert.Equal(t, []string{"customer.code/eq"}, fields)
}

func TestLookupCustomerIDByCode_PageScanFallback(t *testing.T) {
	gateway := &fakeGateway{
		getFollowups: func(keyword string, page, pageSize int, field, operator string) (crm.Response, error) {
			if field != "" {
				return nil, rejectionError("500", "過濾欄位不支援")
			}
			if page == 2 {
				return followupResponse(map[string]interface{}{
					"name":     "美好餐廳 C1001 跟進",
					"customer": map[string]interface{}{"code": "C1001", "id": "ENT2"},
				}), nil
			}
			return followupResponse(), nil
		},
	}
	svc := newTestService(t, gateway)

	assert.Equal(t, "ENT2", svc.lookupCustomerIDByCode(context.Background(), "C1001", 1))
}

func TestLookupCustomerIDByCode_RetriesThenGivesUp(t *testing.T) {
	sleeps := 0
	gateway := &fakeGateway{
		getFollowups: func(keyword string, page, pageSize int, field, operator string) (crm.Response, error) {
			return followupResponse(), nil
		},
	}
	svc := newTestService(t, gateway)
	svc.sleep = func(time.Duration) { sleeps++ }

	assert.Equal(t, "", svc.lookupCustomerIDByCode(context.Background(), "C1001", 3))
	assert.Equal(t, 3, sleeps)

	assert.Equal(t, "", svc.lookupCustomerIDByCode(context.Background(), "", 3))
}

func TestMatchFollowupRecord(t *testing.T) {
	assert.True(t, matchFollowupRecord(map[string]interface{}{"customerCode": "c1001"}, "C1001"))
	assert.True(t, matchFollowupRecord(map[string]interface{}{"customer_name": "美好餐廳 C1001"}, "C1001"))
	assert.True(t, matchFollowupRecord(map[string]interface{}{
		"customer": map[string]interface{}{"code": "C1001"},
	}, "C1001"))
	assert.False(t, matchFollowupRecord(map[string]interface{}{"customerCode": "C2002"}, "C1001"))
	assert.False(t, matchFollowupRecord(map[string]interface{}{}, "C1001"))
}

func TestExtractCustomerID(t *testing.T) {
	records := []map[string]interface{}{
		{"customerCode": "C2002", "customerId": "OTHER"},
		{"customerCode": "C1001", "customer": map[string]interface{}{"id": "ENT3"}},
	}
	assert.Equal(t, "ENT3", extractCustomerID(records, "C1001"))

	// A matching record without an id yields nothing.
	assert.Equal(t, "", extractCustomerID([]map[string]interface{}{
		{"customerCode": "C1001"},
	}, "C1001"))
}

func TestExtractCreatedCustomerID(t *testing.T) {
	assert.Equal(t, "CUST1", extractCreatedCustomerID(crm.Response{
		"data": map[string]interface{}{
			"customer": map[string]interface{}{"id": "CUST1"},
		},
	}))

	assert.Equal(t, "CUST2", extractCreatedCustomerID(crm.Response{
		"data": map[string]interface{}{
			"newBizObject": map[string]interface{}{"customerId": "CUST2"},
		},
	}))

	// Numeric ids come back as float64 and must round-trip cleanly.
	assert.Equal(t, "123456789", extractCreatedCustomerID(crm.Response{
		"data": map[string]interface{}{"custId": float64(123456789)},
	}))

	assert.Equal(t, "", extractCreatedCustomerID(crm.Response{}))
}

func TestExtractCustomerEntityID(t *testing.T) {
	assert.Equal(t, "APP1", extractCustomerEntityID(crm.Response{
		"data": map[string]interface{}{"id": "APP1"},
	}))

	assert.Equal(t, "M1", extractCustomerEntityID(crm.Response{
		"data": map[string]interface{}{
			"merchantAddressInfos": []interface{}{
				map[string]interface{}{"merchantId": "M1"},
			},
		},
	}))

	assert.Equal(t, "", extractCustomerEntityID(crm.Response{}))
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "", stringValue(nil))
	assert.Equal(t, "text", stringValue("  text  "))
	assert.Equal(t, "12345", stringValue(float64(12345)))
	assert.Equal(t, "12.5", stringValue(12.5))
	assert.Equal(t, "7", stringValue(7))
	assert.Equal(t, "9", stringValue(int64(9)))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", "   "))
}
