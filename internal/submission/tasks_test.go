package submission

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/crm"
	"maqua-crm/internal/payload"
)

func quarterlyOpportunityGateway(created *[]map[string]interface{}) *fakeGateway {
	return &fakeGateway{
		getOpportunities: func(customerCode string, page, pageSize int, field, operator string) (crm.Response, error) {
			return crm.Response{
				"code": "00000",
				"data": map[string]interface{}{
					"recordList": []interface{}{
						map[string]interface{}{
							"id":              "OP1",
							"customer":        "CUST1",
							"customer_name":   "美好餐廳",
							"saleArea":        "AREA1",
							"opptStage":       "ST1",
							"expectSignMoney": "6912",
							"industry":        "04",
							"industry_name":   "季度收費",
							"contactTel":      "66881234",
						},
					},
				},
			}, nil
		},
		getOpportunityDetail: func(opportunityID string) (crm.Response, error) {
			return crm.Response{
				"code": "00000",
				"data": map[string]interface{}{
					"contractBeginDate": "2026-09-01",
					"contractEndDate":   "2028-09-01",
					"headDef": map[string]interface{}{
						"define10": "288",
					},
					"opptItemList": []interface{}{
						map[string]interface{}{
							"bodyDef": map[string]interface{}{
								"productName": "R-002高效抗污RO膜",
								"define1":     "2026-09-01",
								"define2":     float64(24),
								"define3":     "2028-09-01",
							},
						},
						map[string]interface{}{
							"bodyDef": map[string]interface{}{
								"productName": "R-001多折式雙效復合濾芯",
								"define3":     "2027-09-01",
							},
						},
					},
				},
			}, nil
		},
		createTask: func(body map[string]interface{}) (crm.Response, error) {
			*created = append(*created, body)
			return okResponse(), nil
		},
	}
}

func TestCreateTasksForCustomerCode_FullSchedule(t *testing.T) {
	var created []map[string]interface{}
	svc := newTestService(t, quarterlyOpportunityGateway(&created))

	report, err := svc.CreateTasksForCustomerCode(context.Background(), "C1001")
	require.NoError(t, err)

	// Install task, seven quarterly collections, filter change, renewal.
	require.Len(t, report.Responses, 10)
	types := make([]string, 0, len(report.Responses))
	for _, outcome := range report.Responses {
		types = append(types, outcome.Type)
		assert.Empty(t, outcome.Error)
	}
	assert.Equal(t, []string{"new", "qfee", "qfee", "qfee", "qfee", "qfee", "qfee", "qfee", "flt", "ren"}, types)

	install := created[0]["data"].(payload.Tree)
	assert.Equal(t, "TASKNEW20260825143000", install["code"])
	assert.Equal(t, taskNewInstallTypeID, install["taskTransType"])
	assert.Equal(t, taskNewInstallBustypeID, install["bustype"])
	assert.Equal(t, "2026-09-01 00:00:00", install["startDate"])
	assert.Equal(t, "2026-09-01 23:59:59", install["endDate"])
	assert.Equal(t, "CUST1", install["customer"])
	assert.Equal(t, "OP1", install["oppt"])
	assert.Equal(t, "ST1", install["opptStage"])
	assert.Equal(t, payload.Tree{"RW01": "6912"}, install["taskDefineCharacter"])
	require.Len(t, install["taskExecutorList"].([]interface{}), 2)

	// Without a stored briefing the install content is recomposed from
	// the opportunity record.
	content := install["content"].(string)
	assert.Contains(t, content, "客戶名稱：美好餐廳")
	assert.Contains(t, content, "月費金額：288")
	assert.Contains(t, content, "付款方式：季度收費")

	key := install["resubmitCheckKey"].(string)
	assert.True(t, strings.HasPrefix(key, "task_"))
	assert.LessOrEqual(t, len(key), 32)

	firstFee := created[1]["data"].(payload.Tree)
	assert.Equal(t, taskQuarterlyFeeTypeID, firstFee["taskTransType"])
	assert.Equal(t, "2026-12-01 00:00:00", firstFee["startDate"])
	assert.Equal(t, "（季度收費）", firstFee["summary"])
	assert.Equal(t, "2026-12-01 至 2027-03-01", firstFee["content"])
	assert.Equal(t, payload.Tree{"RW01": "864"}, firstFee["taskDefineCharacter"])
	require.Len(t, firstFee["taskExecutorList"].([]interface{}), 1)

	lastFee := created[7]["data"].(payload.Tree)
	assert.Equal(t, "2028-06-01 00:00:00", lastFee["startDate"])

	// Filter change lands two weeks before the nearest replacement.
	filterTask := created[8]["data"].(payload.Tree)
	assert.Equal(t, taskFilterChangeTypeID, filterTask["taskTransType"])
	assert.Equal(t, "2027-08-18 00:00:00", filterTask["startDate"])
	assert.Equal(t, "R-001多折式雙效復合濾芯", filterTask["content"])

	renewal := created[9]["data"].(payload.Tree)
	assert.Equal(t, taskRenewalTypeID, renewal["taskTransType"])
	assert.Equal(t, "2028-08-18 00:00:00", renewal["startDate"])
	assert.Equal(t, "續約", renewal["content"])
	require.Len(t, renewal["taskExecutorList"].([]interface{}), 3)
}

func TestCreateTasksForCustomerCode_PrefersStoredBriefing(t *testing.T) {
	var created []map[string]interface{}
	svc := newTestService(t, quarterlyOpportunityGateway(&created))

	raw := "客戶名稱：美好餐廳 C1001\n備註：週末安裝"
	require.NoError(t, svc.rawText.Save(context.Background(), "C1001", raw))

	_, err := svc.CreateTasksForCustomerCode(context.Background(), "C1001")
	require.NoError(t, err)

	install := created[0]["data"].(payload.Tree)
	assert.Equal(t, raw, install["content"])
}

func TestCreateTasksForCustomerCode_Validation(t *testing.T) {
	svc := newTestService(t, &fakeGateway{})

	_, err := svc.CreateTasksForCustomerCode(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestCreateTasksForCustomerCode_NoOpportunity(t *testing.T) {
	gateway := &fakeGateway{
		getOpportunities: func(customerCode string, page, pageSize int, field, operator string) (crm.Response, error) {
			return followupResponse(), nil
		},
	}
	svc := newTestService(t, gateway)

	_, err := svc.CreateTasksForCustomerCode(context.Background(), "C1001")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeLookupNotFound))
}

func TestCreateTasksForCustomerCode_TaskErrorReported(t *testing.T) {
	var created []map[string]interface{}
	gateway := quarterlyOpportunityGateway(&created)
	gateway.createTask = func(body map[string]interface{}) (crm.Response, error) {
		created = append(created, body)
		return nil, rejectionError("500", "任務建立失敗")
	}
	svc := newTestService(t, gateway)

	report, err := svc.CreateTasksForCustomerCode(context.Background(), "C1001")
	require.NoError(t, err)
	require.NotEmpty(t, report.Responses)
	assert.Contains(t, report.Responses[0].Error, "任務建立失敗")
}

func TestFindNextReplacementDate(t *testing.T) {
	svc := newTestService(t, &fakeGateway{})

	t.Run("prefers nearest future date", func(t *testing.T) {
		data := map[string]interface{}{
			"opptItemList": []interface{}{
				map[string]interface{}{"bodyDef": map[string]interface{}{
					"productName": "膜", "define3": "2028-09-01",
				}},
				map[string]interface{}{"bodyDef": map[string]interface{}{
					"productName": "濾芯", "define3": "2027-09-01",
				}},
			},
		}
		next, name, ok := svc.findNextReplacementDate(data)
		require.True(t, ok)
		assert.Equal(t, "2027-09-01", next.Format("2006-01-02"))
		assert.Equal(t, "濾芯", name)
	})

	t.Run("derives from cycle months", func(t *testing.T) {
		data := map[string]interface{}{
			"opptItemList": []interface{}{
				map[string]interface{}{"bodyDef": map[string]interface{}{
					"productName": "濾芯", "define1": "2026-09-01", "define2": float64(6),
				}},
			},
		}
		next, _, ok := svc.findNextReplacementDate(data)
		require.True(t, ok)
		assert.Equal(t, "2027-03-01", next.Format("2006-01-02"))
	})

	t.Run("past dates pick the earliest", func(t *testing.T) {
		data := map[string]interface{}{
			"opptItemList": []interface{}{
				map[string]interface{}{"bodyDef": map[string]interface{}{"define3": "2021-01-01"}},
				map[string]interface{}{"bodyDef": map[string]interface{}{"define3": "2020-01-01"}},
			},
		}
		next, _, ok := svc.findNextReplacementDate(data)
		require.True(t, ok)
		assert.Equal(t, "2020-01-01", next.Format("2006-01-02"))
	})

	t.Run("no items", func(t *testing.T) {
		_, _, ok := svc.findNextReplacementDate(map[string]interface{}{})
		assert.False(t, ok)
	})
}

func TestParseDateOnly(t *testing.T) {
	for _, text := range []string{"2026-09-01", "2026/09/01", "2026.09.01", "2026-09-01 10:00:00"} {
		parsed, ok := parseDateOnly(text)
		require.True(t, ok, text)
		assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), parsed)
	}

	_, ok := parseDateOnly("")
	assert.False(t, ok)
	_, ok = parseDateOnly("下星期")
	assert.False(t, ok)
}

func TestShortResubmitKey(t *testing.T) {
	key := shortResubmitKey("task")
	assert.True(t, strings.HasPrefix(key, "task_"))
	assert.Equal(t, 32, len(key))
	assert.NotEqual(t, key, shortResubmitKey("task"))
}
