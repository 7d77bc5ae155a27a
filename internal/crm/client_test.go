package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqua-crm/internal/common/config"
	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/common/logger"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.CRMConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, staticTokens("tok-test"), logger.NewNop())
}

func TestClient_GetOpportunities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, opportunityListPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok-test", r.URL.Query().Get("access_token"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body["pageIndex"])
		assert.Equal(t, float64(50), body["pageSize"])

		filters := body["simpleVOs"].([]interface{})
		filter := filters[0].(map[string]interface{})
		assert.Equal(t, "customer.code", filter["field"])
		assert.Equal(t, "eq", filter["op"])
		assert.Equal(t, "C1001", filter["value1"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "200",
			"data": map[string]interface{}{
				"recordList": []interface{}{
					map[string]interface{}{"id": "OP1", "name": "商機一"},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.GetOpportunities(context.Background(), "C1001", 1, 50, "", "")
	require.NoError(t, err)

	records := resp.RecordList()
	require.Len(t, records, 1)
	assert.Equal(t, "OP1", records[0]["id"])
}

func TestClient_SuccessCodes(t *testing.T) {
	codes := []interface{}{"00000", "200", "200000", float64(200)}

	for _, code := range codes {
		envelope := code
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"code": envelope})
		}))

		client := newTestClient(server.URL)
		_, err := client.GetTasks(context.Background(), "", 1, 10)
		assert.NoError(t, err, "code %v", code)
		server.Close()
	}
}

func TestClient_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "090-501-200376",
			"message": "该客户在申请中",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitCustomerApplication(context.Background(), map[string]interface{}{})
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeRemoteRejected, stdErr.Code)
	assert.Equal(t, "该客户在申请中", stdErr.Metadata["message"])

	response, ok := stdErr.Metadata["response"].(Response)
	require.True(t, ok)
	assert.Equal(t, "090-501-200376", response["code"])
}

func TestClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetTasks(context.Background(), "", 1, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRemoteCallFailed))
}

func TestClient_GetOpportunityDetail_FallsBackToPost(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "OP1", r.URL.Query().Get("id"))

		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]interface{}{"code": "999", "message": "GET not allowed"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "00000",
			"data": map[string]interface{}{"id": "OP1"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.GetOpportunityDetail(context.Background(), "OP1")
	require.NoError(t, err)
	assert.Equal(t, "OP1", resp.Data()["id"])
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, methods)
}

func TestClient_GetOpportunityDetail_EmptyID(t *testing.T) {
	client := newTestClient("http://unused.invalid")
	resp, err := client.GetOpportunityDetail(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, resp.Data())
}

func TestResponse_Accessors(t *testing.T) {
	resp := Response{
		"data": map[string]interface{}{
			"recordList": []interface{}{
				map[string]interface{}{"id": "1"},
				"garbage",
			},
		},
	}
	records := resp.RecordList()
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0]["id"])

	assert.Empty(t, Response{}.Data())
	assert.Nil(t, Response{}.RecordList())
}
