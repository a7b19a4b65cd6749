package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func postPredict(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewPredictHandler(zap.NewNop())
	handler.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandlePredict(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) predictResponse {
	t.Helper()
	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPredictLinearV1Example(t *testing.T) {
	body := `{
		"api_version": "1.0",
		"model_id": "linear_v1",
		"params": {"slope": 0.6, "intercept": 0.0},
		"timestamp": "2026-08-24T11:59:00Z",
		"obstructions": [
			{"sensor_id": 1, "obstructed": true, "timestamp": "2026-08-24T11:59:00Z"},
			{"sensor_id": 2, "obstructed": false, "timestamp": "2026-08-24T11:59:00Z"}
		]
	}`

	rec := postPredict(t, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.WaitTimeMinutes)
	assert.InDelta(t, 30.0, *resp.WaitTimeMinutes, 1e-9)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.ErrorCode)
	assert.Equal(t, "2026-08-24T11:59:00Z", resp.Timestamp)
}

func TestPredictObstructionCountExample(t *testing.T) {
	body := `{
		"api_version": "1.0",
		"model_id": "obstruction_count_v1",
		"params": {"base_minutes": 2.0, "per_obstruction_minutes": 3.0},
		"obstructions": [
			{"sensor_id": 1, "obstructed": true},
			{"sensor_id": 2, "obstructed": true},
			{"sensor_id": 3, "obstructed": true}
		]
	}`

	rec := postPredict(t, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.WaitTimeMinutes)
	assert.InDelta(t, 11.0, *resp.WaitTimeMinutes, 1e-9)
}

func TestPredictUnknownModel(t *testing.T) {
	body := `{
		"model_id": "unknown_model",
		"params": {},
		"obstructions": [{"sensor_id": 1, "obstructed": true}]
	}`

	rec := postPredict(t, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.WaitTimeMinutes)
	assert.Equal(t, "degraded", resp.Status)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, "CONFIG_ERROR", *resp.ErrorCode)
}

func TestPredictNoObstructions(t *testing.T) {
	body := `{"model_id": "linear_v1", "params": {}, "obstructions": []}`

	rec := postPredict(t, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.WaitTimeMinutes)
	assert.Equal(t, "degraded", resp.Status)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, "NO_DATA", *resp.ErrorCode)
}

func TestPredictSkipsNullObstructed(t *testing.T) {
	body := `{
		"model_id": "obstruction_count_v1",
		"params": {"base_minutes": 0.0, "per_obstruction_minutes": 2.0},
		"obstructions": [
			{"sensor_id": 1, "obstructed": true},
			{"sensor_id": 2, "obstructed": null}
		]
	}`

	rec := postPredict(t, body)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.WaitTimeMinutes)
	assert.InDelta(t, 2.0, *resp.WaitTimeMinutes, 1e-9)
}

func TestPredictMalformedBody(t *testing.T) {
	rec := postPredict(t, "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "degraded", resp.Status)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, "INTERNAL_ERROR", *resp.ErrorCode)
}

func TestPredictFillsTimestampWhenAbsent(t *testing.T) {
	body := `{"model_id": "linear_v1", "params": {}, "obstructions": [{"sensor_id": 1, "obstructed": false}]}`

	rec := postPredict(t, body)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "2026-08-24T12:00:00Z", resp.Timestamp)
}
