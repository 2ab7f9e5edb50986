package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(context.Background(), rr, NewError("validation_failed", "rate_card:\nbaseFee must be >= 0", http.StatusUnprocessableEntity).
		WithDetails(map[string]any{"field": "baseFee"}))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "validation_failed", body["error"])
	require.Equal(t, "rate_card: baseFee must be >= 0", body["message"])
	require.Equal(t, "baseFee", body["field"])
}

func TestNewErrorDefaultsTo500(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, NewError("x", "y", 0).Status)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Price float64 `json:"price"`
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"price": 12, "colour": "red"}`))
	require.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"price": 12}`))
	require.NoError(t, DecodeJSON(req, &dst))
	require.Equal(t, 12.0, dst.Price)
}
