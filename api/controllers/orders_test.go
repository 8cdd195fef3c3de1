package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokolo-market/mokolo-backend/api/middleware"
	checkoutsvc "github.com/mokolo-market/mokolo-backend/internal/checkout"
	ordersvc "github.com/mokolo-market/mokolo-backend/internal/orders"
)

type recordingCheckout struct {
	input  checkoutsvc.Input
	called bool
	err    error
}

func (r *recordingCheckout) Execute(_ context.Context, input checkoutsvc.Input) (*ordersvc.View, error) {
	r.called = true
	r.input = input
	if r.err != nil {
		return nil, r.err
	}
	return &ordersvc.View{}, nil
}

func checkoutBody(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"customer_phone": "+237670000001",
		"city":           "DOUALA",
		"address":        "Akwa, Rue Joffre",
		"items":          []map[string]any{{"product_id": uuid.NewString(), "qty": 2}},
	})
	require.NoError(t, err)
	return raw
}

func TestCheckoutRejectsMalformedJSON(t *testing.T) {
	svc := &recordingCheckout{}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{not json"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, svc.called)
}

func TestCheckoutRejectsEmptyItems(t *testing.T) {
	svc := &recordingCheckout{}
	handler := Checkout(svc, nil)

	raw, err := json.Marshal(map[string]any{
		"customer_phone": "+237670000001",
		"city":           "DOUALA",
		"address":        "Akwa",
		"items":          []any{},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(raw))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, svc.called)
}

func TestCheckoutAnonymousLeavesUserUnset(t *testing.T) {
	svc := &recordingCheckout{}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(checkoutBody(t)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	require.True(t, svc.called)
	assert.Nil(t, svc.input.UserID)
}

func TestCheckoutSeedsUserFromContext(t *testing.T) {
	svc := &recordingCheckout{}
	handler := Checkout(svc, nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(checkoutBody(t)))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	require.NotNil(t, svc.input.UserID)
	assert.Equal(t, userID, *svc.input.UserID)
}

func TestCheckoutRejectsUnknownFields(t *testing.T) {
	svc := &recordingCheckout{}
	handler := Checkout(svc, nil)

	raw, err := json.Marshal(map[string]any{
		"customer_phone": "+237670000001",
		"city":           "DOUALA",
		"address":        "Akwa",
		"items":          []map[string]any{{"product_id": uuid.NewString(), "qty": 1}},
		"total_xaf":      100,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(raw))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, svc.called, "client supplied totals must never reach the service")
}
