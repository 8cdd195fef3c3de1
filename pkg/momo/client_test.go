package momo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/mokolo-market/mokolo-backend/pkg/config"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestCollectMockMode(t *testing.T) {
	client, err := NewClient(config.MomoConfig{Mode: "mock"}, testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Collect(context.Background(), CollectionRequest{
		Provider:   enums.PaymentProviderMTNMomo,
		AmountXAF:  2500,
		PayerPhone: "+237670000000",
		Reference:  "order-1001",
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Status != enums.TransactionStatusPending {
		t.Fatalf("expected PENDING, got %s", result.Status)
	}
	if result.ExternalRef == "" {
		t.Fatal("expected an external reference")
	}
	if result.RawPayload["mode"] != "mock" {
		t.Fatalf("expected mock payload, got %v", result.RawPayload)
	}
}

func TestCollectValidation(t *testing.T) {
	client, err := NewClient(config.MomoConfig{Mode: "mock"}, testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cases := []CollectionRequest{
		{Provider: "CASH", AmountXAF: 100, PayerPhone: "+237670000000"},
		{Provider: enums.PaymentProviderMTNMomo, AmountXAF: 0, PayerPhone: "+237670000000"},
		{Provider: enums.PaymentProviderOrangeMoney, AmountXAF: 100, PayerPhone: " "},
	}
	for _, req := range cases {
		_, err := client.Collect(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestNewClientLiveRequiresBaseURLs(t *testing.T) {
	_, err := NewClient(config.MomoConfig{Mode: "live"}, testLogger())
	if err == nil {
		t.Fatal("expected base url error in live mode")
	}
}

type scriptedDoer struct {
	responses []*http.Response
	errs      []error
	calls     int
}

func (s *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return jsonResponse(http.StatusOK, `{"reference":"ext-1"}`), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCollectLiveRetriesDependencyErrors(t *testing.T) {
	doer := &scriptedDoer{
		responses: []*http.Response{
			jsonResponse(http.StatusBadGateway, `{}`),
			jsonResponse(http.StatusOK, `{"reference":"ext-42"}`),
		},
	}
	client := &Client{
		cfg: config.MomoConfig{
			Mode:           "live",
			MTNBaseURL:     "https://momo.example",
			OrangeBaseURL:  "https://orange.example",
			RequestTimeout: time.Second,
			MaxRetries:     2,
		},
		http:   doer,
		logger: testLogger(),
	}

	result, err := client.Collect(context.Background(), CollectionRequest{
		Provider:   enums.PaymentProviderMTNMomo,
		AmountXAF:  5000,
		PayerPhone: "+237670000000",
		Reference:  "order-1002",
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if doer.calls != 2 {
		t.Fatalf("expected a retry after 502, got %d calls", doer.calls)
	}
	if result.ExternalRef != "ext-42" {
		t.Fatalf("unexpected external ref %s", result.ExternalRef)
	}
}

func TestCollectLiveDoesNotRetryRejections(t *testing.T) {
	doer := &scriptedDoer{
		responses: []*http.Response{
			jsonResponse(http.StatusUnprocessableEntity, `{"error":"insufficient funds"}`),
		},
	}
	client := &Client{
		cfg: config.MomoConfig{
			Mode:           "live",
			MTNBaseURL:     "https://momo.example",
			OrangeBaseURL:  "https://orange.example",
			RequestTimeout: time.Second,
			MaxRetries:     3,
		},
		http:   doer,
		logger: testLogger(),
	}

	_, err := client.Collect(context.Background(), CollectionRequest{
		Provider:   enums.PaymentProviderOrangeMoney,
		AmountXAF:  5000,
		PayerPhone: "+237690000000",
		Reference:  "order-1003",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if doer.calls != 1 {
		t.Fatalf("client retried a non-retryable rejection, %d calls", doer.calls)
	}
}
