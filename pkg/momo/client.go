package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/mokolo-market/mokolo-backend/pkg/config"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

const initialBackoff = 500 * time.Millisecond

var (
	errLoggerRequired  = errors.New("momo logger is required")
	errBaseURLRequired = errors.New("momo base url is required for live mode")
)

// CollectionRequest asks a provider to pull money from a subscriber wallet.
type CollectionRequest struct {
	Provider   enums.PaymentProvider
	AmountXAF  int
	PayerPhone string
	Reference  string
}

// CollectionResult is the provider's answer to a collection request.
type CollectionResult struct {
	ExternalRef string
	Status      enums.TransactionStatus
	RawPayload  map[string]any
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the MTN MoMo and Orange Money collection APIs with
// centralized auth, retries, and error mapping. In mock mode every
// collection succeeds without touching the network.
type Client struct {
	cfg    config.MomoConfig
	http   httpDoer
	logger *logger.Logger
}

// NewClient initializes the mobile-money wrapper and validates the config.
func NewClient(cfg config.MomoConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if !cfg.IsMock() {
		if strings.TrimSpace(cfg.MTNBaseURL) == "" || strings.TrimSpace(cfg.OrangeBaseURL) == "" {
			return nil, errBaseURLRequired
		}
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logg,
	}, nil
}

// IsMock reports whether the client simulates provider calls.
func (c *Client) IsMock() bool {
	return c.cfg.IsMock()
}

// Collect initiates a collection and returns the provider's pending reference.
// Transient transport failures are retried with exponential backoff.
func (c *Client) Collect(ctx context.Context, req CollectionRequest) (*CollectionResult, error) {
	if !req.Provider.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported provider %q", req.Provider))
	}
	if req.AmountXAF <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection amount must be positive")
	}
	if strings.TrimSpace(req.PayerPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer phone is required")
	}

	if c.cfg.IsMock() {
		return c.mockCollect(ctx, req), nil
	}

	baseURL, err := c.baseURLFor(req.Provider)
	if err != nil {
		return nil, err
	}

	var result *CollectionResult
	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.NewExponential(initialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, callErr := c.callProvider(ctx, baseURL, req)
		if callErr != nil {
			var depErr *pkgerrors.Error
			if errors.As(callErr, &depErr) && depErr.Code() == pkgerrors.CodeDependency {
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) baseURLFor(provider enums.PaymentProvider) (string, error) {
	switch provider {
	case enums.PaymentProviderMTNMomo:
		return c.cfg.MTNBaseURL, nil
	case enums.PaymentProviderOrangeMoney:
		return c.cfg.OrangeBaseURL, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported provider %q", provider))
	}
}

func (c *Client) callProvider(ctx context.Context, baseURL string, req CollectionRequest) (*CollectionResult, error) {
	body, err := json.Marshal(map[string]any{
		"amount":      req.AmountXAF,
		"currency":    "XAF",
		"payer_phone": req.PayerPhone,
		"reference":   req.Reference,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding collection request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/collections", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building collection request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling momo provider")
	}
	defer resp.Body.Close()

	payload := map[string]any{}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading provider response")
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload["raw"] = string(raw)
		}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("provider returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("provider rejected collection with %d", resp.StatusCode)).WithDetails(payload)
	}

	externalRef, _ := payload["reference"].(string)
	if externalRef == "" {
		externalRef = req.Reference
	}
	return &CollectionResult{
		ExternalRef: externalRef,
		Status:      enums.TransactionStatusPending,
		RawPayload:  payload,
	}, nil
}

func (c *Client) mockCollect(ctx context.Context, req CollectionRequest) *CollectionResult {
	ref := "mock-" + uuid.NewString()
	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"provider":   req.Provider.String(),
		"amount_xaf": req.AmountXAF,
	}), "momo mock collection accepted")
	return &CollectionResult{
		ExternalRef: ref,
		Status:      enums.TransactionStatusPending,
		RawPayload: map[string]any{
			"mode":      "mock",
			"reference": ref,
			"amount":    req.AmountXAF,
			"currency":  "XAF",
		},
	}
}
