package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"panospace-ledger/internal/core/ports"
	"panospace-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPClient is the transport used to reach the processor API.
// *http.Client satisfies it; tests inject a stub.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.CheckoutProvider against the Stripe HTTP API.
// Requests are form-encoded per the API's convention.
type Client struct {
	secretKey string
	baseURL   string
	http      HTTPClient
	log       zerolog.Logger
}

// NewClient creates a processor client.
func NewClient(secretKey, baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		secretKey: secretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      httpClient,
		log:       log,
	}
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession asks the processor for a hosted checkout session. The
// split metadata rides along so the webhook can settle the order
// without a second catalog lookup.
func (c *Client) CreateSession(ctx context.Context, req ports.CheckoutSessionRequest) (*ports.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ItemName)
	form.Set("metadata[buyerId]", req.BuyerID)
	form.Set("metadata[sellerId]", req.SellerID)
	form.Set("metadata[itemId]", req.ItemID)
	form.Set("metadata[sizeId]", req.SizeID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperror.ErrCheckoutFailed(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperror.ErrCheckoutFailed(err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("error_type", apiErr.Error.Type).
			Msg("checkout session rejected")
		return nil, apperror.ErrCheckoutFailed(
			fmt.Errorf("processor returned %d: %s", resp.StatusCode, apiErr.Error.Message))
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, apperror.ErrCheckoutFailed(fmt.Errorf("decode session: %w", err))
	}
	if session.ID == "" || session.URL == "" {
		return nil, apperror.ErrCheckoutFailed(fmt.Errorf("session response missing id or url"))
	}

	return &ports.CheckoutSession{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}
