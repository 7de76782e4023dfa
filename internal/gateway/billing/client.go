package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
)

// StatusError is an unexpected HTTP status from the billing service.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("billing %s: unexpected status %d", e.Op, e.Code)
}

// Temporary reports whether the call may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

// HTTPClient talks to the order/payment service over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a billing client with a per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithTransport replaces the HTTP transport.
func (c *HTTPClient) WithTransport(rt http.RoundTripper) *HTTPClient {
	c.http.Transport = rt
	return c
}

type refundResponse struct {
	Refunded bool `json:"refunded"`
}

type deliveryRequest struct {
	PartnerID string `json:"partner_id"`
}

// Refund asks billing to refund the order. A 409 means billing declined the
// refund (already refunded or not refundable) and is reported as false.
func (c *HTTPClient) Refund(ctx context.Context, orderID string) (bool, error) {
	resp, err := c.post(ctx, c.orderURL(orderID, "refund"), nil)
	if err != nil {
		return false, fmt.Errorf("billing refund %q: %w", orderID, err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		var body refundResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("billing refund %q: decode: %w", orderID, err)
		}
		return body.Refunded, nil
	case http.StatusConflict:
		return false, nil
	case http.StatusNotFound:
		return false, fmt.Errorf("billing refund %q: %w", orderID, apperr.ErrNotFound)
	default:
		return false, &StatusError{Op: "refund", Code: resp.StatusCode}
	}
}

// MarkDeliveryAssigned records the assigned partner on the order.
func (c *HTTPClient) MarkDeliveryAssigned(ctx context.Context, orderID, partnerID string) error {
	payload, err := json.Marshal(deliveryRequest{PartnerID: partnerID})
	if err != nil {
		return err
	}
	resp, err := c.post(ctx, c.orderURL(orderID, "delivery"), payload)
	if err != nil {
		return fmt.Errorf("billing mark delivery %q: %w", orderID, err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("billing mark delivery %q: %w", orderID, apperr.ErrNotFound)
	default:
		return &StatusError{Op: "mark_delivery", Code: resp.StatusCode}
	}
}

func (c *HTTPClient) orderURL(orderID, action string) string {
	return c.baseURL + "/orders/" + url.PathEscape(orderID) + "/" + action
}

func (c *HTTPClient) post(ctx context.Context, target string, body []byte) (*http.Response, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
