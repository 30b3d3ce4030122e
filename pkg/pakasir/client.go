// Package pakasir is the client for the Pakasir QRIS payment gateway: it
// creates scannable payment requests and reports their settlement status.
package pakasir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrGatewayUnavailable covers network failures and non-2xx responses
	// during payment creation.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected means the gateway answered but produced no payment handle.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)

// Status is the settlement state of a payment as reported by the gateway.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusUnpaid    Status = "unpaid"
	// StatusUnknown means the gateway could not be reached or answered
	// unparseably. Callers must not treat it as either paid or unpaid.
	StatusUnknown Status = "unknown"
)

// Payment is the handle returned on creation. Fee and Total are fixed here
// and must never be recomputed downstream.
type Payment struct {
	PaymentNumber string `json:"payment_number"`
	Fee           int64  `json:"fee"`
	Total         int64  `json:"total_payment"`
}

type Client interface {
	CreatePayment(ctx context.Context, amount int64, orderID string) (Payment, error)
	QueryStatus(ctx context.Context, orderID string, amount int64) (Status, error)
}

type Config struct {
	BaseURL string // e.g. https://app.pakasir.com
	Project string // merchant slug
	APIKey  string
}

type ClientImpl struct {
	logger *zap.Logger
	cfg    Config
	http   *http.Client
}

func NewClient(logger *zap.Logger, cfg Config, opts ...utils.ClientOption) Client {
	return &ClientImpl{
		logger: logger,
		cfg:    cfg,
		http:   utils.NewHTTPClient(opts...),
	}
}

type createRequest struct {
	Project string `json:"project"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	APIKey  string `json:"api_key"`
}

type createResponse struct {
	Payment *Payment `json:"payment"`
}

func (c *ClientImpl) CreatePayment(ctx context.Context, amount int64, orderID string) (Payment, error) {
	body, err := json.Marshal(createRequest{
		Project: c.cfg.Project,
		OrderID: orderID,
		Amount:  amount,
		APIKey:  c.cfg.APIKey,
	})
	if err != nil {
		return Payment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/transactioncreate/qris", bytes.NewReader(body))
	if err != nil {
		return Payment{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payment{}, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	}
	if out.Payment == nil || utils.IsEmpty(out.Payment.PaymentNumber) {
		return Payment{}, ErrGatewayRejected
	}
	return *out.Payment, nil
}

type detailResponse struct {
	Transaction *struct {
		Status string `json:"status"`
	} `json:"transaction"`
}

// QueryStatus asks the gateway whether the order has been paid. "Not yet paid"
// is a normal StatusUnpaid result, never an error. Any transport failure maps
// to StatusUnknown so a flaky gateway cannot flip an order's state.
func (c *ClientImpl) QueryStatus(ctx context.Context, orderID string, amount int64) (Status, error) {
	params := url.Values{}
	params.Set("project", c.cfg.Project)
	params.Set("order_id", orderID)
	params.Set("amount", strconv.FormatInt(amount, 10))
	params.Set("api_key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/transactiondetail?"+params.Encode(), nil)
	if err != nil {
		return StatusUnknown, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("payment status check failed", zap.String("order_id", orderID), zap.Error(err))
		return StatusUnknown, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("payment status check returned non-2xx",
			zap.String("order_id", orderID), zap.Int("status", resp.StatusCode))
		return StatusUnknown, nil
	}

	var out detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Transaction == nil {
		return StatusUnknown, nil
	}
	if out.Transaction.Status == string(StatusCompleted) {
		return StatusCompleted, nil
	}
	return StatusUnpaid, nil
}
